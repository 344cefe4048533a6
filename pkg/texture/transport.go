package texture

import (
	"crypto/tls"
	"net/http"
	"time"
)

// HTTPFetcher abstracts HTTP calls for testability
type HTTPFetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// RealHTTPFetcher wraps http.Client for production use
type RealHTTPFetcher struct {
	client *http.Client
}

// NewRealHTTPFetcher creates a production HTTP fetcher
func NewRealHTTPFetcher(client *http.Client) HTTPFetcher {
	return &RealHTTPFetcher{client: client}
}

// newDefaultHTTPFetcher returns a client with the given timeout and TLS 1.2+.
func newDefaultHTTPFetcher(timeout time.Duration) HTTPFetcher {
	return NewRealHTTPFetcher(&http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	})
}

func (f *RealHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

// HTTPFetcherFunc adapts a function to HTTPFetcher.
type HTTPFetcherFunc func(req *http.Request) (*http.Response, error)

func (fn HTTPFetcherFunc) Do(req *http.Request) (*http.Response, error) {
	return fn(req)
}
