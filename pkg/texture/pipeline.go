package texture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fulmenhq/starcat/pkg/logger"
	"github.com/fulmenhq/starcat/pkg/safeio"
	"github.com/gabriel-vasile/mimetype"
)

const (
	// DefaultTimeout bounds a single texture download.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBytes caps the accepted payload size.
	DefaultMaxBytes int64 = 50 * 1024 * 1024

	// DefaultUserAgent is sent with every download.
	DefaultUserAgent = "starcat-texture-fetch"
)

// Status says what FetchAndNormalize did with the destination file.
type Status string

const (
	// StatusFetched means the texture was downloaded, normalized and written.
	StatusFetched Status = "fetched"
	// StatusExists means the destination already existed and was left alone.
	StatusExists Status = "exists"
)

// Result describes a completed pipeline run.
type Result struct {
	Status   Status
	Path     string
	Bytes    int64
	Format   string      // decoded source format
	Original image.Point // decoded dimensions
	Final    image.Point // written dimensions
	Resized  bool
}

// Pipeline fetches textures into a flat asset directory.
type Pipeline struct {
	dir         string
	http        HTTPFetcher
	timeout     time.Duration
	maxBytes    int64
	userAgent   string
	jpegQuality int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHTTPFetcher sets the transport used for downloads.
func WithHTTPFetcher(f HTTPFetcher) Option {
	return func(p *Pipeline) {
		p.http = f
	}
}

// WithTimeout sets the download timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithMaxBytes sets the payload size cap.
func WithMaxBytes(n int64) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Pipeline) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// WithJPEGQuality sets the JPEG encoder quality (1-100).
func WithJPEGQuality(q int) Option {
	return func(p *Pipeline) {
		if q >= 1 && q <= 100 {
			p.jpegQuality = q
		}
	}
}

// NewPipeline creates a pipeline writing into dir.
func NewPipeline(dir string, opts ...Option) *Pipeline {
	p := &Pipeline{
		dir:         dir,
		timeout:     DefaultTimeout,
		maxBytes:    DefaultMaxBytes,
		userAgent:   DefaultUserAgent,
		jpegQuality: DefaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.http == nil {
		p.http = newDefaultHTTPFetcher(p.timeout)
	}
	return p
}

// Dir returns the asset directory.
func (p *Pipeline) Dir() string { return p.dir }

// ValidateSourceURL requires an absolute http(s) URL with a host.
func ValidateSourceURL(source string) (*url.URL, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("empty URL")
	}
	u, err := url.Parse(source)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || !u.IsAbs() {
		return nil, errors.New("URL must be absolute with a scheme")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" || u.Hostname() == "" {
		return nil, errors.New("URL has no host")
	}
	return u, nil
}

// FetchAndNormalize downloads source, normalizes it to the canonical size for
// renderMode and stores it as filename inside the asset directory. When the
// file already exists and overwrite is false nothing is fetched and the result
// has StatusExists.
func (p *Pipeline) FetchAndNormalize(ctx context.Context, source, filename, renderMode string, overwrite bool) (*Result, error) {
	dest, err := safeio.ContainedPath(p.dir, filename)
	if err != nil {
		return nil, &FetchError{Kind: KindTraversal, URL: source, File: filename, Err: err}
	}
	encode, err := encoderFor(filename, p.jpegQuality)
	if err != nil {
		return nil, &FetchError{Kind: KindUnsupportedFormat, URL: source, File: filename, Err: err}
	}
	size := CanonicalSize(renderMode)

	if st, err := os.Stat(dest); err == nil && !st.IsDir() && !overwrite {
		logger.Info("Texture already exists, keeping it", logger.String("file", filename))
		return &Result{Status: StatusExists, Path: dest, Bytes: st.Size()}, nil
	}

	u, err := ValidateSourceURL(source)
	if err != nil {
		return nil, &FetchError{Kind: KindInvalidURL, URL: source, File: filename, Err: err}
	}

	logger.Info("Downloading texture", logger.String("url", u.String()), logger.String("file", filename))
	started := time.Now()
	data, err := p.download(ctx, u)
	if err != nil {
		return nil, err
	}
	logger.Debug("Downloaded texture", logger.Int64("bytes", int64(len(data))), logger.Duration("elapsed", time.Since(started)))

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, &DecodeError{URL: source, ContentType: mt.String(), Err: errors.New("payload is not an image")}
	}
	img, format, err := Decode(data)
	if err != nil {
		return nil, &DecodeError{URL: source, ContentType: mt.String(), Err: err}
	}

	original := img.Bounds().Size()
	if original != size {
		logger.Info("Resizing texture",
			logger.String("from", fmt.Sprintf("%dx%d", original.X, original.Y)),
			logger.String("to", fmt.Sprintf("%dx%d", size.X, size.Y)))
	}
	out := Normalize(img, filename, size)

	var buf bytes.Buffer
	if err := encode(&buf, out); err != nil {
		return nil, &FetchError{Kind: KindUnsupportedFormat, URL: source, File: filename, Err: err}
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, &FetchError{Kind: KindWrite, URL: source, File: filename, Err: err}
	}
	if err := safeio.WriteFileAtomic(dest, buf.Bytes()); err != nil {
		return nil, &FetchError{Kind: KindWrite, URL: source, File: filename, Err: err}
	}

	n := int64(buf.Len())
	logger.Info("Saved texture", logger.String("file", filename), logger.String("size", humanize.Bytes(uint64(n))),
		logger.Float64("scale", float64(size.X)/float64(original.X)))
	return &Result{
		Status:   StatusFetched,
		Path:     dest,
		Bytes:    n,
		Format:   format,
		Original: original,
		Final:    out.Bounds().Size(),
		Resized:  original != size,
	}, nil
}

func (p *Pipeline) download(ctx context.Context, u *url.URL) ([]byte, error) {
	source := u.String()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindInvalidURL, URL: source, Err: err}
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, p.transportError(source, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Kind: KindHTTPStatus, URL: source, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	if resp.ContentLength > p.maxBytes {
		return nil, &FetchError{
			Kind: KindTooLarge, URL: source,
			Err: fmt.Errorf("advertised %s exceeds limit of %s",
				humanize.Bytes(uint64(resp.ContentLength)), humanize.Bytes(uint64(p.maxBytes))),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, p.transportError(source, err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, &FetchError{
			Kind: KindTooLarge, URL: source,
			Err: fmt.Errorf("body exceeds limit of %s", humanize.Bytes(uint64(p.maxBytes))),
		}
	}
	return data, nil
}

func (p *Pipeline) transportError(source string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{Kind: KindTimeout, URL: source, Err: fmt.Errorf("no response within %s: %w", p.timeout, err)}
	}
	return &FetchError{Kind: KindNetwork, URL: source, Err: err}
}
