package texture

import (
	"errors"
	"fmt"
)

// FetchKind distinguishes the ways retrieving a texture can fail.
type FetchKind string

const (
	KindInvalidURL        FetchKind = "invalid-url"
	KindTraversal         FetchKind = "traversal-rejected"
	KindNetwork           FetchKind = "network"
	KindTimeout           FetchKind = "timeout"
	KindTooLarge          FetchKind = "too-large"
	KindHTTPStatus        FetchKind = "http-status"
	KindUnsupportedFormat FetchKind = "unsupported-format"
	KindWrite             FetchKind = "write"
)

var (
	// ErrFetch matches every *FetchError.
	ErrFetch = errors.New("texture fetch failed")

	// ErrDecode matches every *DecodeError.
	ErrDecode = errors.New("texture decode failed")
)

// FetchError reports a texture that could not be retrieved or stored.
type FetchError struct {
	Kind       FetchKind
	URL        string
	File       string
	StatusCode int // set for KindHTTPStatus
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindInvalidURL:
		return fmt.Sprintf("invalid texture URL %q: %v", e.URL, e.Err)
	case KindTraversal:
		return fmt.Sprintf("texture filename rejected: %v", e.Err)
	case KindHTTPStatus:
		return fmt.Sprintf("error downloading texture from %s: HTTP %d", e.URL, e.StatusCode)
	case KindTooLarge:
		return fmt.Sprintf("texture at %s is too large: %v", e.URL, e.Err)
	case KindTimeout:
		return fmt.Sprintf("timed out downloading texture from %s: %v", e.URL, e.Err)
	case KindUnsupportedFormat:
		return fmt.Sprintf("cannot encode texture %s: %v", e.File, e.Err)
	case KindWrite:
		return fmt.Sprintf("failed to save texture %s: %v", e.File, e.Err)
	default:
		return fmt.Sprintf("error downloading texture from %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// DecodeError reports bytes that were retrieved but are not a usable image.
type DecodeError struct {
	URL         string
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	if e.ContentType != "" {
		return fmt.Sprintf("error processing image from %s (%s): %v", e.URL, e.ContentType, e.Err)
	}
	return fmt.Sprintf("error processing image from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// KindOf returns the FetchKind of err, or "" when err is not a *FetchError.
func KindOf(err error) FetchKind {
	var fErr *FetchError
	if errors.As(err, &fErr) {
		return fErr.Kind
	}
	return ""
}
