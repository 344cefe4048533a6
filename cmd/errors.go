package cmd

import (
	"context"
	"errors"
	"io/fs"

	"github.com/fulmenhq/starcat/pkg/catalog"
	"github.com/fulmenhq/starcat/pkg/exitcode"
	"github.com/fulmenhq/starcat/pkg/texture"
)

// exitError pins an explicit exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCodeFor maps a command error onto the process exit-code contract.
func exitCodeFor(err error) int {
	if err == nil {
		return exitcode.Success
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, fs.ErrPermission) {
		return exitcode.PermissionError
	}

	switch texture.KindOf(err) {
	case texture.KindInvalidURL, texture.KindTraversal:
		return exitcode.ValidationError
	case texture.KindNetwork, texture.KindHTTPStatus, texture.KindTooLarge:
		return exitcode.NetworkError
	case texture.KindTimeout:
		return exitcode.TimeoutError
	case texture.KindUnsupportedFormat:
		return exitcode.UnsupportedFormat
	case texture.KindWrite:
		return exitcode.FileSystemError
	}

	switch {
	case errors.Is(err, texture.ErrDecode):
		return exitcode.UnsupportedFormat
	case errors.Is(err, catalog.ErrStoreIO):
		return exitcode.FileSystemError
	case errors.Is(err, catalog.ErrDuplicateName), errors.Is(err, catalog.ErrSchemaViolation):
		return exitcode.ValidationError
	case errors.Is(err, context.DeadlineExceeded):
		return exitcode.TimeoutError
	default:
		return exitcode.GeneralError
	}
}
