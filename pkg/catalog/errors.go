package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/starcat/pkg/safeio"
)

var (
	// ErrSchemaViolation marks an entry that broke one or more field rules.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrTraversalRejected marks a texture filename that would escape the asset directory.
	ErrTraversalRejected = safeio.ErrPathTraversal

	// ErrDuplicateName marks an upsert refused by ConflictAbort.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrStoreIO marks catalog load/save failures.
	ErrStoreIO = errors.New("catalog store error")
)

// ValidationError carries every hard violation found for one entry.
type ValidationError struct {
	Entry    string
	Findings []Finding
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Findings))
	for i, f := range e.Findings {
		msgs[i] = f.Message
	}
	return fmt.Sprintf("invalid entry %q: %s", e.Entry, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrSchemaViolation}
	for _, f := range e.Findings {
		if f.Kind == KindTraversalRejected {
			errs = append(errs, ErrTraversalRejected)
			break
		}
	}
	return errs
}

// DuplicateNameError is returned by Upsert under ConflictAbort.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("object with name %q already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// StoreIOError reports a catalog file that is missing, unreadable or unparsable.
type StoreIOError struct {
	Op      string // "load", "parse", "save"
	Path    string
	Missing bool
	Err     error
}

func (e *StoreIOError) Error() string {
	switch {
	case e.Missing:
		return fmt.Sprintf("catalog not found: %s", e.Path)
	case e.Op == "parse":
		return fmt.Sprintf("catalog %s is not a valid JSON array of objects: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("catalog %s %s: %v", e.Op, e.Path, e.Err)
	}
}

func (e *StoreIOError) Unwrap() []error {
	return []error{ErrStoreIO, e.Err}
}

// IsMissing reports whether err is a StoreIOError for a catalog file that does not exist.
func IsMissing(err error) bool {
	var sErr *StoreIOError
	return errors.As(err, &sErr) && sErr.Missing
}
