package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrPathTraversal is returned when a name would resolve outside its base directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrEmptyName is returned for an empty filename.
	ErrEmptyName = errors.New("empty filename")
)

// CleanUserPath cleans a user-provided path and rejects traversal attempts.
// Returns paths with forward slashes for cross-platform consistency.
func CleanUserPath(p string) (string, error) {
	c := filepath.Clean(p)
	if strings.Contains(c, "..") {
		return "", ErrPathTraversal
	}
	// Normalize to forward slashes for cross-platform consistency
	return filepath.ToSlash(c), nil
}

// CleanFilename validates that name is a single flat file name: no separators of
// either platform, no parent references, and unchanged by path cleaning.
func CleanFilename(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	if name == "." || filepath.Base(filepath.Clean(name)) != name {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	return name, nil
}

// ContainedPath joins a flat filename onto baseDir after CleanFilename and verifies
// the result still resolves inside baseDir.
func ContainedPath(baseDir, name string) (string, error) {
	clean, err := CleanFilename(name)
	if err != nil {
		return "", err
	}
	baseDirAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", errors.New("failed to resolve base directory")
	}
	full := filepath.Join(baseDirAbs, clean)
	rel, err := filepath.Rel(baseDirAbs, full)
	if err != nil {
		return "", errors.New("failed to compute relative path")
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." || rel != clean {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	return full, nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place,
// so readers never observe a half-written file. An existing file's mode is kept;
// new files get 0644.
func WriteFileAtomic(path string, data []byte) error {
	mode := existingMode(path)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func existingMode(path string) os.FileMode {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	return mode
}
