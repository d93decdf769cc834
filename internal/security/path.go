// Package security confines file access in serve mode to one directory tree.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDirectory is returned for paths that resolve outside the configured directory
var ErrOutsideDirectory = errors.New("path is outside configured directory")

// PathValidator resolves client supplied paths against a configured directory
type PathValidator struct {
	directory string // absolute, cleaned
	realDir   string // directory with symlinks evaluated
}

// NewPathValidator creates a validator rooted at directory, which must exist
func NewPathValidator(directory string) (*PathValidator, error) {
	if directory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	absDir, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", directory)
	}

	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	return &PathValidator{directory: absDir, realDir: realDir}, nil
}

// Directory returns the absolute configured directory
func (v *PathValidator) Directory() string {
	return v.directory
}

// Resolve returns the absolute form of path. Relative paths are taken from
// the configured directory. The path need not exist, but whatever part of it
// exists must not lead outside the directory through symlinks.
func (v *PathValidator) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains a null byte")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.directory, path)
	}
	cleanPath := filepath.Clean(path)

	realPath, err := evalExisting(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if !within(v.realDir, realPath) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}
	return cleanPath, nil
}

// evalExisting evaluates symlinks in the longest existing prefix of path
// and appends the remaining components unchanged.
func evalExisting(path string) (string, error) {
	existing := path
	var rest []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return path, nil
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, rest...)...), nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
