// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
	ErrInvalidFileName        = errors.New("file name contains path separator or null byte")
)

// TempDir creates a private temporary directory and returns a cleanup
// function that removes it with everything inside.
func TempDir(prefix string) (dir string, cleanup func(), err error) {
	dir, err = os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// WriteTempFile writes content to dir/base.extension with owner-only
// permissions and returns the file path.
func WriteTempFile(dir, base, extension string, content []byte) (string, error) {
	if err := ValidateExtension(extension); err != nil {
		return "", err
	}
	if base == "" || strings.ContainsAny(base, "/\\\x00") || base == "." || base == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, base)
	}

	path := filepath.Join(dir, base+"."+extension)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	return path, nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsURL returns true if the string looks like an http(s) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
