package fileutil_test

// Notes:
// - The os.WriteFile failure branch of WriteTempFile is covered with a
//   missing directory; disk-full failures are platform-specific and skipped.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-invoicedocx/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "docx", extension: "docx", wantErr: nil},
		{name: "pdf", extension: "pdf", wantErr: nil},
		{name: "empty extension", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "forward slash path traversal", extension: "../etc/passwd", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash path traversal", extension: "..\\windows\\system32", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte injection", extension: "html\x00exe", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTempDir - Per-request workspace
// ---------------------------------------------------------------------------

func TestTempDir(t *testing.T) {
	t.Parallel()

	dir, cleanup, err := fileutil.TempDir("invoicedocx-test")
	if err != nil {
		t.Fatalf("TempDir() unexpected error: %v", err)
	}

	if !strings.Contains(filepath.Base(dir), "invoicedocx-test-") {
		t.Errorf("dir %q does not carry prefix", dir)
	}
	if _, err := fileutil.WriteTempFile(dir, "invoice", "docx", []byte("x")); err != nil {
		t.Fatalf("WriteTempFile() unexpected error: %v", err)
	}

	cleanup()

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("temp dir still exists after cleanup: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - File creation inside a workspace
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name      string
		dir       string
		base      string
		extension string
		content   []byte
		wantErr   error
	}{
		{name: "docx file", dir: dir, base: "invoice", extension: "docx", content: []byte("PK")},
		{name: "empty content", dir: dir, base: "empty", extension: "html", content: nil},
		{name: "empty extension", dir: dir, base: "invoice", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "traversal in base", dir: dir, base: "../escape", extension: "docx", wantErr: fileutil.ErrInvalidFileName},
		{name: "dot base", dir: dir, base: "..", extension: "docx", wantErr: fileutil.ErrInvalidFileName},
		{name: "empty base", dir: dir, base: "", extension: "docx", wantErr: fileutil.ErrInvalidFileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path, err := fileutil.WriteTempFile(tt.dir, tt.base, tt.extension, tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("WriteTempFile() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if want := filepath.Join(tt.dir, tt.base+"."+tt.extension); path != want {
				t.Errorf("path = %q, want %q", path, want)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() unexpected error: %v", err)
			}
			if string(data) != string(tt.content) {
				t.Errorf("content = %q, want %q", data, tt.content)
			}
		})
	}
}

func TestWriteTempFile_MissingDir(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "gone")
	_, err := fileutil.WriteTempFile(missing, "invoice", "docx", []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "writing temp file") {
		t.Errorf("WriteTempFile() error = %v, want writing temp file error", err)
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - File existence check
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "request.json")
	if err := os.WriteFile(testFile, []byte("{}"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "existing file returns true", path: testFile, want: true},
		{name: "directory returns false", path: tempDir, want: false},
		{name: "nonexistent path returns false", path: filepath.Join(tempDir, "nonexistent"), want: false},
		{name: "empty path returns false", path: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsURL - URL detection
// ---------------------------------------------------------------------------

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "https://drive.google.com/uc?id=1", want: true},
		{input: "http://localhost:8080/stamp.png", want: true},
		{input: "ftp://example.com/a.png", want: false},
		{input: "/var/assets/stamp.png", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		if got := fileutil.IsURL(tt.input); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
