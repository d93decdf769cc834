package pdf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidator_ValidateFile(t *testing.T) {
	tempDir := t.TempDir()

	emptyFile := filepath.Join(tempDir, "empty.pdf")
	if err := os.WriteFile(emptyFile, nil, 0o644); err != nil {
		t.Fatalf("failed to create empty file: %v", err)
	}

	textFile := filepath.Join(tempDir, "text.pdf")
	if err := os.WriteFile(textFile, []byte("this is not a PDF"), 0o644); err != nil {
		t.Fatalf("failed to create text file: %v", err)
	}

	// some producers put junk before the header
	prefixedFile := filepath.Join(tempDir, "prefixed.pdf")
	if err := os.WriteFile(prefixedFile, []byte("\r\n%PDF-1.7\n"), 0o644); err != nil {
		t.Fatalf("failed to create prefixed file: %v", err)
	}

	lateHeaderFile := filepath.Join(tempDir, "late.pdf")
	late := append(bytes.Repeat([]byte(" "), headerWindow), []byte("%PDF-1.7\n")...)
	if err := os.WriteFile(lateHeaderFile, late, 0o644); err != nil {
		t.Fatalf("failed to create late header file: %v", err)
	}

	tests := []struct {
		name        string
		maxFileSize int64
		path        string
		expectError bool
	}{
		{name: "empty path", maxFileSize: 1024 * 1024, path: "", expectError: true},
		{name: "non-existent file", maxFileSize: 1024 * 1024, path: "/non/existent/file.pdf", expectError: true},
		{name: "directory", maxFileSize: 1024 * 1024, path: tempDir, expectError: true},
		{name: "empty file", maxFileSize: 1024 * 1024, path: emptyFile, expectError: true},
		{name: "not a PDF", maxFileSize: 1024 * 1024, path: textFile, expectError: true},
		{name: "too large", maxFileSize: 10, path: blankPDF, expectError: true},
		{name: "valid PDF", maxFileSize: 1024 * 1024, path: blankPDF, expectError: false},
		{name: "valid form PDF", maxFileSize: 1024 * 1024, path: formPDF, expectError: false},
		{name: "header after leading bytes", maxFileSize: 1024 * 1024, path: prefixedFile, expectError: false},
		{name: "header beyond first kilobyte", maxFileSize: 1024 * 1024, path: lateHeaderFile, expectError: true},
		{name: "AES-128 encrypted", maxFileSize: 1024 * 1024, path: encryptedAES128PDF, expectError: false},
		{name: "AES-256 encrypted", maxFileSize: 1024 * 1024, path: encryptedAES256PDF, expectError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidator(tt.maxFileSize, nil).ValidateFile(tt.path)
			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidator_ValidateFile_NotPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	err := NewValidator(1024, nil).ValidateFile(path)
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("expected ErrNotPDF, got %v", err)
	}
}
