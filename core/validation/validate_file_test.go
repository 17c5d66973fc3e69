package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckPDFFile(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		return path
	}
	pdf := write("doc.pdf", "%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	junkPrefix := write("prefixed.pdf", "garbage\r\n%PDF-1.4\n")
	text := write("notes.txt", "just some text")
	empty := write("empty.pdf", "")
	late := write("late.pdf", strings.Repeat(" ", headerWindow)+"%PDF-1.4")

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "pdf", path: pdf},
		{name: "header after leading bytes", path: junkPrefix},
		{name: "not a pdf", path: text, wantErr: "not a PDF"},
		{name: "empty file", path: empty, wantErr: "not a PDF"},
		{name: "header too late", path: late, wantErr: "not a PDF"},
		{name: "missing", path: filepath.Join(tmpDir, "missing.pdf"), wantErr: "not found"},
		{name: "empty path", path: "", wantErr: "empty"},
		{name: "directory", path: tmpDir, wantErr: "directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPDFFile(tt.path)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("CheckPDFFile(%q) unexpected error: %v", tt.path, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("CheckPDFFile(%q) expected error containing %q", tt.path, tt.wantErr)
			}
			if _, ok := err.(*FileError); !ok {
				t.Errorf("CheckPDFFile(%q) error type = %T, want *FileError", tt.path, err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("CheckPDFFile(%q) = %q, want it to contain %q", tt.path, err, tt.wantErr)
			}
		})
	}
}
