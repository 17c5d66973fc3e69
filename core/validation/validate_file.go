package validation

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// headerWindow is how far into a file the "%PDF-" marker may appear.
// Readers accept leading garbage before the header, so do we.
const headerWindow = 1024

// FileError describes why an input file cannot be used.
type FileError struct {
	Path    string
	Message string
}

func (e *FileError) Error() string {
	return e.Message
}

// CheckFileExists checks that path names an existing regular file.
func CheckFileExists(path string) error {
	if path == "" {
		return &FileError{Path: path, Message: "file path cannot be empty"}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileError{Path: path, Message: fmt.Sprintf("file not found: %s", path)}
		}
		return &FileError{Path: path, Message: fmt.Sprintf("error checking file %s: %v", path, err)}
	}
	if info.IsDir() {
		return &FileError{Path: path, Message: fmt.Sprintf("path is a directory, not a file: %s", path)}
	}
	return nil
}

// CheckPDFFile checks that path exists, is readable and carries a PDF
// header near its start. It does not parse the file.
func CheckPDFFile(path string) error {
	if err := CheckFileExists(path); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return &FileError{Path: path, Message: fmt.Sprintf("cannot read %s: %v", path, err)}
	}
	defer f.Close()

	head := make([]byte, headerWindow)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return &FileError{Path: path, Message: fmt.Sprintf("cannot read %s: %v", path, err)}
	}
	if !bytes.Contains(head[:n], []byte("%PDF-")) {
		return &FileError{Path: path, Message: fmt.Sprintf("not a PDF file (no %%PDF- header): %s", path)}
	}
	return nil
}
