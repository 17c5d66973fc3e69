package fpdf

import (
	"os"
	"path/filepath"
	"runtime"
)

// LibraryPathEnv names the environment variable that overrides library discovery.
const LibraryPathEnv = "PDFIUM_LIBRARY_PATH"

// LibraryName returns the platform file name of the PDFium shared library.
func LibraryName() string {
	switch runtime.GOOS {
	case "darwin", "ios":
		return "libpdfium.dylib"
	case "windows":
		return "pdfium.dll"
	default:
		return "libpdfium.so"
	}
}

// SearchPaths returns the candidate locations for the PDFium library, in
// the order FindLibrary tries them.
func SearchPaths() []string {
	libName := LibraryName()

	paths := []string{
		libName,
		filepath.Join("lib", libName),
	}

	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		paths = append(paths,
			filepath.Join(execDir, libName),
			filepath.Join(execDir, "lib", libName),
			filepath.Join(execDir, "..", "lib", libName),
		)
	}

	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			filepath.Join("/opt/homebrew/lib", libName),
			filepath.Join("/usr/local/lib", libName),
		)
	case "windows":
	default:
		paths = append(paths,
			filepath.Join("/usr/local/lib", libName),
			filepath.Join("/usr/lib", libName),
			filepath.Join("/opt/pdfium/lib", libName),
		)
	}
	return paths
}

// FindLibrary returns the path of the PDFium shared library.
//
// An explicit path (from PDFIUM_LIBRARY_PATH, or the override argument when
// non-empty) is returned as is, so a wrong setting fails loudly at load time.
// Otherwise the first existing SearchPaths entry is returned as an absolute
// path. When nothing is found the bare library name is returned and the
// dynamic loader gets the last word.
func FindLibrary(override string) string {
	if override != "" {
		return override
	}
	if path := os.Getenv(LibraryPathEnv); path != "" {
		return path
	}

	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return LibraryName()
}
