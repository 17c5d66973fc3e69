package validation

import (
	"fmt"
	"os"

	"go_pdfium/core"
	"go_pdfium/fpdf"
)

// InputFileCheck verifies the document to render.
func InputFileCheck(path string) Check {
	return func() CheckResult {
		if err := CheckPDFFile(path); err != nil {
			return CheckResult{Status: StepFailed, Error: err}
		}
		return CheckResult{Status: StepPassed, Message: path}
	}
}

// OutputSpaceCheck verifies that dir, or its nearest existing parent, has
// at least required bytes free.
func OutputSpaceCheck(dir string, required int64) Check {
	return func() CheckResult {
		info, err := GetDiskSpace(dir)
		if err != nil {
			return CheckResult{Status: StepFailed, Error: err}
		}
		if info.Free < required {
			return CheckResult{Status: StepFailed, Error: &DiskSpaceError{Path: dir, Required: required, Available: info.Free}}
		}
		return CheckResult{Status: StepPassed, Message: core.FormatBytes(info.Free) + " free"}
	}
}

// EngineLibraryCheck reports where libpdfium will be loaded from for the
// backend ("auto", "native" or "soft"). A library missing from the search
// paths is a warning: the dynamic loader may still find it, and the auto
// backend falls back to the pure-Go engine.
func EngineLibraryCheck(backend, override string) Check {
	return func() CheckResult {
		if backend == "soft" {
			return CheckResult{Status: StepSkipped, Message: "pure-Go engine selected"}
		}
		path := fpdf.FindLibrary(override)
		if _, err := os.Stat(path); err == nil {
			return CheckResult{Status: StepPassed, Message: path}
		}
		if backend == "native" {
			return CheckResult{
				Status:  StepWarning,
				Message: fmt.Sprintf("%s not on the search paths, leaving it to the system loader", fpdf.LibraryName()),
			}
		}
		return CheckResult{Status: StepWarning, Message: "libpdfium not found, falling back to the pure-Go engine"}
	}
}
