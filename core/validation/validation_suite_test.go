package validation

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"go_pdfium/fpdf"
)

func TestValidationSuite(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	boom := errors.New("boom")
	pass := func() CheckResult { return CheckResult{Message: "fine"} }
	fail := func() CheckResult { return CheckResult{Error: boom} }
	warn := func() CheckResult { return CheckResult{Status: StepWarning, Message: "hmm"} }

	tests := []struct {
		name       string
		failFast   bool
		checks     []Check
		want       []StepStatus
		wantOK     bool
		wantOutput []string
	}{
		{
			name:       "all pass",
			checks:     []Check{pass, warn},
			want:       []StepStatus{StepPassed, StepWarning},
			wantOK:     true,
			wantOutput: []string{"✓ check-0 - fine", "! check-1 - hmm"},
		},
		{
			name:       "failure runs the rest",
			checks:     []Check{fail, pass},
			want:       []StepStatus{StepFailed, StepPassed},
			wantOutput: []string{"✗ check-0", "└─ boom", "Preflight Failed"},
		},
		{
			name:     "fail fast skips the rest",
			failFast: true,
			checks:   []Check{fail, pass},
			want:     []StepStatus{StepFailed, StepSkipped},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			suite := NewValidationSuite("Preflight").WithOutput(&out).WithFailFast(tt.failFast)
			for i, c := range tt.checks {
				suite.Add("check-"+string(rune('0'+i)), c)
			}
			result := suite.Validate()

			if result.Success != tt.wantOK {
				t.Errorf("Success = %v, want %v", result.Success, tt.wantOK)
			}
			for i, step := range result.Steps {
				if step.Status != tt.want[i] {
					t.Errorf("step %d status = %v, want %v", i, step.Status, tt.want[i])
				}
			}
			if !tt.wantOK && !errors.Is(result.GetFirstError(), boom) {
				t.Errorf("GetFirstError() = %v", result.GetFirstError())
			}
			for _, want := range tt.wantOutput {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestValidationSuite_Quiet(t *testing.T) {
	var out bytes.Buffer
	result := NewValidationSuite("x").WithOutput(&out).WithShowProgress(false).
		Add("a", func() CheckResult { return CheckResult{} }).
		Validate()
	if out.Len() != 0 {
		t.Errorf("quiet suite printed %q", out.String())
	}
	if !strings.HasPrefix(result.Summary(), "Preflight passed: 1/1 checks passed") {
		t.Errorf("Summary() = %q", result.Summary())
	}
}

func TestOutputSpaceCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not", "yet", "created")

	if res := OutputSpaceCheck(dir, 1)(); res.Status != StepPassed {
		t.Errorf("1 byte: %+v", res)
	}
	res := OutputSpaceCheck(dir, 1<<62)()
	var dsErr *DiskSpaceError
	if res.Status != StepFailed || !errors.As(res.Error, &dsErr) {
		t.Fatalf("huge requirement: %+v", res)
	}
	if dsErr.Required != 1<<62 {
		t.Errorf("Required = %d", dsErr.Required)
	}
}

func TestMinFreeBytes(t *testing.T) {
	t.Setenv(EnvMinFreeMB, "")
	if got := MinFreeBytes(); got != DefaultMinFreeBytes {
		t.Errorf("default = %d", got)
	}
	t.Setenv(EnvMinFreeMB, "2")
	if got := MinFreeBytes(); got != 2<<20 {
		t.Errorf("2 MB = %d", got)
	}
}

func TestEngineLibraryCheck(t *testing.T) {
	if res := EngineLibraryCheck("soft", "")(); res.Status != StepSkipped {
		t.Errorf("soft: %+v", res)
	}

	missing := filepath.Join(t.TempDir(), fpdf.LibraryName())
	if res := EngineLibraryCheck("auto", missing)(); res.Status != StepWarning {
		t.Errorf("auto, missing: %+v", res)
	}

	present := filepath.Join(t.TempDir(), fpdf.LibraryName())
	if err := os.WriteFile(present, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if res := EngineLibraryCheck("native", present)(); res.Status != StepPassed || res.Message != present {
		t.Errorf("native, present: %+v", res)
	}
}

func TestInputFileCheck(t *testing.T) {
	if res := InputFileCheck(filepath.Join(t.TempDir(), "missing.pdf"))(); res.Status != StepFailed || res.Error == nil {
		t.Errorf("missing: %+v", res)
	}
}
