package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		contains []string
	}{
		{
			name: "error with action",
			err: &ConfigError{
				Code:    "TEST_CODE",
				Message: "Test message",
				Action:  "Take this action",
			},
			contains: []string{"Test message", "Take this action"},
		},
		{
			name: "error without action",
			err: &ConfigError{
				Code:    "TEST_CODE",
				Message: "Test message only",
			},
			contains: []string{"Test message only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(errStr, s) {
					t.Errorf("ConfigError.Error() = %q, expected to contain %q", errStr, s)
				}
			}
		})
	}
}

func TestConfigErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		code     string
		contains string
	}{
		{"backend", ErrInvalidBackend("gpu", "auto", "native", "soft"), ErrCodeInvalidBackend, "auto, native, soft"},
		{"library", ErrLibraryUnavailable("/opt/libpdfium.so", "no such file"), ErrCodeLibraryUnavailable, "PDFIUM_BACKEND=soft"},
		{"scale", ErrInvalidScale("-1"), ErrCodeInvalidScale, "'-1'"},
		{"rotation", ErrInvalidRotation(45), ErrCodeInvalidRotation, "45"},
		{"format", ErrInvalidFormat("jpeg"), ErrCodeInvalidFormat, "png, bmp or tiff"},
		{"pages", ErrInvalidPageRange("3-1", "descending range"), ErrCodeInvalidPageRange, "descending range"},
		{"profile", ErrInvalidProfile("p.yaml", "bad indent"), ErrCodeInvalidProfile, "p.yaml"},
		{"missing", ErrMissingConfig("in"), ErrCodeMissingConfig, "-in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Error() = %q, expected to contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestIsConfigError(t *testing.T) {
	configErr := ErrInvalidScale("0")
	wrapped := fmt.Errorf("loading profile: %w", configErr)

	tests := []struct {
		name   string
		err    error
		wantOK bool
	}{
		{"direct", configErr, true},
		{"wrapped", wrapped, true},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IsConfigError(tt.err)
			if ok != tt.wantOK {
				t.Fatalf("IsConfigError() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != configErr {
				t.Errorf("IsConfigError() returned %v, want %v", got, configErr)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(ErrInvalidRotation(10)); got != ErrCodeInvalidRotation {
		t.Errorf("GetErrorCode() = %q, want %q", got, ErrCodeInvalidRotation)
	}
	if got := GetErrorCode(errors.New("other")); got != "" {
		t.Errorf("GetErrorCode() = %q, want empty", got)
	}
}
