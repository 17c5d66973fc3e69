//go:build darwin || linux || freebsd

package fpdf

import (
	"math"
	"testing"
)

// The engine below has no symbols bound: any call that got past the range
// checks would panic on a nil function.
func TestNativeEngine_RejectsValuesOutsideInt32(t *testing.T) {
	var limit int64 = math.MaxInt32
	tooBig := int(limit + 1)
	if tooBig < 0 {
		t.Skip("int is 32 bits")
	}

	tests := []struct {
		name string
		call func(e *nativeEngine) bool
		want ErrorCode
	}{
		{"load page", func(e *nativeEngine) bool { return e.LoadPage(1, tooBig) != 0 }, ErrPage},
		{"bitmap width", func(e *nativeEngine) bool {
			return e.BitmapCreateEx(tooBig, 1, FormatGray, make([]byte, 16), 16) != 0
		}, ErrUnknown},
		{"bitmap stride", func(e *nativeEngine) bool {
			return e.BitmapCreateEx(1, 1, FormatGray, make([]byte, 16), tooBig) != 0
		}, ErrUnknown},
		{"fill rect", func(e *nativeEngine) bool { return e.BitmapFillRect(1, tooBig, 0, 2, 2, 0) }, ErrUnknown},
		{"fill rect negative", func(e *nativeEngine) bool { return e.BitmapFillRect(1, 0, -tooBig-1, 2, 2, 0) }, ErrUnknown},
		{"render", func(e *nativeEngine) bool { return e.RenderPageBitmap(1, 1, 0, 0, tooBig, 1, Normal, 0) }, ErrUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &nativeEngine{}
			if tt.call(e) {
				t.Fatal("call succeeded")
			}
			if got := e.GetLastError(); got != tt.want {
				t.Errorf("GetLastError() = %v, want %v", got, tt.want)
			}
			if e.rejected != ErrSuccess {
				t.Errorf("rejected not cleared: %v", e.rejected)
			}
		})
	}
}

func TestFitsInt32(t *testing.T) {
	if !fitsInt32(0, -1, math.MaxInt32, math.MinInt32) {
		t.Error("in-range values rejected")
	}
	var limit int64 = math.MaxInt32
	if v := int(limit + 1); v > 0 && fitsInt32(1, v) {
		t.Error("MaxInt32+1 accepted")
	}
}
