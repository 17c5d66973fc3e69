package validation

import (
	"fmt"
	"os"
	"path/filepath"

	"go_pdfium/core"
)

// EnvMinFreeMB overrides DefaultMinFreeBytes, in megabytes.
const EnvMinFreeMB = "PDFIUM_MIN_FREE_MB"

// DefaultMinFreeBytes is the free space the render command asks for in its
// output directory. One 600 dpi Letter page in BGRA is about 134 MB raw,
// but encoded outputs rarely pass a few megabytes.
const DefaultMinFreeBytes = 16 * core.BytesPerMB

// MinFreeBytes returns the free-space threshold from PDFIUM_MIN_FREE_MB.
func MinFreeBytes() int64 {
	mb := core.ParseIntEnv(EnvMinFreeMB, 0)
	if mb <= 0 {
		return DefaultMinFreeBytes
	}
	return int64(mb) * core.BytesPerMB
}

// DiskSpaceInfo describes the filesystem holding a path.
type DiskSpaceInfo struct {
	// Path actually queried: the nearest existing directory.
	Path        string
	Total       int64
	Free        int64
	Used        int64
	UsedPercent float64
}

// DiskSpaceError reports too little free space.
type DiskSpaceError struct {
	Path      string
	Required  int64
	Available int64
}

func (e *DiskSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space at %s: need %s, have %s free",
		e.Path, core.FormatBytes(e.Required), core.FormatBytes(e.Available))
}

// GetDiskSpace returns usage of the filesystem holding path. A path that
// does not exist yet is resolved to its nearest existing parent, so an
// output directory can be checked before it is created.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	dir, err := existingDir(path)
	if err != nil {
		return nil, err
	}

	total, free, err := getDiskSpace(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk space for %s: %w", dir, err)
	}

	used := total - free
	var usedPercent float64
	if total > 0 {
		usedPercent = float64(used) / float64(total) * 100
	}
	return &DiskSpaceInfo{Path: dir, Total: total, Free: free, Used: used, UsedPercent: usedPercent}, nil
}

// CheckDiskSpace returns a *DiskSpaceError when the filesystem holding path
// has less than requiredBytes free.
func CheckDiskSpace(path string, requiredBytes int64) error {
	info, err := GetDiskSpace(path)
	if err != nil {
		return err
	}
	if info.Free < requiredBytes {
		return &DiskSpaceError{Path: path, Required: requiredBytes, Available: info.Free}
	}
	return nil
}

func existingDir(path string) (string, error) {
	if path == "" {
		path = "."
	}
	for {
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return path, nil
			}
			return filepath.Dir(path), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("cannot access path %s: %w", path, err)
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", fmt.Errorf("cannot access path %s: %w", path, err)
		}
		path = parent
	}
}
