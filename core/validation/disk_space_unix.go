//go:build !windows

package validation

import (
	"syscall"
)

// getDiskSpace reports total bytes and bytes available to unprivileged
// users on the filesystem holding path.
func getDiskSpace(path string) (total, free int64, err error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}

	bsize := int64(stat.Bsize)
	return int64(stat.Blocks) * bsize, int64(stat.Bavail) * bsize, nil
}
