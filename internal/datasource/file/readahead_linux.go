//go:build linux

package file

import (
	"os"

	"golang.org/x/sys/unix"
)

// advise hints the kernel that f will be read once, sequentially. Errors are
// ignored; the hint is an optimization, not a requirement.
func advise(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_WILLNEED)
}
