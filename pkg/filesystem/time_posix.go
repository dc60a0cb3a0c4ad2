//go:build !windows

package filesystem

import (
	"time"

	"golang.org/x/sys/unix"
)

// timeFromTimespec converts a POSIX timespec into a time.Time value.
func timeFromTimespec(spec unix.Timespec) time.Time {
	return time.Unix(spec.Unix())
}
