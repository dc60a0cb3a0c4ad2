//go:build !windows

package filesystem

import (
	"golang.org/x/sys/unix"
)

// seekConsideringEINTR is a direct passthrough to the lseek system call that
// doesn't retry on EINTR. It's only defined to highlight the intentional
// absence of seekRetryingOnEINTR: POSIX doesn't specify that lseek can return
// EINTR, and handling a partially successful seek would be complicated for
// relative whence values in any case.
func seekConsideringEINTR(file int, offset int64, whence int) (int64, error) {
	return unix.Seek(file, offset, whence)
}

// closeConsideringEINTR is a direct passthrough to the close system call that
// doesn't retry on EINTR: POSIX makes no guarantee about the state of a file
// descriptor after an EINTR on close, so retrying risks closing a descriptor
// that's been reused by another thread in the meantime.
func closeConsideringEINTR(file int) error {
	return unix.Close(file)
}

// readRetryingOnEINTR is a wrapper around the read system call that retries
// on EINTR errors and returns on the first successful call or non-EINTR
// error.
func readRetryingOnEINTR(file int, buffer []byte) (int, error) {
	for {
		n, err := unix.Read(file, buffer)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

// renameatRetryingOnEINTR is a wrapper around the renameat system call that
// retries on EINTR errors and returns on the first successful call or
// non-EINTR error.
func renameatRetryingOnEINTR(oldDirectory int, oldPath string, newDirectory int, newPath string) error {
	for {
		err := unix.Renameat(oldDirectory, oldPath, newDirectory, newPath)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

// unlinkatRetryingOnEINTR is a wrapper around the unlinkat system call that
// retries on EINTR errors and returns on the first successful call or
// non-EINTR error.
func unlinkatRetryingOnEINTR(directory int, path string, flags int) error {
	for {
		err := unix.Unlinkat(directory, path, flags)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

// fstatRetryingOnEINTR is a wrapper around the fstat system call that retries
// on EINTR errors and returns on the first successful call or non-EINTR
// error.
func fstatRetryingOnEINTR(file int, stat *unix.Stat_t) error {
	for {
		err := unix.Fstat(file, stat)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

// fstatatRetryingOnEINTR is a wrapper around the fstatat system call that
// retries on EINTR errors and returns on the first successful call or
// non-EINTR error.
func fstatatRetryingOnEINTR(directory int, path string, stat *unix.Stat_t, flags int) error {
	for {
		err := unix.Fstatat(directory, path, stat, flags)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}
