//go:build !windows

package filesystem

import (
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"golang.org/x/sys/unix"
)

// ensureValidName verifies that the provided name does not reference the
// current directory, the parent directory, or contain a path separator
// character.
func ensureValidName(name string) error {
	if name == "." {
		return errors.New("name is directory reference")
	} else if name == ".." {
		return errors.New("name is parent directory reference")
	}
	if strings.IndexByte(name, os.PathSeparator) != -1 {
		return errors.New("path separator appears in name")
	}
	return nil
}

// Directory represents a directory on disk and provides race-free operations
// on the directory's contents via the POSIX *at family of system calls. All of
// its operations avoid the traversal of symbolic links, which keeps
// enumeration stable against concurrent renames elsewhere in the tree.
type Directory struct {
	// descriptor is the file descriptor for the directory, used in
	// conjunction with the *at functions below. It is wrapped by file and
	// should not be closed directly.
	descriptor int
	// file wraps the directory descriptor. It exists only to provide
	// Readdirnames, since there's no other portable way to invoke it from Go.
	file *os.File
}

// Close closes the directory.
func (d *Directory) Close() error {
	return d.file.Close()
}

// Descriptor provides access to the raw file descriptor underlying the
// directory. It must not be used or retained once Close has been called.
func (d *Directory) Descriptor() int {
	return d.descriptor
}

// open is the underlying open implementation shared by OpenDirectory and
// OpenFile.
func (d *Directory) open(name string, wantDirectory bool) (int, *os.File, error) {
	if wantDirectory && name == "." {
		// Allow directories to be re-opened; this doesn't allow traversal.
	} else if err := ensureValidName(name); err != nil {
		return -1, nil, err
	}

	// HACK: use the same looping construct as Go itself to avoid golang/go#11180.
	var descriptor int
	for {
		if fd, err := unix.Openat(d.descriptor, name, unix.O_RDONLY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0); err == nil {
			descriptor = fd
			break
		} else if runtime.GOOS == "darwin" && err == unix.EINTR {
			continue
		} else {
			return -1, nil, err
		}
	}

	expectedType := ModeTypeFile
	if wantDirectory {
		expectedType = ModeTypeDirectory
	}
	var stat unix.Stat_t
	if err := fstatRetryingOnEINTR(descriptor, &stat); err != nil {
		unix.Close(descriptor)
		return -1, nil, errors.Wrap(err, "unable to query file metadata")
	} else if Mode(stat.Mode)&ModeTypeMask != expectedType {
		unix.Close(descriptor)
		return -1, nil, ErrUnsupportedOpenType
	}

	return descriptor, os.NewFile(uintptr(descriptor), name), nil
}

// OpenDirectory opens the directory within the directory specified by name.
// Passing "." re-opens the directory itself with a new descriptor.
func (d *Directory) OpenDirectory(name string) (*Directory, error) {
	descriptor, file, err := d.open(name, true)
	if err != nil {
		return nil, err
	}
	return &Directory{descriptor: descriptor, file: file}, nil
}

// OpenFile opens the regular file within the directory specified by name.
func (d *Directory) OpenFile(name string) (ReadableFile, error) {
	descriptor, _, err := d.open(name, false)
	if err != nil {
		return nil, err
	}
	return file(descriptor), nil
}

// readContentNames queries the directory contents and returns their base
// names, excluding "." and "..".
func (d *Directory) readContentNames() ([]string, error) {
	names, err := d.file.Readdirnames(0)
	if err != nil {
		return nil, err
	}

	// Reset the read pointer since Readdirnames exhausts it.
	if offset, err := unix.Seek(d.descriptor, 0, 0); err != nil {
		return nil, errors.Wrap(err, "unable to reset directory read pointer")
	} else if offset != 0 {
		return nil, errors.New("directory offset is non-zero after seek operation")
	}

	results := names[:0]
	for _, name := range names {
		if name == "." || name == ".." {
			continue
		}
		results = append(results, name)
	}
	return results, nil
}

// ReadContents queries the directory contents and their associated metadata.
// Entries that vanish between listing and the metadata query are silently
// skipped, matching the scanner's per-file failure policy.
func (d *Directory) ReadContents() ([]*Metadata, error) {
	names, err := d.readContentNames()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read directory content names")
	}

	results := make([]*Metadata, 0, len(names))
	for _, name := range names {
		m, err := readContentMetadata(d.descriptor, name)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrap(err, "unable to access content metadata")
		}
		results = append(results, m)
	}
	return results, nil
}

// RemoveFile deletes a file with the specified name inside the directory.
func (d *Directory) RemoveFile(name string) error {
	if err := ensureValidName(name); err != nil {
		return err
	}
	return unlinkatRetryingOnEINTR(d.descriptor, name, 0)
}

// Rename performs an atomic rename operation from one filesystem location
// (the source) to another (the target). Each location is specified either by
// a combination of directory and name, or by an absolute path with a nil
// directory.
//
// This function does not support cross-device renames; use IsCrossDeviceError
// to detect that condition.
func Rename(sourceDirectory *Directory, sourceNameOrPath string, targetDirectory *Directory, targetNameOrPath string) error {
	if sourceDirectory != nil {
		if err := ensureValidName(sourceNameOrPath); err != nil {
			return errors.Wrap(err, "source name invalid")
		}
	}
	if targetDirectory != nil {
		if err := ensureValidName(targetNameOrPath); err != nil {
			return errors.Wrap(err, "target name invalid")
		}
	}

	var sourceDescriptor, targetDescriptor int
	if sourceDirectory != nil {
		sourceDescriptor = sourceDirectory.descriptor
	}
	if targetDirectory != nil {
		targetDescriptor = targetDirectory.descriptor
	}

	return renameatRetryingOnEINTR(sourceDescriptor, sourceNameOrPath, targetDescriptor, targetNameOrPath)
}

// IsCrossDeviceError checks whether or not an error returned from Rename
// represents a cross-device error.
func IsCrossDeviceError(err error) bool {
	return err == unix.EXDEV
}
