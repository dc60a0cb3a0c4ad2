package filesystem

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// Directory represents a directory on disk. Unlike the POSIX implementation,
// Windows traversal is path-based rather than descriptor-relative, since
// Windows offers no race-free directory-relative open primitive comparable to
// openat.
type Directory struct {
	// handle is the open handle for the directory, used only to keep the
	// directory pinned open; all content operations are path-based.
	handle windows.Handle
	// file wraps handle and is used for its Readdirnames implementation.
	file *os.File
	// path is the absolute path used to open the directory.
	path string
}

// Close closes the directory.
func (d *Directory) Close() error {
	return d.file.Close()
}

// OpenDirectory opens the directory within the directory specified by name.
func (d *Directory) OpenDirectory(name string) (*Directory, error) {
	target := filepath.Join(d.path, name)
	handle, metadata, err := Open(target, false)
	if err != nil {
		return nil, err
	}
	if metadata.Mode&ModeTypeMask != ModeTypeDirectory {
		handle.Close()
		return nil, ErrUnsupportedOpenType
	}
	return handle.(*Directory), nil
}

// OpenFile opens the regular file within the directory specified by name.
func (d *Directory) OpenFile(name string) (ReadableFile, error) {
	target := filepath.Join(d.path, name)
	handle, metadata, err := Open(target, false)
	if err != nil {
		return nil, err
	}
	if metadata.Mode&ModeTypeMask != ModeTypeFile {
		handle.Close()
		return nil, ErrUnsupportedOpenType
	}
	return handle.(*os.File), nil
}

// ReadContents queries the directory contents and their associated metadata.
// Entries that vanish between listing and the metadata query are silently
// skipped, matching the scanner's per-file failure policy.
func (d *Directory) ReadContents() ([]*Metadata, error) {
	names, err := d.file.Readdirnames(0)
	if err != nil {
		return nil, err
	}
	// Readdirnames exhausts the directory stream; rewind for future calls.
	if _, err := d.file.Seek(0, 0); err != nil {
		return nil, err
	}

	results := make([]*Metadata, 0, len(names))
	for _, name := range names {
		handle, metadata, err := Open(filepath.Join(d.path, name), false)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		handle.Close()
		results = append(results, metadata)
	}
	return results, nil
}

// RemoveFile deletes a file with the specified name inside the directory.
func (d *Directory) RemoveFile(name string) error {
	return os.Remove(filepath.Join(d.path, name))
}

// Rename performs a rename operation. Unlike the POSIX implementation, this
// operates purely on absolute paths since Windows renaming is path-based.
func Rename(sourceDirectory *Directory, sourceNameOrPath string, targetDirectory *Directory, targetNameOrPath string) error {
	source := sourceNameOrPath
	if sourceDirectory != nil {
		source = filepath.Join(sourceDirectory.path, sourceNameOrPath)
	}
	target := targetNameOrPath
	if targetDirectory != nil {
		target = filepath.Join(targetDirectory.path, targetNameOrPath)
	}
	return os.Rename(source, target)
}

// IsCrossDeviceError checks whether or not an error returned from Rename
// represents a cross-device error.
func IsCrossDeviceError(err error) bool {
	linkErr, ok := err.(*os.LinkError)
	if !ok {
		return false
	}
	return linkErr.Err == windows.ERROR_NOT_SAME_DEVICE
}
