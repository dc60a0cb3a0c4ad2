package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// Open opens a filesystem path for scanning. It returns either a *Directory
// or an io.ReadSeekCloser (as an io.Closer for convenient closing without
// casting), along with Metadata describing the entry. Unless
// allowSymbolicLinkLeaf is true, the leaf component of path is not allowed to
// resolve to a symbolic link or other reparse point.
func Open(path string, allowSymbolicLinkLeaf bool) (io.Closer, *Metadata, error) {
	// Verify that the provided path is absolute, since all operations here are
	// path-based.
	if !filepath.IsAbs(path) {
		return nil, nil, errors.New("path is not absolute")
	}

	path16, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to convert path to UTF-16: %w", err)
	}

	// Open the path in a manner suitable for reading that avoids leaf symbolic
	// link traversal and works for both files and directories.
	flags := uint32(windows.FILE_ATTRIBUTE_NORMAL | windows.FILE_FLAG_BACKUP_SEMANTICS)
	if !allowSymbolicLinkLeaf {
		flags |= windows.FILE_FLAG_OPEN_REPARSE_POINT
	}
	handle, err := windows.CreateFile(
		path16,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		flags,
		0,
	)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("unable to open path: %w", err)
	}

	metadata, err := queryHandleMetadata(filepath.Base(path), handle)
	if err != nil {
		windows.CloseHandle(handle)
		return nil, nil, fmt.Errorf("unable to query file handle metadata: %w", err)
	}

	// If we're avoiding symbolic link resolution and still ended up with one,
	// then bail; CreateFile would have resolved it otherwise.
	if metadata.Mode&ModeTypeSymbolicLink != 0 {
		windows.CloseHandle(handle)
		return nil, nil, ErrUnsupportedOpenType
	}

	isDirectory := metadata.Mode&ModeTypeDirectory != 0
	var file *os.File
	if isDirectory {
		file, err = os.Open(path)
		if err != nil {
			windows.CloseHandle(handle)
			return nil, nil, fmt.Errorf("unable to open file object for directory: %w", err)
		}
	} else {
		file = os.NewFile(uintptr(handle), path)
	}

	if isDirectory {
		return &Directory{handle: handle, file: file, path: path}, metadata, nil
	}
	return file, metadata, nil
}
