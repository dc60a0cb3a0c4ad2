package filesystem

import (
	"github.com/pkg/errors"
)

// ErrUnsupportedRootType indicates that the filesystem entry at the specified
// path is not supported as a scan root.
var ErrUnsupportedRootType = errors.New("unsupported root type")

// ErrUnsupportedOpenType indicates that the filesystem entry at the specified
// path is neither a regular file nor a directory (e.g. a device node, socket,
// or unresolved symbolic link) and so cannot be opened for scanning.
var ErrUnsupportedOpenType = errors.New("unsupported entry type")
