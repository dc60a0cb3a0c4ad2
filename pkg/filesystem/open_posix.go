//go:build !windows

package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"

	"golang.org/x/sys/unix"
)

// Open opens a filesystem path for scanning. It returns either a *Directory or
// a ReadableFile (as an io.Closer for convenient closing without casting),
// along with Metadata describing the entry. Unless allowSymbolicLinkLeaf is
// true, the leaf component of path is not allowed to be a symbolic link (an
// error results if it is); intermediate components may still be symbolic
// links and are resolved normally.
func Open(path string, allowSymbolicLinkLeaf bool) (io.Closer, *Metadata, error) {
	// HACK: use the same looping construct as Go itself to avoid golang/go#11180.
	flags := unix.O_RDONLY | unix.O_NOFOLLOW | unix.O_CLOEXEC
	if allowSymbolicLinkLeaf {
		flags &^= unix.O_NOFOLLOW
	}
	var descriptor int
	for {
		if fd, err := unix.Open(path, flags, 0); err == nil {
			descriptor = fd
			break
		} else if runtime.GOOS == "darwin" && err == unix.EINTR {
			continue
		} else {
			return nil, nil, err
		}
	}

	var stat unix.Stat_t
	if err := fstatRetryingOnEINTR(descriptor, &stat); err != nil {
		unix.Close(descriptor)
		return nil, nil, errors.Wrap(err, "unable to query file metadata")
	}

	name := filepath.Base(path)
	mode := Mode(stat.Mode)
	metadata := &Metadata{
		Name:             name,
		Mode:             mode,
		Size:             uint64(stat.Size),
		SizeOnDisk:       uint64(stat.Blocks) * 512,
		ModificationTime: timeFromTimespec(stat.Mtim),
		AccessTime:       timeFromTimespec(stat.Atim),
		ChangeTime:       timeFromTimespec(stat.Ctim),
		CreationTime:     timeFromTimespec(stat.Ctim),
		DeviceID:         uint64(stat.Dev),
		FileID:           uint64(stat.Ino),
		Attributes:       attributesFromStat(name, mode, &stat),
	}

	file := os.NewFile(uintptr(descriptor), path)

	switch metadata.Mode & ModeTypeMask {
	case ModeTypeDirectory:
		return &Directory{descriptor: descriptor, file: file}, metadata, nil
	case ModeTypeFile:
		return file, metadata, nil
	default:
		unix.Close(descriptor)
		return nil, nil, ErrUnsupportedOpenType
	}
}
