//go:build !windows

package filesystem

import (
	"golang.org/x/sys/unix"
)

// attributesFromStat derives the portable Attributes bitset from a POSIX
// stat_t and the base name of the entry. POSIX has no first-class analogue for
// most of the Windows attribute bits, so only the ones with a sensible
// approximation are populated.
func attributesFromStat(name string, mode Mode, stat *unix.Stat_t) Attributes {
	var attributes Attributes
	if mode&ModeTypeMask == ModeTypeDirectory {
		attributes |= AttributeDirectory
	}
	if mode&ModeTypeMask == ModeTypeSymbolicLink {
		attributes |= AttributeReparsePoint
	}
	if len(name) > 0 && name[0] == '.' {
		attributes |= AttributeHidden
	}
	if mode&0200 == 0 {
		attributes |= AttributeReadOnly
	}
	// A sparse file allocates fewer blocks than its logical size would imply.
	if stat.Blocks*512 < stat.Size {
		attributes |= AttributeSparse
	}
	return attributes
}

// readContentMetadata reads filesystem metadata using an fstatat operation
// with the specified directory file descriptor and content name. It does not
// follow symbolic links.
func readContentMetadata(descriptor int, name string) (*Metadata, error) {
	var stat unix.Stat_t
	if err := fstatatRetryingOnEINTR(descriptor, name, &stat, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return nil, err
	}

	mode := Mode(stat.Mode)
	return &Metadata{
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
	}, nil
}
