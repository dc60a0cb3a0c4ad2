package filesystem

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/windows"
)

// attributesFromWindows derives the portable Attributes bitset from the
// native Windows FILE_ATTRIBUTE_* flags, which map almost one-to-one.
func attributesFromWindows(flags uint32, isDirectory bool) Attributes {
	var attributes Attributes
	if isDirectory {
		attributes |= AttributeDirectory
	}
	if flags&windows.FILE_ATTRIBUTE_READONLY != 0 {
		attributes |= AttributeReadOnly
	}
	if flags&windows.FILE_ATTRIBUTE_HIDDEN != 0 {
		attributes |= AttributeHidden
	}
	if flags&windows.FILE_ATTRIBUTE_SYSTEM != 0 {
		attributes |= AttributeSystem
	}
	if flags&windows.FILE_ATTRIBUTE_ARCHIVE != 0 {
		attributes |= AttributeArchive
	}
	if flags&windows.FILE_ATTRIBUTE_TEMPORARY != 0 {
		attributes |= AttributeTemporary
	}
	if flags&windows.FILE_ATTRIBUTE_SPARSE_FILE != 0 {
		attributes |= AttributeSparse
	}
	if flags&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0 {
		attributes |= AttributeReparsePoint
	}
	if flags&windows.FILE_ATTRIBUTE_COMPRESSED != 0 {
		attributes |= AttributeCompressed
	}
	if flags&windows.FILE_ATTRIBUTE_ENCRYPTED != 0 {
		attributes |= AttributeEncrypted
	}
	if flags&windows.FILE_ATTRIBUTE_OFFLINE != 0 {
		attributes |= AttributeOffline
	}
	if flags&windows.FILE_ATTRIBUTE_NOT_CONTENT_INDEXED != 0 {
		attributes |= AttributeNotContentIndexed
	}
	return attributes
}

// queryHandleMetadata performs a metadata query using a Windows file handle.
// It must be passed the base name of the path used to open the handle, and
// supports both files and directories. The returned Metadata's DeviceID and
// FileID are populated from the handle's volume serial number and 64-bit file
// index, giving exactly the (VolumeId, FileId) pair the index keys on.
func queryHandleMetadata(name string, handle windows.Handle) (*Metadata, error) {
	if t, err := windows.GetFileType(handle); err != nil {
		return nil, fmt.Errorf("unable to determine file type: %w", err)
	} else if t != windows.FILE_TYPE_DISK {
		return nil, errors.New("handle does not refer to on-disk type")
	}

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(handle, &info); err != nil {
		return nil, fmt.Errorf("unable to query file metadata: %w", err)
	}

	isDirectory := info.FileAttributes&windows.FILE_ATTRIBUTE_DIRECTORY != 0
	mode := Mode(0666)
	if info.FileAttributes&windows.FILE_ATTRIBUTE_READONLY != 0 {
		mode = Mode(0444)
	}
	if isDirectory {
		mode |= ModeTypeDirectory | 0111
	}
	if info.FileAttributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0 {
		mode |= ModeTypeSymbolicLink
	}

	size := uint64(info.FileSizeHigh)<<32 + uint64(info.FileSizeLow)
	fileID := uint64(info.FileIndexHigh)<<32 + uint64(info.FileIndexLow)

	return &Metadata{
		Name:             name,
		Mode:             mode,
		Size:             size,
		SizeOnDisk:       size,
		ModificationTime: time.Unix(0, info.LastWriteTime.Nanoseconds()),
		AccessTime:       time.Unix(0, info.LastAccessTime.Nanoseconds()),
		ChangeTime:       time.Unix(0, info.LastWriteTime.Nanoseconds()),
		CreationTime:     time.Unix(0, info.CreationTime.Nanoseconds()),
		DeviceID:         uint64(info.VolumeSerialNumber),
		FileID:           fileID,
		Attributes:       attributesFromWindows(info.FileAttributes, isDirectory),
	}, nil
}
