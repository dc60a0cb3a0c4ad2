// Package model defines the data shapes shared by the scanner, the index,
// and the deduplicator: file identity (VolumeId/FileId/PathId), the
// FileEntry record persisted in the index, and duplicate groupings.
package model

import (
	"github.com/GonxKZ/disksense64-sub000/pkg/filesystem"
)

// Timestamps holds the four filesystem timestamps tracked for a file, as
// Unix nanoseconds (filesystem.Metadata normalizes both the POSIX and the
// Windows values to time.Time at the OS boundary, and
// TimestampsFromMetadata converts those). Their only semantic contract is
// monotone comparison within a single scan run.
type Timestamps struct {
	Creation     int64
	LastWrite    int64
	LastAccess   int64
	Change       int64
}

// TimestampsFromMetadata converts filesystem-native timestamps to the
// UnixNano representation stored in the index.
func TimestampsFromMetadata(m *filesystem.Metadata) Timestamps {
	return Timestamps{
		Creation:   m.CreationTime.UnixNano(),
		LastWrite:  m.ModificationTime.UnixNano(),
		LastAccess: m.AccessTime.UnixNano(),
		Change:     m.ChangeTime.UnixNano(),
	}
}

// FileEntry is the canonical record for one file discovered by a scan. It is
// the unit of storage in the index and the unit of comparison in the
// deduplicator.
type FileEntry struct {
	VolumeId VolumeId
	FileId   FileId
	PathId   PathId

	// FullPath is the absolute path at scan time. It is not part of a file's
	// identity (VolumeId/FileId/PathId is) — a file can be renamed between
	// scans without losing its identity — but it is what every consumer-
	// facing report and every destructive action addresses.
	FullPath string

	SizeLogical uint64
	SizeOnDisk  uint64

	Attributes filesystem.Attributes
	Timestamps Timestamps

	// HeadTail16 is the 32-byte head+tail signature (16KiB from the start
	// concatenated with 16KiB from the end, or the whole file if smaller)
	// computed with a single BLAKE3 pass. It is nil until either the scanner
	// (with ComputeHeadTail) or the deduplicator's signature phase fills it.
	HeadTail16 []byte

	// Digest is the full-content BLAKE3 digest. It is nil until either the
	// scanner (with ComputeFullHash) or the deduplicator's confirmation phase
	// fills it, since it requires reading the entire file.
	Digest []byte

	// PerceptualHash, ImageDimensions, and AudioDuration are reserved for a
	// future media-aware similarity mode. The core pipeline never populates
	// them.
	PerceptualHash  []byte
	ImageDimensions [2]uint32
	AudioDuration   uint64
}

// ClusterRoundedSize rounds logical size up to the nearest 4096-byte cluster,
// used as a fallback size-on-disk estimate on filesystems that don't report
// actual allocation (e.g. when SizeOnDisk comes back zero for a non-empty
// file).
func ClusterRoundedSize(sizeLogical uint64) uint64 {
	const clusterSize = 4096
	return (sizeLogical + clusterSize - 1) &^ (clusterSize - 1)
}

// IsDirectory reports whether the entry describes a directory rather than a
// regular file. The scanner never emits FileEntry values for directories
// themselves, but the flag is preserved on Attributes for callers that walk
// the index directly.
func (e *FileEntry) IsDirectory() bool {
	return e.Attributes&filesystem.AttributeDirectory != 0
}

// HasSignature reports whether the head/tail signature phase has run.
func (e *FileEntry) HasSignature() bool {
	return len(e.HeadTail16) == 32
}

// HasDigest reports whether the full-content confirmation phase has run.
func (e *FileEntry) HasDigest() bool {
	return len(e.Digest) == 32
}
