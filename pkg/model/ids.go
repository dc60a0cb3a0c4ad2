package model

import (
	"hash/fnv"
)

// VolumeId opaquely identifies a volume. Collisions across distinct volumes
// are forbidden. On platforms that expose a native device/volume identifier
// it is used directly; otherwise HashVolumeMountPoint derives a stable
// substitute.
type VolumeId uint64

// FileId opaquely identifies a file within a volume, stable across scans as
// long as the underlying filesystem object is unchanged. On platforms that
// expose inode or file-reference numbers they are used directly; otherwise
// HashPath derives a stable substitute.
type FileId uint64

// PathId is a stable hash of an absolute path string.
type PathId uint64

// HashPath computes a stable 64-bit hash of an absolute path. It is used both
// to populate PathId and, on platforms without native per-file identifiers,
// as the FileId fallback.
func HashPath(path string) PathId {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return PathId(h.Sum64())
}

// HashVolumeMountPoint computes a stable 64-bit hash of a volume mount point,
// used as the VolumeId fallback on systems without a native volume
// identifier.
func HashVolumeMountPoint(mountPoint string) VolumeId {
	h := fnv.New64a()
	_, _ = h.Write([]byte(mountPoint))
	return VolumeId(h.Sum64())
}
