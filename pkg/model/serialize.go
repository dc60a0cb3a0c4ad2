package model

import (
	"encoding/binary"
	"fmt"

	"github.com/GonxKZ/disksense64-sub000/pkg/filesystem"
)

// Record encoding used for the data region of an SSTable. Every FileEntry is
// serialized as a flat, length-prefixed binary record; the index region
// (maintained by pkg/lsm) stores only the byte offset and length of each
// record, so the record format itself is free to evolve without touching the
// fixed-size index entry layout.
//
//	u64 volumeId
//	u64 fileId
//	u64 pathId
//	u16 pathLen, path bytes
//	u64 sizeLogical
//	u64 sizeOnDisk
//	u16 attributes
//	i64 creation, lastWrite, lastAccess, change
//	u8  hasHeadTail16, [32]byte if set
//	u8  hasDigest, [32]byte if set

// Marshal encodes e into the record format described above.
func (e *FileEntry) Marshal() []byte {
	pathBytes := []byte(e.FullPath)
	size := 8 + 8 + 8 + 2 + len(pathBytes) + 8 + 8 + 2 + 8*4 + 1 + 1
	if len(e.HeadTail16) == 32 {
		size += 32
	}
	if len(e.Digest) == 32 {
		size += 32
	}

	buffer := make([]byte, size)
	offset := 0

	binary.BigEndian.PutUint64(buffer[offset:], uint64(e.VolumeId))
	offset += 8
	binary.BigEndian.PutUint64(buffer[offset:], uint64(e.FileId))
	offset += 8
	binary.BigEndian.PutUint64(buffer[offset:], uint64(e.PathId))
	offset += 8

	binary.BigEndian.PutUint16(buffer[offset:], uint16(len(pathBytes)))
	offset += 2
	offset += copy(buffer[offset:], pathBytes)

	binary.BigEndian.PutUint64(buffer[offset:], e.SizeLogical)
	offset += 8
	binary.BigEndian.PutUint64(buffer[offset:], e.SizeOnDisk)
	offset += 8

	binary.BigEndian.PutUint16(buffer[offset:], uint16(e.Attributes))
	offset += 2

	for _, ts := range [4]int64{e.Timestamps.Creation, e.Timestamps.LastWrite, e.Timestamps.LastAccess, e.Timestamps.Change} {
		binary.BigEndian.PutUint64(buffer[offset:], uint64(ts))
		offset += 8
	}

	if len(e.HeadTail16) == 32 {
		buffer[offset] = 1
		offset++
		offset += copy(buffer[offset:], e.HeadTail16)
	} else {
		buffer[offset] = 0
		offset++
	}

	if len(e.Digest) == 32 {
		buffer[offset] = 1
		offset++
		offset += copy(buffer[offset:], e.Digest)
	} else {
		buffer[offset] = 0
		offset++
	}

	return buffer
}

// Unmarshal decodes a record produced by Marshal. It returns an error rather
// than panicking on truncated input, since a corrupt or partially-written
// SSTable record must surface as an IndexCorruption error, not crash the
// reader.
func Unmarshal(data []byte) (*FileEntry, error) {
	const fixedPrefix = 8 + 8 + 8 + 2
	if len(data) < fixedPrefix {
		return nil, fmt.Errorf("record too short for fixed prefix: %d bytes", len(data))
	}

	e := &FileEntry{}
	offset := 0

	e.VolumeId = VolumeId(binary.BigEndian.Uint64(data[offset:]))
	offset += 8
	e.FileId = FileId(binary.BigEndian.Uint64(data[offset:]))
	offset += 8
	e.PathId = PathId(binary.BigEndian.Uint64(data[offset:]))
	offset += 8

	pathLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if len(data) < offset+pathLen {
		return nil, fmt.Errorf("record truncated in path: need %d bytes, have %d", pathLen, len(data)-offset)
	}
	e.FullPath = string(data[offset : offset+pathLen])
	offset += pathLen

	const remainingFixed = 8 + 8 + 2 + 8*4 + 1 + 1
	if len(data) < offset+remainingFixed {
		return nil, fmt.Errorf("record truncated after path: need %d bytes, have %d", remainingFixed, len(data)-offset)
	}

	e.SizeLogical = binary.BigEndian.Uint64(data[offset:])
	offset += 8
	e.SizeOnDisk = binary.BigEndian.Uint64(data[offset:])
	offset += 8

	e.Attributes = filesystem.Attributes(binary.BigEndian.Uint16(data[offset:]))
	offset += 2

	timestamps := [4]*int64{&e.Timestamps.Creation, &e.Timestamps.LastWrite, &e.Timestamps.LastAccess, &e.Timestamps.Change}
	for _, t := range timestamps {
		*t = int64(binary.BigEndian.Uint64(data[offset:]))
		offset += 8
	}

	hasHeadTail := data[offset]
	offset++
	if hasHeadTail == 1 {
		if len(data) < offset+32 {
			return nil, fmt.Errorf("record truncated in head/tail signature")
		}
		e.HeadTail16 = append([]byte(nil), data[offset:offset+32]...)
		offset += 32
	}

	if len(data) < offset+1 {
		return nil, fmt.Errorf("record truncated before digest flag")
	}
	hasDigest := data[offset]
	offset++
	if hasDigest == 1 {
		if len(data) < offset+32 {
			return nil, fmt.Errorf("record truncated in digest")
		}
		e.Digest = append([]byte(nil), data[offset:offset+32]...)
		offset += 32
	}

	return e, nil
}
