// Package lsm implements the on-disk log-structured-merge index that backs a
// scan: an in-memory memtable absorbs writes, periodic flushes turn it into
// an immutable, memory-mapped SSTable, and a background compactor merges
// SSTables within a level to bound the number of files a lookup must
// consult.
package lsm

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/GonxKZ/disksense64-sub000/pkg/model"
)

// sstableMagic identifies an SSTable file. It is the ASCII bytes "INDX" read
// as a big-endian uint32.
const sstableMagic = 0x494E4458

const sstableVersion = 1

// headerSize is the fixed size, in bytes, of an SSTable header:
// magic(4) + version(4) + entryCount(8) + minVolumeId(8) + maxVolumeId(8) +
// minFileId(8) + maxFileId(8).
const headerSize = 4 + 4 + 8 + 8 + 8 + 8 + 8

// indexEntrySize is the fixed size, in bytes, of one sorted index entry:
// volumeId(8) + fileId(8) + offset(8) + size(4) + deleted(1).
const indexEntrySize = 8 + 8 + 8 + 4 + 1

// header is the fixed-layout SSTable header.
type header struct {
	Magic        uint32
	Version      uint32
	EntryCount   uint64
	MinVolumeId  uint64
	MaxVolumeId  uint64
	MinFileId    uint64
	MaxFileId    uint64
}

func (h *header) encode() []byte {
	buffer := make([]byte, headerSize)
	binary.BigEndian.PutUint32(buffer[0:], h.Magic)
	binary.BigEndian.PutUint32(buffer[4:], h.Version)
	binary.BigEndian.PutUint64(buffer[8:], h.EntryCount)
	binary.BigEndian.PutUint64(buffer[16:], h.MinVolumeId)
	binary.BigEndian.PutUint64(buffer[24:], h.MaxVolumeId)
	binary.BigEndian.PutUint64(buffer[32:], h.MinFileId)
	binary.BigEndian.PutUint64(buffer[40:], h.MaxFileId)
	return buffer
}

func decodeHeader(buffer []byte) (*header, error) {
	if len(buffer) < headerSize {
		return nil, fmt.Errorf("sstable header truncated: have %d bytes, need %d", len(buffer), headerSize)
	}
	h := &header{
		Magic:       binary.BigEndian.Uint32(buffer[0:]),
		Version:     binary.BigEndian.Uint32(buffer[4:]),
		EntryCount:  binary.BigEndian.Uint64(buffer[8:]),
		MinVolumeId: binary.BigEndian.Uint64(buffer[16:]),
		MaxVolumeId: binary.BigEndian.Uint64(buffer[24:]),
		MinFileId:   binary.BigEndian.Uint64(buffer[32:]),
		MaxFileId:   binary.BigEndian.Uint64(buffer[40:]),
	}
	if h.Magic != sstableMagic {
		return nil, fmt.Errorf("bad sstable magic %#x, expected %#x", h.Magic, sstableMagic)
	}
	if h.Version != sstableVersion {
		return nil, fmt.Errorf("unsupported sstable version %d", h.Version)
	}
	return h, nil
}

// indexEntry is one row of an SSTable's sorted index: the key plus the byte
// range of the corresponding record in the data region.
type indexEntry struct {
	VolumeId model.VolumeId
	FileId   model.FileId
	Offset   uint64
	Size     uint32
	Deleted  bool
}

func (e *indexEntry) encode() []byte {
	buffer := make([]byte, indexEntrySize)
	binary.BigEndian.PutUint64(buffer[0:], uint64(e.VolumeId))
	binary.BigEndian.PutUint64(buffer[8:], uint64(e.FileId))
	binary.BigEndian.PutUint64(buffer[16:], e.Offset)
	binary.BigEndian.PutUint32(buffer[24:], e.Size)
	if e.Deleted {
		buffer[28] = 1
	}
	return buffer
}

func decodeIndexEntry(buffer []byte) indexEntry {
	return indexEntry{
		VolumeId: model.VolumeId(binary.BigEndian.Uint64(buffer[0:])),
		FileId:   model.FileId(binary.BigEndian.Uint64(buffer[8:])),
		Offset:   binary.BigEndian.Uint64(buffer[16:]),
		Size:     binary.BigEndian.Uint32(buffer[24:]),
		Deleted:  buffer[28] != 0,
	}
}

// lessKey orders entries the same way MemTable does: by VolumeId, then
// FileId. Every SSTable's index region is sorted by this order, which is
// what lets both point lookups and the compactor's k-way merge use a single
// comparison function.
func lessKey(aVolume model.VolumeId, aFile model.FileId, bVolume model.VolumeId, bFile model.FileId) bool {
	if aVolume != bVolume {
		return aVolume < bVolume
	}
	return aFile < bFile
}

// encodeSSTable serializes a sorted slice of memtable entries into the full
// byte image of an SSTable file: header, sorted index, then concatenated
// data records.
func encodeSSTable(entries []memtableEntry) []byte {
	sorted := append([]memtableEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return lessKey(sorted[i].VolumeId, sorted[i].FileId, sorted[j].VolumeId, sorted[j].FileId)
	})

	h := &header{Magic: sstableMagic, Version: sstableVersion, EntryCount: uint64(len(sorted))}
	records := make([][]byte, len(sorted))
	for i, e := range sorted {
		volume, file := uint64(e.VolumeId), uint64(e.FileId)
		if i == 0 {
			h.MinVolumeId, h.MinFileId = volume, file
		}
		if i == len(sorted)-1 {
			h.MaxVolumeId, h.MaxFileId = volume, file
		}
		if !e.Deleted {
			records[i] = e.Entry.Marshal()
		}
	}

	indexSize := len(sorted) * indexEntrySize
	dataOffset := uint64(headerSize + indexSize)

	buffer := make([]byte, headerSize, headerSize+indexSize+dataOffsetTotal(records))
	buffer = append(buffer[:0], h.encode()...)

	indexRegion := make([]byte, 0, indexSize)
	dataRegion := make([]byte, 0)
	offset := dataOffset
	for i, e := range sorted {
		size := uint32(len(records[i]))
		indexRegion = append(indexRegion, (&indexEntry{
			VolumeId: e.VolumeId,
			FileId:   e.FileId,
			Offset:   offset,
			Size:     size,
			Deleted:  e.Deleted,
		}).encode()...)
		dataRegion = append(dataRegion, records[i]...)
		offset += uint64(size)
	}

	buffer = append(buffer, indexRegion...)
	buffer = append(buffer, dataRegion...)
	return buffer
}

func dataOffsetTotal(records [][]byte) int {
	total := 0
	for _, r := range records {
		total += len(r)
	}
	return total
}
