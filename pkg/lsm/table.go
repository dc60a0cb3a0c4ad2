package lsm

import (
	"fmt"
	"os"
	"sort"

	"github.com/GonxKZ/disksense64-sub000/pkg/model"
)

// table is an immutable, memory-mapped SSTable opened for reads. Its index
// region is decoded once at open time; the data region stays memory-mapped
// and is only decoded lazily, one record at a time, by get/scan.
type table struct {
	path   string
	header header
	index  []indexEntry
	data   mappedFile
	level  int
	number int
}

// openTable memory-maps the SSTable at path and decodes its header and index
// region. The data region is left mapped for lazy, on-demand decoding.
func openTable(path string, level, number int) (*table, error) {
	mapped, err := mapFileReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("mmap sstable %s: %w", path, err)
	}

	h, err := decodeHeader(mapped.bytes())
	if err != nil {
		mapped.close()
		return nil, fmt.Errorf("decode sstable header %s: %w", path, err)
	}

	indexStart := headerSize
	indexEnd := indexStart + int(h.EntryCount)*indexEntrySize
	raw := mapped.bytes()
	if len(raw) < indexEnd {
		mapped.close()
		return nil, fmt.Errorf("sstable index truncated in %s", path)
	}

	index := make([]indexEntry, h.EntryCount)
	for i := range index {
		start := indexStart + i*indexEntrySize
		index[i] = decodeIndexEntry(raw[start : start+indexEntrySize])
	}

	return &table{path: path, header: *h, index: index, data: mapped, level: level, number: number}, nil
}

func (t *table) close() error {
	return t.data.close()
}

// find performs a binary search over the sorted index for an exact key.
func (t *table) find(volumeId model.VolumeId, fileId model.FileId) (indexEntry, bool) {
	i := sort.Search(len(t.index), func(i int) bool {
		return !lessKey(t.index[i].VolumeId, t.index[i].FileId, volumeId, fileId)
	})
	if i < len(t.index) && t.index[i].VolumeId == volumeId && t.index[i].FileId == fileId {
		return t.index[i], true
	}
	return indexEntry{}, false
}

// get returns the decoded entry for a key, or (nil, false) if absent. A
// tombstone found in this table counts as "present" for shadowing purposes in
// the caller's merge across levels, so the caller must inspect Deleted.
func (t *table) get(volumeId model.VolumeId, fileId model.FileId) (*model.FileEntry, bool, bool) {
	entry, found := t.find(volumeId, fileId)
	if !found {
		return nil, false, false
	}
	if entry.Deleted {
		return nil, true, true
	}
	decoded, err := t.decodeRecord(entry)
	if err != nil {
		return nil, false, false
	}
	return decoded, false, true
}

func (t *table) decodeRecord(entry indexEntry) (*model.FileEntry, error) {
	raw := t.data.bytes()
	start, end := entry.Offset, entry.Offset+uint64(entry.Size)
	if end > uint64(len(raw)) {
		return nil, fmt.Errorf("record out of range in %s", t.path)
	}
	return model.Unmarshal(raw[start:end])
}

// all decodes and returns every live record in the table. The Index range
// queries and the compactor walk the index region directly instead.
func (t *table) all() ([]*model.FileEntry, error) {
	result := make([]*model.FileEntry, 0, len(t.index))
	for _, entry := range t.index {
		if entry.Deleted {
			continue
		}
		decoded, err := t.decodeRecord(entry)
		if err != nil {
			return nil, err
		}
		result = append(result, decoded)
	}
	return result, nil
}

// writeTableFile serializes entries and writes them to a new SSTable file at
// path, creating it atomically via a temporary-file-plus-rename so a reader
// never observes a partially written file.
func writeTableFile(path string, entries []memtableEntry) error {
	image := encodeSSTable(entries)

	temporary := path + ".tmp"
	file, err := os.OpenFile(temporary, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create sstable temp file: %w", err)
	}
	if _, err := file.Write(image); err != nil {
		file.Close()
		os.Remove(temporary)
		return fmt.Errorf("write sstable temp file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporary)
		return fmt.Errorf("sync sstable temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporary)
		return fmt.Errorf("close sstable temp file: %w", err)
	}
	if err := os.Rename(temporary, path); err != nil {
		os.Remove(temporary)
		return fmt.Errorf("rename sstable into place: %w", err)
	}
	return nil
}
