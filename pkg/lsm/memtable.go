package lsm

import (
	"sort"
	"sync"

	"github.com/GonxKZ/disksense64-sub000/pkg/model"
)

// memtableEntry is one write buffered in memory, either a live record or a
// tombstone marking a deletion.
type memtableEntry struct {
	VolumeId model.VolumeId
	FileId   model.FileId
	Entry    *model.FileEntry
	Deleted  bool
}

// memTable is the in-memory, append-only write buffer for an Index. Entries
// are appended in arrival order; duplicate keys are resolved by keeping the
// most recent entry, mirroring a log where later writes shadow earlier ones.
type memTable struct {
	mutex       sync.RWMutex
	entries     []memtableEntry
	approxBytes uint64
}

func newMemTable() *memTable {
	return &memTable{}
}

func (t *memTable) put(entry *model.FileEntry) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.entries = append(t.entries, memtableEntry{VolumeId: entry.VolumeId, FileId: entry.FileId, Entry: entry})
	t.approxBytes += estimateEntrySize(entry)
}

func (t *memTable) remove(volumeId model.VolumeId, fileId model.FileId) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.entries = append(t.entries, memtableEntry{VolumeId: volumeId, FileId: fileId, Deleted: true})
	t.approxBytes += indexEntrySize
}

// get performs a reverse linear scan so that the most recently written
// version of a key (live or tombstoned) wins.
func (t *memTable) get(volumeId model.VolumeId, fileId model.FileId) (*model.FileEntry, bool, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		if e.VolumeId == volumeId && e.FileId == fileId {
			return e.Entry, e.Deleted, true
		}
	}
	return nil, false, false
}

// size returns the approximate number of bytes buffered, used to decide when
// to flush.
func (t *memTable) size() uint64 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.approxBytes
}

func (t *memTable) isEmpty() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.entries) == 0
}

// snapshot returns the entries sorted by key, collapsing duplicate keys to
// their most recent write. This is the form flush serializes to an SSTable.
func (t *memTable) snapshot() []memtableEntry {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	latest := make(map[[2]uint64]memtableEntry, len(t.entries))
	order := make([][2]uint64, 0, len(t.entries))
	for _, e := range t.entries {
		key := [2]uint64{uint64(e.VolumeId), uint64(e.FileId)}
		if _, exists := latest[key]; !exists {
			order = append(order, key)
		}
		latest[key] = e
	}

	result := make([]memtableEntry, 0, len(order))
	for _, key := range order {
		result = append(result, latest[key])
	}
	sort.Slice(result, func(i, j int) bool {
		return lessKey(result[i].VolumeId, result[i].FileId, result[j].VolumeId, result[j].FileId)
	})
	return result
}

// estimateEntrySize approximates the memory cost of buffering one entry, used
// only to decide when the memtable has grown large enough to flush.
func estimateEntrySize(entry *model.FileEntry) uint64 {
	return uint64(64 + len(entry.FullPath) + len(entry.HeadTail16) + len(entry.Digest))
}
