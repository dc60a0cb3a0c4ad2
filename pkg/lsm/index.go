package lsm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GonxKZ/disksense64-sub000/pkg/logging"
	"github.com/GonxKZ/disksense64-sub000/pkg/model"
)

// DefaultMemTableSize is the approximate number of bytes an Index buffers in
// memory before flushing to a new level-0 SSTable.
const DefaultMemTableSize = 64 * 1024 * 1024

// compactionInterval is how often the background compactor checks whether any
// level has accumulated enough SSTables to merge.
const compactionInterval = 10 * time.Second

// filesPerLevelTrigger is the number of SSTables a level may hold before the
// compactor merges them into the next level.
const filesPerLevelTrigger = 4

// Index is a log-structured-merge index over FileEntry records, keyed by
// (VolumeId, FileId). Writes land in an in-memory memtable; once it crosses
// the memtable size given to Open, the Put that crossed it swaps it for a
// fresh memtable and synchronously flushes it to a level-0 SSTable. A
// background compactor, once started, periodically merges same-level
// SSTables to bound lookup fan-out.
type Index struct {
	directory     string
	memTableSize  uint64
	logger        *logging.Logger

	mutex       sync.RWMutex
	active      *memTable
	immutable   *memTable
	levels      [][]*table
	nextNumber  int

	flushMutex sync.Mutex

	compactionStop chan struct{}
	compactionDone chan struct{}
}

// Open opens or creates an Index rooted at directory, loading any existing
// SSTables it finds there.
func Open(directory string, memTableSize uint64, logger *logging.Logger) (*Index, error) {
	if memTableSize == 0 {
		memTableSize = DefaultMemTableSize
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	index := &Index{
		directory:    directory,
		memTableSize: memTableSize,
		logger:       logger,
		active:       newMemTable(),
	}

	if err := index.loadExistingTables(); err != nil {
		return nil, err
	}
	return index, nil
}

func (idx *Index) loadExistingTables() error {
	entries, err := os.ReadDir(idx.directory)
	if err != nil {
		return fmt.Errorf("read index directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var level, number int
		if _, err := fmt.Sscanf(entry.Name(), "sstable_%d_%d.dat", &level, &number); err != nil {
			continue
		}
		t, err := openTable(filepath.Join(idx.directory, entry.Name()), level, number)
		if err != nil {
			idx.logger.Warnf("skipping corrupt sstable %s: %s", entry.Name(), err)
			continue
		}
		for len(idx.levels) <= level {
			idx.levels = append(idx.levels, nil)
		}
		idx.levels[level] = append(idx.levels[level], t)
		if number >= idx.nextNumber {
			idx.nextNumber = number + 1
		}
	}
	// Directory order is lexical ("sstable_0_10" before "sstable_0_9"); keep
	// each level in creation order so that lookups, which scan a level from
	// its end, see the newest table first.
	for _, tables := range idx.levels {
		sort.Slice(tables, func(i, j int) bool { return tables[i].number < tables[j].number })
	}
	return nil
}

func (idx *Index) tableFileName(level, number int) string {
	return filepath.Join(idx.directory, fmt.Sprintf("sstable_%d_%d.dat", level, number))
}

// Put inserts or updates a file entry.
func (idx *Index) Put(entry *model.FileEntry) error {
	idx.mutex.Lock()
	idx.active.put(entry)
	shouldFlush := idx.active.size() >= idx.memTableSize
	idx.mutex.Unlock()

	if shouldFlush {
		return idx.Flush()
	}
	return nil
}

// Remove marks a file entry as deleted. The key is shadowed, not erased,
// until a future compaction drops the tombstone.
func (idx *Index) Remove(volumeId model.VolumeId, fileId model.FileId) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	idx.active.remove(volumeId, fileId)
}

// Get looks up a single entry, consulting the active memtable, then the
// immutable memtable being flushed, then each level from newest to oldest.
// The first hit (live or tombstoned) wins.
func (idx *Index) Get(volumeId model.VolumeId, fileId model.FileId) (*model.FileEntry, bool) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	if entry, deleted, found := idx.active.get(volumeId, fileId); found {
		if deleted {
			return nil, false
		}
		return entry, true
	}
	if idx.immutable != nil {
		if entry, deleted, found := idx.immutable.get(volumeId, fileId); found {
			if deleted {
				return nil, false
			}
			return entry, true
		}
	}
	for level := 0; level < len(idx.levels); level++ {
		tables := idx.levels[level]
		for i := len(tables) - 1; i >= 0; i-- {
			if entry, deleted, found := tables[i].get(volumeId, fileId); found {
				if deleted {
					return nil, false
				}
				return entry, true
			}
		}
	}
	return nil, false
}

// allLiveEntries materializes the full logical key space: every key's most
// recent live (non-tombstoned) version, scanning memtables then tables from
// newest to oldest so later writes shadow earlier ones.
func (idx *Index) allLiveEntries() ([]*model.FileEntry, error) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	seen := make(map[[2]uint64]bool)
	var result []*model.FileEntry

	consider := func(e *model.FileEntry, deleted bool) {
		key := [2]uint64{uint64(e.VolumeId), uint64(e.FileId)}
		if seen[key] {
			return
		}
		seen[key] = true
		if !deleted {
			result = append(result, e)
		}
	}

	for _, mt := range []*memTable{idx.active, idx.immutable} {
		if mt == nil {
			continue
		}
		for _, e := range mt.snapshot() {
			if e.Entry == nil {
				consider(&model.FileEntry{VolumeId: e.VolumeId, FileId: e.FileId}, true)
			} else {
				consider(e.Entry, e.Deleted)
			}
		}
	}
	for level := 0; level < len(idx.levels); level++ {
		tables := idx.levels[level]
		for i := len(tables) - 1; i >= 0; i-- {
			for _, e := range tables[i].index {
				if e.Deleted {
					consider(&model.FileEntry{VolumeId: e.VolumeId, FileId: e.FileId}, true)
					continue
				}
				decoded, err := tables[i].decodeRecord(e)
				if err != nil {
					return nil, err
				}
				consider(decoded, false)
			}
		}
	}
	return result, nil
}

// All returns every live entry currently in the index.
func (idx *Index) All() ([]*model.FileEntry, error) {
	return idx.allLiveEntries()
}

// GetByVolume returns every live entry belonging to a volume.
func (idx *Index) GetByVolume(volumeId model.VolumeId) ([]*model.FileEntry, error) {
	all, err := idx.allLiveEntries()
	if err != nil {
		return nil, err
	}
	var result []*model.FileEntry
	for _, e := range all {
		if e.VolumeId == volumeId {
			result = append(result, e)
		}
	}
	return result, nil
}

// GetBySize returns every live entry with the given logical size.
func (idx *Index) GetBySize(size uint64) ([]*model.FileEntry, error) {
	all, err := idx.allLiveEntries()
	if err != nil {
		return nil, err
	}
	var result []*model.FileEntry
	for _, e := range all {
		if e.SizeLogical == size {
			result = append(result, e)
		}
	}
	return result, nil
}

// GetByPath returns the live entry at an exact path, if any.
func (idx *Index) GetByPath(path string) (*model.FileEntry, error) {
	all, err := idx.allLiveEntries()
	if err != nil {
		return nil, err
	}
	for _, e := range all {
		if e.FullPath == path {
			return e, nil
		}
	}
	return nil, nil
}

// GetByExtension returns every live entry whose path has the given extension
// (case-insensitive, with or without a leading dot).
func (idx *Index) GetByExtension(extension string) ([]*model.FileEntry, error) {
	extension = strings.ToLower(strings.TrimPrefix(extension, "."))
	all, err := idx.allLiveEntries()
	if err != nil {
		return nil, err
	}
	var result []*model.FileEntry
	for _, e := range all {
		got := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.FullPath), "."))
		if got == extension {
			result = append(result, e)
		}
	}
	return result, nil
}

// GetByDateRange returns every live entry whose last-write timestamp falls
// within [start, end], inclusive.
func (idx *Index) GetByDateRange(start, end time.Time) ([]*model.FileEntry, error) {
	all, err := idx.allLiveEntries()
	if err != nil {
		return nil, err
	}
	startNano, endNano := start.UnixNano(), end.UnixNano()
	var result []*model.FileEntry
	for _, e := range all {
		if e.Timestamps.LastWrite >= startNano && e.Timestamps.LastWrite <= endNano {
			result = append(result, e)
		}
	}
	return result, nil
}

// Flush swaps the active memtable for a fresh one and synchronously
// serializes the swapped-out memtable to a new level-0 SSTable.
func (idx *Index) Flush() error {
	idx.flushMutex.Lock()
	defer idx.flushMutex.Unlock()

	idx.mutex.Lock()
	if idx.active.isEmpty() {
		idx.mutex.Unlock()
		return nil
	}
	idx.immutable = idx.active
	idx.active = newMemTable()
	number := idx.nextNumber
	idx.nextNumber++
	idx.mutex.Unlock()

	snapshot := idx.immutable.snapshot()
	path := idx.tableFileName(0, number)
	if err := writeTableFile(path, snapshot); err != nil {
		return fmt.Errorf("flush memtable: %w", err)
	}

	t, err := openTable(path, 0, number)
	if err != nil {
		return fmt.Errorf("reopen flushed sstable: %w", err)
	}

	idx.mutex.Lock()
	for len(idx.levels) == 0 {
		idx.levels = append(idx.levels, nil)
	}
	idx.levels[0] = append(idx.levels[0], t)
	idx.immutable = nil
	idx.mutex.Unlock()

	idx.logger.Debugf("flushed memtable to %s (%d entries)", path, t.header.EntryCount)
	return nil
}

// Close flushes any buffered writes and releases every memory mapping.
func (idx *Index) Close() error {
	idx.StopCompaction()
	if err := idx.Flush(); err != nil {
		return err
	}
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	for _, level := range idx.levels {
		for _, t := range level {
			if err := t.close(); err != nil {
				return err
			}
		}
	}
	return nil
}
