package lsm

import (
	"fmt"
	"os"
	"time"

	"github.com/aalpar/deheap"
)

// tableCursor walks one table's sorted index in order, feeding the k-way
// merge heap used by compaction.
type tableCursor struct {
	t        *table
	position int
}

func (c *tableCursor) exhausted() bool {
	return c.position >= len(c.t.index)
}

func (c *tableCursor) current() indexEntry {
	return c.t.index[c.position]
}

// mergeHeap is a min-heap of tableCursors ordered by each cursor's current
// key, with ties broken so that the cursor from the most recently written
// (highest-numbered) table wins — mirroring the memtable's "later write
// shadows earlier write" rule during a merge.
type mergeHeap []*tableCursor

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	a, b := h[i].current(), h[j].current()
	if a.VolumeId != b.VolumeId {
		return a.VolumeId < b.VolumeId
	}
	if a.FileId != b.FileId {
		return a.FileId < b.FileId
	}
	return h[i].t.number > h[j].t.number
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x interface{}) {
	*h = append(*h, x.(*tableCursor))
}

func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// mergeTables performs a k-way merge of the sorted index regions of tables,
// collapsing duplicate keys (keeping the entry from the newest table) and
// dropping tombstones whose key does not survive into the result, which
// reclaims space for files that have been deleted or moved since the last
// compaction. It returns the merged, still-sorted set of live records ready
// to serialize into a new SSTable.
func mergeTables(tables []*table) ([]memtableEntry, error) {
	h := &mergeHeap{}
	for _, t := range tables {
		if len(t.index) == 0 {
			continue
		}
		*h = append(*h, &tableCursor{t: t})
	}
	deheap.Init(h)

	var result []memtableEntry
	var lastKey [2]uint64
	haveLastKey := false

	for h.Len() > 0 {
		cursor := deheap.Pop(h).(*tableCursor)
		entry := cursor.current()
		key := [2]uint64{uint64(entry.VolumeId), uint64(entry.FileId)}

		if !haveLastKey || key != lastKey {
			if !entry.Deleted {
				record, err := cursor.t.decodeRecord(entry)
				if err != nil {
					return nil, fmt.Errorf("decode record during compaction: %w", err)
				}
				result = append(result, memtableEntry{VolumeId: entry.VolumeId, FileId: entry.FileId, Entry: record})
			}
			lastKey = key
			haveLastKey = true
		}

		cursor.position++
		if !cursor.exhausted() {
			deheap.Push(h, cursor)
		}
	}

	return result, nil
}

// Compact merges every level that holds at least filesPerLevelTrigger
// SSTables into a single SSTable one level down, dropping stale duplicates
// and tombstones along the way.
func (idx *Index) Compact() error {
	idx.mutex.Lock()
	var toMerge []*table
	var mergeLevel int
	for level := 0; level < len(idx.levels); level++ {
		if len(idx.levels[level]) >= filesPerLevelTrigger {
			toMerge = append(toMerge, idx.levels[level]...)
			mergeLevel = level
			break
		}
	}
	idx.mutex.Unlock()

	if len(toMerge) == 0 {
		return nil
	}

	merged, err := mergeTables(toMerge)
	if err != nil {
		return fmt.Errorf("merge tables at level %d: %w", mergeLevel, err)
	}

	idx.mutex.Lock()
	number := idx.nextNumber
	idx.nextNumber++
	idx.mutex.Unlock()

	targetLevel := mergeLevel + 1
	path := idx.tableFileName(targetLevel, number)
	if err := writeTableFile(path, merged); err != nil {
		return fmt.Errorf("write compacted sstable: %w", err)
	}

	newTable, err := openTable(path, targetLevel, number)
	if err != nil {
		return fmt.Errorf("reopen compacted sstable: %w", err)
	}

	idx.mutex.Lock()
	for len(idx.levels) <= targetLevel {
		idx.levels = append(idx.levels, nil)
	}
	oldPaths := make([]string, 0, len(toMerge))
	for _, t := range toMerge {
		oldPaths = append(oldPaths, t.path)
	}
	idx.levels[mergeLevel] = nil
	idx.levels[targetLevel] = append(idx.levels[targetLevel], newTable)
	idx.mutex.Unlock()

	for i, t := range toMerge {
		if err := t.close(); err != nil {
			idx.logger.Warnf("unable to unmap compacted sstable: %s", err)
		}
		if err := os.Remove(oldPaths[i]); err != nil {
			idx.logger.Warnf("unable to remove compacted sstable %s: %s", oldPaths[i], err)
		}
	}

	idx.logger.Debugf("compacted %d tables from level %d into %s (%d entries)", len(toMerge), mergeLevel, path, len(merged))

	// Go on with any other level that still holds enough tables, including
	// the level that just received the merged output.
	return idx.Compact()
}

// StartCompaction launches the background goroutine that periodically calls
// Compact. It is a no-op if compaction is already running.
func (idx *Index) StartCompaction() {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	if idx.compactionStop != nil {
		return
	}
	idx.compactionStop = make(chan struct{})
	idx.compactionDone = make(chan struct{})

	go func(stop chan struct{}, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(compactionInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := idx.Compact(); err != nil {
					idx.logger.Warnf("compaction failed: %s", err)
				}
			}
		}
	}(idx.compactionStop, idx.compactionDone)
}

// StopCompaction signals the background compactor to stop and waits for it to
// exit. It is a no-op if compaction is not running.
func (idx *Index) StopCompaction() {
	idx.mutex.Lock()
	stop, done := idx.compactionStop, idx.compactionDone
	idx.compactionStop, idx.compactionDone = nil, nil
	idx.mutex.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
