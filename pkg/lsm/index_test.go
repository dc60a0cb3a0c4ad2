package lsm

import (
	"fmt"
	"testing"
	"time"

	"github.com/GonxKZ/disksense64-sub000/pkg/logging"
	"github.com/GonxKZ/disksense64-sub000/pkg/model"
)

func testLogger() *logging.Logger {
	return logging.RootLogger.Sublogger("lsm-test")
}

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	dir := t.TempDir()
	idx, err := Open(dir, DefaultMemTableSize, testLogger())
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func entryFor(volume model.VolumeId, file model.FileId, path string, size uint64) *model.FileEntry {
	return &model.FileEntry{
		VolumeId:    volume,
		FileId:      file,
		PathId:      model.HashPath(path),
		FullPath:    path,
		SizeLogical: size,
		SizeOnDisk:  model.ClusterRoundedSize(size),
	}
}

func TestReadYourWrites(t *testing.T) {
	idx := openTestIndex(t)
	e := entryFor(1, 1, "/a/b.txt", 100)

	if err := idx.Put(e); err != nil {
		t.Fatalf("Put failed: %s", err)
	}
	got, ok := idx.Get(1, 1)
	if !ok {
		t.Fatal("expected Get to find the just-written entry")
	}
	if got.FullPath != e.FullPath || got.SizeLogical != e.SizeLogical {
		t.Fatalf("Get returned mismatched entry: %+v", got)
	}
}

func TestTombstoneShadowsActiveEntry(t *testing.T) {
	idx := openTestIndex(t)
	e := entryFor(1, 1, "/a/b.txt", 100)

	if err := idx.Put(e); err != nil {
		t.Fatalf("Put failed: %s", err)
	}
	idx.Remove(1, 1)

	if _, ok := idx.Get(1, 1); ok {
		t.Fatal("expected Get to report no entry after Remove")
	}
}

func TestTombstoneSurvivesFlush(t *testing.T) {
	idx := openTestIndex(t)
	e := entryFor(1, 1, "/a/b.txt", 100)

	if err := idx.Put(e); err != nil {
		t.Fatalf("Put failed: %s", err)
	}
	if err := idx.Flush(); err != nil {
		t.Fatalf("Flush failed: %s", err)
	}
	idx.Remove(1, 1)

	if _, ok := idx.Get(1, 1); ok {
		t.Fatal("expected tombstone to shadow the flushed SSTable entry")
	}

	if err := idx.Flush(); err != nil {
		t.Fatalf("second Flush failed: %s", err)
	}
	if _, ok := idx.Get(1, 1); ok {
		t.Fatal("expected tombstone to still shadow the entry after a second flush")
	}
}

func TestFlushPreservesObservableState(t *testing.T) {
	idx := openTestIndex(t)
	entries := []*model.FileEntry{
		entryFor(1, 1, "/a/one.txt", 100),
		entryFor(1, 2, "/a/two.txt", 200),
		entryFor(2, 1, "/b/three.txt", 100),
	}
	for _, e := range entries {
		if err := idx.Put(e); err != nil {
			t.Fatalf("Put failed: %s", err)
		}
	}

	before, err := idx.GetBySize(100)
	if err != nil {
		t.Fatalf("GetBySize failed: %s", err)
	}

	if err := idx.Flush(); err != nil {
		t.Fatalf("Flush failed: %s", err)
	}

	after, err := idx.GetBySize(100)
	if err != nil {
		t.Fatalf("GetBySize after flush failed: %s", err)
	}
	if len(before) != len(after) || len(after) != 2 {
		t.Fatalf("GetBySize(100) changed across flush: before=%d after=%d", len(before), len(after))
	}

	byVolume, err := idx.GetByVolume(1)
	if err != nil {
		t.Fatalf("GetByVolume failed: %s", err)
	}
	if len(byVolume) != 2 {
		t.Fatalf("expected 2 entries on volume 1, got %d", len(byVolume))
	}
}

func TestDurabilityAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(dir, DefaultMemTableSize, testLogger())
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}

	e := entryFor(1, 1, "/a/b.txt", 4096)
	if err := idx.Put(e); err != nil {
		t.Fatalf("Put failed: %s", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close failed: %s", err)
	}

	reopened, err := Open(dir, DefaultMemTableSize, testLogger())
	if err != nil {
		t.Fatalf("reopen failed: %s", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get(1, 1)
	if !ok {
		t.Fatal("expected entry to survive close/reopen")
	}
	if got.FullPath != e.FullPath {
		t.Fatalf("reopened entry path mismatch: got %q want %q", got.FullPath, e.FullPath)
	}
}

func TestCompactionPreservesObservableState(t *testing.T) {
	idx := openTestIndex(t)

	for i := 0; i < 20; i++ {
		path := fmt.Sprintf("/a/file%d", i)
		e := entryFor(1, model.FileId(i), path, uint64(i))
		if err := idx.Put(e); err != nil {
			t.Fatalf("Put failed: %s", err)
		}
		if err := idx.Flush(); err != nil {
			t.Fatalf("Flush failed: %s", err)
		}
	}

	before, err := idx.All()
	if err != nil {
		t.Fatalf("All failed: %s", err)
	}

	if err := idx.Compact(); err != nil {
		t.Fatalf("Compact failed: %s", err)
	}
	if err := idx.Compact(); err != nil {
		t.Fatalf("second Compact failed: %s", err)
	}

	after, err := idx.All()
	if err != nil {
		t.Fatalf("All after compact failed: %s", err)
	}
	if len(before) != len(after) {
		t.Fatalf("entry count changed across compaction: before=%d after=%d", len(before), len(after))
	}
}

func TestGetByDateRange(t *testing.T) {
	idx := openTestIndex(t)
	now := time.Now()

	inRange := entryFor(1, 1, "/a/in.txt", 10)
	inRange.Timestamps.LastWrite = now.UnixNano()
	outOfRange := entryFor(1, 2, "/a/out.txt", 10)
	outOfRange.Timestamps.LastWrite = now.Add(-48 * time.Hour).UnixNano()

	if err := idx.Put(inRange); err != nil {
		t.Fatalf("Put failed: %s", err)
	}
	if err := idx.Put(outOfRange); err != nil {
		t.Fatalf("Put failed: %s", err)
	}

	results, err := idx.GetByDateRange(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetByDateRange failed: %s", err)
	}
	if len(results) != 1 || results[0].FullPath != inRange.FullPath {
		t.Fatalf("expected only the in-range entry, got %+v", results)
	}
}
