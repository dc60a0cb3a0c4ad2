package dedupe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GonxKZ/disksense64-sub000/pkg/logging"
	"github.com/GonxKZ/disksense64-sub000/pkg/lsm"
	"github.com/GonxKZ/disksense64-sub000/pkg/model"
)

func testLogger() *logging.Logger {
	return logging.RootLogger.Sublogger("dedupe-test")
}

func openTestIndex(t *testing.T) *lsm.Index {
	t.Helper()
	idx, err := lsm.Open(t.TempDir(), lsm.DefaultMemTableSize, testLogger())
	if err != nil {
		t.Fatalf("Open failed: %s", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

// writeAndIndex writes content to path and puts a matching entry (same
// volume, distinct FileId) into idx, returning the entry.
func writeAndIndex(t *testing.T, idx *lsm.Index, fileID model.FileId, path string, content []byte) *model.FileEntry {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %s", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %s", path, err)
	}
	entry := &model.FileEntry{
		VolumeId:    1,
		FileId:      fileID,
		PathId:      model.HashPath(path),
		FullPath:    path,
		SizeLogical: uint64(len(content)),
		SizeOnDisk:  model.ClusterRoundedSize(uint64(len(content))),
	}
	if err := idx.Put(entry); err != nil {
		t.Fatalf("Put failed: %s", err)
	}
	return entry
}

func TestFindDuplicatesCascade(t *testing.T) {
	idx := openTestIndex(t)
	root := t.TempDir()

	content := []byte("duplicate payload shared across three files")
	writeAndIndex(t, idx, 1, filepath.Join(root, "a.txt"), content)
	writeAndIndex(t, idx, 2, filepath.Join(root, "b.txt"), content)
	writeAndIndex(t, idx, 3, filepath.Join(root, "c.txt"), content)
	writeAndIndex(t, idx, 4, filepath.Join(root, "unique.txt"), []byte("not shared with anything"))
	// Same size as the duplicate trio but different content: must not match.
	writeAndIndex(t, idx, 5, filepath.Join(root, "decoy.txt"), []byte("also forty-three bytes of totally diff text"))

	d := New(idx, testLogger())
	groups, err := d.FindDuplicates(Options{ComputeFullHash: true})
	if err != nil {
		t.Fatalf("FindDuplicates failed: %s", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected exactly 1 duplicate group, got %d", len(groups))
	}
	if len(groups[0].Members) != 3 {
		t.Fatalf("expected 3 members in the duplicate group, got %d", len(groups[0].Members))
	}
}

func TestFindDuplicatesMinFileSize(t *testing.T) {
	idx := openTestIndex(t)
	root := t.TempDir()

	small := []byte("x")
	writeAndIndex(t, idx, 1, filepath.Join(root, "a.txt"), small)
	writeAndIndex(t, idx, 2, filepath.Join(root, "b.txt"), small)

	d := New(idx, testLogger())
	groups, err := d.FindDuplicates(Options{MinFileSize: 1024})
	if err != nil {
		t.Fatalf("FindDuplicates failed: %s", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected small files to be excluded by MinFileSize, got %d groups", len(groups))
	}
}

// TestDeduplicateSafetyGateDowngradesToSimulate verifies that, without the
// safety gate open, a destructive action leaves the filesystem untouched and
// still reports the full potential savings as actual savings.
func TestDeduplicateSafetyGateDowngradesToSimulate(t *testing.T) {
	os.Unsetenv("DISKSENSE_ALLOW_DELETE")

	idx := openTestIndex(t)
	root := t.TempDir()
	content := []byte("gate test payload")
	keep := writeAndIndex(t, idx, 1, filepath.Join(root, "keep.txt"), content)
	redundant := writeAndIndex(t, idx, 2, filepath.Join(root, "redundant.txt"), content)

	d := New(idx, testLogger())
	groups, err := d.FindDuplicates(Options{ComputeFullHash: true})
	if err != nil {
		t.Fatalf("FindDuplicates failed: %s", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	stats, err := d.Deduplicate(groups, Options{Action: ActionUnlink})
	if err != nil {
		t.Fatalf("Deduplicate failed: %s", err)
	}

	if _, err := os.Stat(keep.FullPath); err != nil {
		t.Fatalf("kept file should still exist: %s", err)
	}
	if _, err := os.Stat(redundant.FullPath); err != nil {
		t.Fatalf("redundant file must survive when the safety gate is closed: %s", err)
	}
	if stats.ActualSavings != stats.PotentialSavings {
		t.Fatalf("expected ActualSavings (%d) == PotentialSavings (%d) when downgraded to simulate", stats.ActualSavings, stats.PotentialSavings)
	}
}

func TestKeeperSurvivesDeduplicate(t *testing.T) {
	idx := openTestIndex(t)
	root := t.TempDir()
	content := []byte("keeper must survive unchanged")
	keep := writeAndIndex(t, idx, 1, filepath.Join(root, "keep.txt"), content)
	writeAndIndex(t, idx, 2, filepath.Join(root, "redundant.txt"), content)

	d := New(idx, testLogger())
	groups, err := d.FindDuplicates(Options{ComputeFullHash: true})
	if err != nil {
		t.Fatalf("FindDuplicates failed: %s", err)
	}

	if _, err := d.Deduplicate(groups, Options{Action: ActionSimulate}); err != nil {
		t.Fatalf("Deduplicate failed: %s", err)
	}

	got, err := os.ReadFile(keep.FullPath)
	if err != nil {
		t.Fatalf("keeper must remain readable: %s", err)
	}
	if string(got) != string(content) {
		t.Fatal("keeper content changed across a simulate pass")
	}
}

func TestHashFullContentDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("deterministic content"), 0o644); err != nil {
		t.Fatalf("write failed: %s", err)
	}

	a, err := hashFullContent(path)
	if err != nil {
		t.Fatalf("hashFullContent failed: %s", err)
	}
	b, err := hashFullContent(path)
	if err != nil {
		t.Fatalf("hashFullContent failed: %s", err)
	}
	if !equalDigest(a, b) {
		t.Fatal("hashFullContent produced different digests for the same file")
	}
}

func TestPerFileFailureDoesNotAbortGroup(t *testing.T) {
	idx := openTestIndex(t)
	root := t.TempDir()
	content := []byte("one member will fail to unlink")
	writeAndIndex(t, idx, 1, filepath.Join(root, "keep.txt"), content)
	missing := writeAndIndex(t, idx, 2, filepath.Join(root, "gone.txt"), content)
	present := writeAndIndex(t, idx, 3, filepath.Join(root, "present.txt"), content)

	// Remove the backing file out from under the index entry so unlinkRedundant
	// hits a real per-entry failure partway through the group.
	if err := os.Remove(missing.FullPath); err != nil {
		t.Fatalf("setup remove failed: %s", err)
	}

	d := New(idx, testLogger())
	saved := d.unlinkRedundant([]*model.FileEntry{missing, present})

	if _, err := os.Stat(present.FullPath); !os.IsNotExist(err) {
		t.Fatal("expected the present file after the failing one to still be removed")
	}
	if saved != present.SizeLogical {
		t.Fatalf("expected savings to count only the successfully removed member, got %d want %d", saved, present.SizeLogical)
	}
}
