package scan

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/GonxKZ/disksense64-sub000/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.RootLogger.Sublogger("scan-test")
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %s", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %s", path, err)
	}
}

func TestScanCoverage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("a"))
	writeFile(t, filepath.Join(root, "sub", "b.txt"), []byte("bb"))
	writeFile(t, filepath.Join(root, "sub", "deeper", "c.txt"), []byte("ccc"))

	scanner := New(testLogger())
	var count int
	err := scanner.Scan(root, Options{ComputeHeadTail: true}, func(e Event) {
		count++
	})
	if err != nil {
		t.Fatalf("Scan failed: %s", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 FileAdded events, got %d", count)
	}
}

func TestScanExclusion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), []byte("keep"))
	excludedDir := filepath.Join(root, "excluded")
	writeFile(t, filepath.Join(excludedDir, "skip.txt"), []byte("skip"))

	scanner := New(testLogger())
	var paths []string
	options := Options{ComputeHeadTail: true, ExcludePaths: []string{excludedDir}}
	err := scanner.Scan(root, options, func(e Event) {
		paths = append(paths, e.Entry.FullPath)
	})
	if err != nil {
		t.Fatalf("Scan failed: %s", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected exactly 1 event, got %d: %v", len(paths), paths)
	}
	for _, p := range paths {
		if filepath.Dir(p) == excludedDir {
			t.Fatalf("excluded path was scanned: %s", p)
		}
	}
}

func TestScanMinFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.txt"), []byte("x"))
	writeFile(t, filepath.Join(root, "big.txt"), make([]byte, 4096))

	scanner := New(testLogger())
	var count int
	err := scanner.Scan(root, Options{MinFileSize: 1024}, func(e Event) {
		count++
	})
	if err != nil {
		t.Fatalf("Scan failed: %s", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 event past the min-size filter, got %d", count)
	}
}

func TestScanHeadTailSignature(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.txt"), []byte("hello world"))

	scanner := New(testLogger())
	var entryCount int
	err := scanner.Scan(root, Options{ComputeHeadTail: true}, func(e Event) {
		entryCount++
		if !e.Entry.HasSignature() {
			t.Errorf("expected HeadTail16 to be populated for %s", e.Entry.FullPath)
		}
	})
	if err != nil {
		t.Fatalf("Scan failed: %s", err)
	}
	if entryCount != 1 {
		t.Fatalf("expected 1 event, got %d", entryCount)
	}
}

func TestScanFollowReparsePoints(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real", "linked.txt"), []byte("linked"))
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported on this filesystem: %s", err)
	}

	scanner := New(testLogger())
	var paths []string
	err := scanner.Scan(root, Options{FollowReparsePoints: false}, func(e Event) {
		paths = append(paths, e.Entry.FullPath)
	})
	if err != nil {
		t.Fatalf("Scan failed: %s", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected the symlink not to be descended by default, got %d events: %v", len(paths), paths)
	}

	paths = nil
	err = scanner.Scan(root, Options{FollowReparsePoints: true}, func(e Event) {
		paths = append(paths, e.Entry.FullPath)
	})
	if err != nil {
		t.Fatalf("Scan failed: %s", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected the symlink to be descended, got %d events: %v", len(paths), paths)
	}
}

func TestScanFollowReparsePointsAvoidsCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real.txt"), []byte("x"))
	if err := os.Symlink(root, filepath.Join(root, "self")); err != nil {
		t.Skipf("symlinks unsupported on this filesystem: %s", err)
	}

	scanner := New(testLogger())
	var count int
	err := scanner.Scan(root, Options{FollowReparsePoints: true}, func(e Event) {
		count++
	})
	if err != nil {
		t.Fatalf("Scan failed: %s", err)
	}
	if count != 1 {
		t.Fatalf("expected the self-referential link to be visited once, not looped, got %d events", count)
	}
}

func TestScanCancellationStopsPromptly(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 200; i++ {
		writeFile(t, filepath.Join(root, "dir", strconv.Itoa(i)+".txt"), []byte("x"))
	}

	scanner := New(testLogger())
	var count int
	err := scanner.Scan(root, Options{}, func(e Event) {
		count++
		if count == 1 {
			scanner.Cancel()
		}
	})
	if err != ErrCancelled {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	// At most one more event may be emitted after Cancel is called; the walk
	// checks cancellation before every directory entry.
	if count > 2 {
		t.Fatalf("expected at most one event after the one that called Cancel, got %d events", count)
	}
}
