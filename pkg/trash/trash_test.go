package trash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GonxKZ/disksense64-sub000/pkg/filesystem"
)

// withTempHome points filesystem.HomeDirectory at a temporary directory for
// the duration of the test, so the XDG trash implementation never touches
// the real user's ~/.local/share/Trash.
func withTempHome(t *testing.T) {
	t.Helper()
	original := filesystem.HomeDirectory
	filesystem.HomeDirectory = t.TempDir()
	t.Cleanup(func() { filesystem.HomeDirectory = original })
}

func TestMoveListRestoreRoundTrip(t *testing.T) {
	withTempHome(t)

	source := t.TempDir()
	path := filepath.Join(source, "doc.txt")
	content := []byte("trash round trip payload")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write failed: %s", err)
	}

	entry, err := Move(path)
	if err != nil {
		t.Fatalf("Move failed: %s", err)
	}
	if entry.OriginalPath != path {
		t.Fatalf("OriginalPath = %q, want %q", entry.OriginalPath, path)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected original path to no longer exist after Move")
	}

	entries, err := List()
	if err != nil {
		t.Fatalf("List failed: %s", err)
	}
	var found bool
	for _, e := range entries {
		if e.Name == entry.Name && e.OriginalPath == path {
			found = true
		}
	}
	if !found {
		t.Fatalf("List did not report the moved entry: %+v", entries)
	}

	if err := Restore(entry); err != nil {
		t.Fatalf("Restore failed: %s", err)
	}

	restored, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("restored file unreadable: %s", err)
	}
	if string(restored) != string(content) {
		t.Fatal("restored content does not match original")
	}

	afterRestore, err := List()
	if err != nil {
		t.Fatalf("List after restore failed: %s", err)
	}
	for _, e := range afterRestore {
		if e.Name == entry.Name {
			t.Fatal("expected the sidecar to be removed after Restore")
		}
	}
}

func TestMoveCollisionGetsUniqueName(t *testing.T) {
	withTempHome(t)

	sourceA := filepath.Join(t.TempDir(), "same.txt")
	sourceB := filepath.Join(t.TempDir(), "same.txt")
	if err := os.WriteFile(sourceA, []byte("a"), 0o644); err != nil {
		t.Fatalf("write failed: %s", err)
	}
	if err := os.WriteFile(sourceB, []byte("b"), 0o644); err != nil {
		t.Fatalf("write failed: %s", err)
	}

	entryA, err := Move(sourceA)
	if err != nil {
		t.Fatalf("Move A failed: %s", err)
	}
	entryB, err := Move(sourceB)
	if err != nil {
		t.Fatalf("Move B failed: %s", err)
	}

	if entryA.Name == entryB.Name {
		t.Fatal("expected colliding basenames to receive distinct trash names")
	}
}

func TestRestoreRefusesExistingDestination(t *testing.T) {
	withTempHome(t)

	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("write failed: %s", err)
	}
	entry, err := Move(path)
	if err != nil {
		t.Fatalf("Move failed: %s", err)
	}

	// Something else now occupies the original path.
	if err := os.WriteFile(path, []byte("replacement"), 0o644); err != nil {
		t.Fatalf("write replacement failed: %s", err)
	}

	if err := Restore(entry); err == nil {
		t.Fatal("expected Restore to refuse to overwrite an occupied destination")
	}
}
