// Package trash implements the platform trash bridge used by the
// deduplicator's move-to-trash action: the XDG Trash specification on POSIX,
// and the shell recycle bin on Windows. The deduplicator calls Move; List and
// Restore complete the round trip back out of the trash.
package trash

import "time"

// Entry describes one item residing in the platform trash, enough to restore
// it to its original location.
type Entry struct {
	// Name is the trash-relative identifier of the item (the files/ entry
	// name on POSIX; implementation-defined elsewhere).
	Name string
	// OriginalPath is the absolute path the item was trashed from.
	OriginalPath string
	// DeletionDate is when the item was trashed.
	DeletionDate time.Time
}

// Move moves the file at path into the platform trash, preserving enough
// information to restore it later, and returns the Entry describing it.
func Move(path string) (Entry, error) {
	return move(path)
}

// List returns every item currently present in the platform trash.
func List() ([]Entry, error) {
	return list()
}

// Restore moves entry back to its original location.
func Restore(entry Entry) error {
	return restore(entry)
}
