//go:build !windows

package trash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GonxKZ/disksense64-sub000/pkg/filesystem"
)

// xdgTrashDirectories returns the files/ and info/ subdirectories of the XDG
// home trash (~/.local/share/Trash), creating them if necessary. Only the
// home trash is implemented; a full XDG implementation would also use a
// per-volume $topdir/.Trash-$uid when the source file lives on a different
// filesystem than $HOME, so that moving to trash is a rename rather than a
// copy. That refinement is left for a future iteration since it only affects
// efficiency, not correctness, on a single-volume system.
func xdgTrashDirectories() (filesDir string, infoDir string, err error) {
	home := filesystem.HomeDirectory
	if home == "" {
		return "", "", fmt.Errorf("cannot determine home directory for trash location")
	}
	base := filepath.Join(home, ".local", "share", "Trash")
	filesDir = filepath.Join(base, "files")
	infoDir = filepath.Join(base, "info")
	if err := os.MkdirAll(filesDir, 0o700); err != nil {
		return "", "", fmt.Errorf("create trash files directory: %w", err)
	}
	if err := os.MkdirAll(infoDir, 0o700); err != nil {
		return "", "", fmt.Errorf("create trash info directory: %w", err)
	}
	return filesDir, infoDir, nil
}

// uniqueTrashName appends a numeric suffix to name until it no longer
// collides with an existing entry in dir, matching the XDG spec's
// collision-avoidance rule.
func uniqueTrashName(dir, name string) string {
	candidate := name
	extension := filepath.Ext(name)
	stem := strings.TrimSuffix(name, extension)
	for i := 1; ; i++ {
		if _, err := os.Lstat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, i, extension)
	}
}

// move implements the XDG Trash specification: the file is renamed into
// files/, and an adjacent .trashinfo sidecar records its original path and
// deletion time so it can be restored later.
func move(path string) (Entry, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, fmt.Errorf("resolve absolute path: %w", err)
	}

	filesDir, infoDir, err := xdgTrashDirectories()
	if err != nil {
		return Entry{}, err
	}

	name := uniqueTrashName(filesDir, filepath.Base(absolute))
	destination := filepath.Join(filesDir, name)
	infoPath := filepath.Join(infoDir, name+".trashinfo")
	deletionDate := time.Now()

	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n", escapeTrashPath(absolute), deletionDate.Format("2006-01-02T15:04:05"))
	if err := os.WriteFile(infoPath, []byte(info), 0o600); err != nil {
		return Entry{}, fmt.Errorf("write trashinfo sidecar: %w", err)
	}

	if err := os.Rename(absolute, destination); err != nil {
		os.Remove(infoPath)
		return Entry{}, fmt.Errorf("move into trash: %w", err)
	}

	return Entry{Name: name, OriginalPath: absolute, DeletionDate: deletionDate}, nil
}

// list reads every .trashinfo sidecar in the home trash and returns the
// entries it describes. A sidecar whose companion file in files/ has gone
// missing (e.g. removed out-of-band) is silently skipped.
func list() ([]Entry, error) {
	filesDir, infoDir, err := xdgTrashDirectories()
	if err != nil {
		return nil, err
	}

	sidecars, err := os.ReadDir(infoDir)
	if err != nil {
		return nil, fmt.Errorf("read trash info directory: %w", err)
	}

	var entries []Entry
	for _, sidecar := range sidecars {
		if sidecar.IsDir() || !strings.HasSuffix(sidecar.Name(), ".trashinfo") {
			continue
		}
		name := strings.TrimSuffix(sidecar.Name(), ".trashinfo")
		if _, err := os.Lstat(filepath.Join(filesDir, name)); err != nil {
			continue
		}
		entry, err := parseTrashInfo(filepath.Join(infoDir, sidecar.Name()), name)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseTrashInfo reads the Path and DeletionDate fields out of a .trashinfo
// sidecar file.
func parseTrashInfo(path, name string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Name: name}
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "Path="):
			entry.OriginalPath = unescapeTrashPath(strings.TrimPrefix(line, "Path="))
		case strings.HasPrefix(line, "DeletionDate="):
			if t, err := time.ParseInLocation("2006-01-02T15:04:05", strings.TrimPrefix(line, "DeletionDate="), time.Local); err == nil {
				entry.DeletionDate = t
			}
		}
	}
	if entry.OriginalPath == "" {
		return Entry{}, fmt.Errorf("trashinfo %s has no Path field", path)
	}
	return entry, nil
}

// restore moves entry's file out of files/ back to its original path and
// removes the sidecar. It fails if something already occupies the original
// path, rather than silently overwriting it.
func restore(entry Entry) error {
	filesDir, infoDir, err := xdgTrashDirectories()
	if err != nil {
		return err
	}

	source := filepath.Join(filesDir, entry.Name)
	if _, err := os.Stat(entry.OriginalPath); err == nil {
		return fmt.Errorf("restore destination %s already exists", entry.OriginalPath)
	}

	if err := os.MkdirAll(filepath.Dir(entry.OriginalPath), 0o755); err != nil {
		return fmt.Errorf("recreate original directory: %w", err)
	}
	if err := os.Rename(source, entry.OriginalPath); err != nil {
		return fmt.Errorf("restore from trash: %w", err)
	}

	os.Remove(filepath.Join(infoDir, entry.Name+".trashinfo"))
	return nil
}

// escapeTrashPath percent-encodes the bytes the XDG spec requires escaped in
// a trashinfo Path value: anything outside of unreserved URI characters.
func escapeTrashPath(path string) string {
	const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.~/"
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		if strings.IndexByte(unreserved, c) != -1 {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// unescapeTrashPath decodes a percent-encoded trashinfo Path value. Malformed
// escape sequences are left as-is rather than rejected, since a Path field is
// never used for anything more sensitive than a restore-destination string.
func unescapeTrashPath(path string) string {
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		if path[i] == '%' && i+2 < len(path) {
			var value int
			if _, err := fmt.Sscanf(path[i+1:i+3], "%02X", &value); err == nil {
				b.WriteByte(byte(value))
				i += 2
				continue
			}
		}
		b.WriteByte(path[i])
	}
	return b.String()
}
