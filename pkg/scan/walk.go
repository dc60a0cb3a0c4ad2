package scan

import (
	"path/filepath"

	"github.com/GonxKZ/disksense64-sub000/pkg/filesystem"
	"github.com/GonxKZ/disksense64-sub000/pkg/model"
)

// walker holds the state threaded through one recursive Scan call.
type walker struct {
	scanner   *Scanner
	options   Options
	sink      Sink
	cancelled <-chan struct{}

	// visited records the (DeviceID, FileID) of every directory reached by
	// following a reparse point, so that a symlink cycle (or a symlink back
	// to an ancestor) can't send the walk into an infinite descent. Ordinary
	// subdirectories never need an entry here since the tree they come from
	// is already acyclic.
	visited map[[2]uint64]struct{}
}

// walkRoot opens root and begins the depth-first traversal.
func (w *walker) walkRoot(root string) error {
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	handle, metadata, err := filesystem.Open(absoluteRoot, false)
	if err != nil {
		return err
	}
	defer handle.Close()

	if metadata.Mode&filesystem.ModeTypeMask != filesystem.ModeTypeDirectory {
		return filesystem.ErrUnsupportedRootType
	}

	directory := handle.(*filesystem.Directory)
	w.visited = map[[2]uint64]struct{}{{metadata.DeviceID, metadata.FileID}: {}}
	return w.walkDirectory(directory, absoluteRoot)
}

// walkDirectory lists one directory's contents and recurses into every
// subdirectory, emitting a FileAdded event for every regular file. Any
// single entry's failure (permission denied, vanished between listing and
// open, unsupported type) is logged and skipped; it never aborts the rest of
// the walk.
func (w *walker) walkDirectory(directory *filesystem.Directory, path string) error {
	if w.scanner.isCancelled() {
		return ErrCancelled
	}
	if isExcludedPath(path, w.options) {
		return nil
	}

	entries, err := directory.ReadContents()
	if err != nil {
		w.scanner.logger.Warnf("unable to list %s: %s", path, err)
		return nil
	}

	for _, entry := range entries {
		if w.scanner.isCancelled() {
			return ErrCancelled
		}

		childPath := filepath.Join(path, entry.Name)
		if isExcludedPath(childPath, w.options) {
			continue
		}

		switch entry.Mode & filesystem.ModeTypeMask {
		case filesystem.ModeTypeDirectory:
			if err := w.walkSubdirectory(directory, entry.Name, childPath); err != nil {
				if err == ErrCancelled {
					return err
				}
				w.scanner.logger.Warnf("unable to descend into %s: %s", childPath, err)
			}
		case filesystem.ModeTypeFile:
			if err := w.processFile(directory, entry, childPath); err != nil {
				w.scanner.logger.Warnf("unable to process %s: %s", childPath, err)
			}
		case filesystem.ModeTypeSymbolicLink:
			if w.options.FollowReparsePoints {
				if err := w.walkReparsePoint(childPath); err != nil {
					if err == ErrCancelled {
						return err
					}
					w.scanner.logger.Warnf("unable to follow reparse point %s: %s", childPath, err)
				}
			}
		default:
			// Device nodes, sockets, and similar are not scanned for
			// content but are otherwise ignored rather than treated as an
			// error.
		}
	}

	return nil
}

func (w *walker) walkSubdirectory(parent *filesystem.Directory, name string, path string) error {
	child, err := parent.OpenDirectory(name)
	if err != nil {
		return err
	}
	defer child.Close()
	return w.walkDirectory(child, path)
}

// walkReparsePoint resolves a symbolic link whose FollowReparsePoints has
// been requested and descends into it when it points at a directory.
// Unlike walkSubdirectory, this path can reintroduce an already-visited
// directory (a link back to an ancestor, or two links converging on the
// same target), so every descent is gated on w.visited.
func (w *walker) walkReparsePoint(path string) error {
	handle, metadata, err := filesystem.Open(path, true)
	if err != nil {
		return err
	}
	defer handle.Close()

	if metadata.Mode&filesystem.ModeTypeMask != filesystem.ModeTypeDirectory {
		return nil
	}

	key := [2]uint64{metadata.DeviceID, metadata.FileID}
	if _, seen := w.visited[key]; seen {
		return nil
	}
	w.visited[key] = struct{}{}

	directory, ok := handle.(*filesystem.Directory)
	if !ok {
		return nil
	}
	return w.walkDirectory(directory, path)
}

// processFile builds a FileEntry from a file's metadata, optionally computes
// its content signatures, and emits it to the sink.
func (w *walker) processFile(directory *filesystem.Directory, metadata *filesystem.Metadata, path string) error {
	if w.options.MinFileSize > 0 && metadata.Size < w.options.MinFileSize {
		return nil
	}

	entry := entryFromMetadata(metadata, path)

	// A signature failure (open race, short read, vanished file) abandons
	// only the signature: the event still carries whatever metadata was
	// already gathered, since partial state beats a stalled traversal.
	if w.options.ComputeHeadTail || w.options.ComputeFullHash {
		file, err := directory.OpenFile(metadata.Name)
		if err != nil {
			w.scanner.logger.Debugf("no signature for %s: %s", path, err)
		} else {
			if w.options.ComputeHeadTail {
				if signature, err := computeHeadTailSignature(file, metadata.Size); err != nil {
					w.scanner.logger.Debugf("head/tail signature failed for %s: %s", path, err)
				} else {
					entry.HeadTail16 = signature
				}
			}

			if w.options.ComputeFullHash {
				if digest, err := computeFullHash(file, w.cancelled); err != nil {
					w.scanner.logger.Debugf("full hash failed for %s: %s", path, err)
				} else {
					entry.Digest = digest
				}
			}

			file.Close()
		}
	}

	w.sink(Event{Type: FileAdded, Entry: entry})
	return nil
}

// entryFromMetadata converts platform metadata plus a resolved absolute path
// into a model.FileEntry. VolumeId uses the platform-native device identifier
// when the platform reports one; on a filesystem that reports a zero device
// ID (observed on some network-mounted POSIX filesystems), it falls back to
// a hash of the file's parent directory. That fallback is stable across scans
// but is not the volume's mount point, so files in different directories of
// such a volume get different VolumeIds. FileId uses the platform-native
// identifier, falling back to a hash of the path when the platform reports
// zero; PathId is always a hash of the path, since path is not a stable
// per-platform identifier.
func entryFromMetadata(metadata *filesystem.Metadata, path string) *model.FileEntry {
	sizeOnDisk := metadata.SizeOnDisk
	if sizeOnDisk == 0 && metadata.Size > 0 {
		sizeOnDisk = model.ClusterRoundedSize(metadata.Size)
	}

	volumeId := model.VolumeId(metadata.DeviceID)
	if volumeId == 0 {
		volumeId = model.HashVolumeMountPoint(filepath.Dir(path))
	}

	fileId := model.FileId(metadata.FileID)
	if fileId == 0 {
		fileId = model.FileId(model.HashPath(path))
	}

	return &model.FileEntry{
		VolumeId:    volumeId,
		FileId:      fileId,
		PathId:      model.HashPath(path),
		FullPath:    path,
		SizeLogical: metadata.Size,
		SizeOnDisk:  sizeOnDisk,
		Attributes:  metadata.Attributes,
		Timestamps:  model.TimestampsFromMetadata(metadata),
	}
}
