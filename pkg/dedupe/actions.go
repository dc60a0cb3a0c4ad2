package dedupe

import (
	"os"

	"github.com/GonxKZ/disksense64-sub000/pkg/model"
	"github.com/GonxKZ/disksense64-sub000/pkg/safety"
	"github.com/GonxKZ/disksense64-sub000/pkg/trash"
)

// Deduplicate acts on groups according to options.Action. ActionSimulate
// never touches the filesystem and is always permitted. Every other action
// requires safety.DeletionAllowed to report true; when it doesn't, the
// effective action is silently downgraded to ActionSimulate for the whole
// pass so the caller still gets an accurate potential-savings report instead
// of an error — the gate is a policy, not a failure.
func (d *Deduplicator) Deduplicate(groups []*model.DuplicateGroup, options Options) (Stats, error) {
	effective := options.Action
	if effective.destructive() && !safety.DeletionAllowed() {
		effective = ActionSimulate
	}

	for _, group := range groups {
		if len(group.Members) < 2 {
			continue
		}
		keep := group.Members[0]
		redundant := group.Members[1:]

		switch effective {
		case ActionSimulate:
			d.stats.ActualSavings += uint64(len(redundant)) * keep.SizeLogical
		case ActionHardlink:
			saved, created := d.hardlinkRedundant(keep, redundant)
			d.stats.ActualSavings += saved
			d.stats.HardlinksCreated += created
		case ActionTrash:
			d.stats.ActualSavings += d.trashRedundant(redundant)
		case ActionUnlink:
			d.stats.ActualSavings += d.unlinkRedundant(redundant)
		}
	}

	return d.stats, nil
}

// hardlinkRedundant replaces every redundant entry with a hardlink to keep,
// but only for entries on the same volume as keep — a hardlink cannot cross
// a filesystem boundary. A failure on one member is logged and counted as
// unchanged; it never stops the rest of the group from being processed.
func (d *Deduplicator) hardlinkRedundant(keep *model.FileEntry, redundant []*model.FileEntry) (savedBytes uint64, created uint64) {
	for _, entry := range redundant {
		if entry.VolumeId != keep.VolumeId {
			d.logger.Debugf("skipping hardlink for %s: different volume than %s", entry.FullPath, keep.FullPath)
			continue
		}
		temporary := entry.FullPath + ".disksense-hardlink-tmp"
		if linkErr := os.Link(keep.FullPath, temporary); linkErr != nil {
			d.logger.Warnf("link %s: %s", entry.FullPath, linkErr)
			continue
		}
		if renameErr := os.Rename(temporary, entry.FullPath); renameErr != nil {
			os.Remove(temporary)
			d.logger.Warnf("replace %s with hardlink: %s", entry.FullPath, renameErr)
			continue
		}
		savedBytes += entry.SizeLogical
		created++
	}
	return savedBytes, created
}

// trashRedundant moves every redundant entry to the platform trash. A
// failure on one member is logged and leaves that file in place; it never
// stops the rest of the group from being processed.
func (d *Deduplicator) trashRedundant(redundant []*model.FileEntry) (savedBytes uint64) {
	for _, entry := range redundant {
		if _, moveErr := trash.Move(entry.FullPath); moveErr != nil {
			d.logger.Warnf("trash %s: %s", entry.FullPath, moveErr)
			continue
		}
		savedBytes += entry.SizeLogical
	}
	return savedBytes
}

// unlinkRedundant permanently deletes every redundant entry. A failure on
// one member is logged and leaves that file in place; it never stops the
// rest of the group from being processed.
func (d *Deduplicator) unlinkRedundant(redundant []*model.FileEntry) (savedBytes uint64) {
	for _, entry := range redundant {
		if removeErr := os.Remove(entry.FullPath); removeErr != nil {
			d.logger.Warnf("remove %s: %s", entry.FullPath, removeErr)
			continue
		}
		savedBytes += entry.SizeLogical
	}
	return savedBytes
}
