// Package dedupe implements the duplicate-detection cascade (group by size,
// then by head/tail signature, then by full content hash) and the gated
// destructive actions (hardlink, move-to-trash, unlink) that act on
// confirmed duplicate groups.
package dedupe

import (
	"github.com/GonxKZ/disksense64-sub000/pkg/lsm"
	"github.com/GonxKZ/disksense64-sub000/pkg/logging"
	"github.com/GonxKZ/disksense64-sub000/pkg/model"
)

// Action selects what deduplicate does with the non-kept members of each
// duplicate group.
type Action int

const (
	// ActionSimulate reports what would happen without touching the
	// filesystem. It is always permitted, regardless of safety mode.
	ActionSimulate Action = iota
	// ActionHardlink replaces every non-kept member with a hardlink to the
	// kept member, reclaiming space only when both files are on the same
	// volume.
	ActionHardlink
	// ActionTrash moves every non-kept member to the platform trash/recycle
	// bin.
	ActionTrash
	// ActionUnlink deletes every non-kept member outright.
	ActionUnlink
)

// destructive reports whether an action mutates the filesystem and is
// therefore subject to the safety gate.
func (a Action) destructive() bool {
	return a != ActionSimulate
}

// Options configures a duplicate scan and the subsequent action.
type Options struct {
	Action Action

	// MinFileSize excludes files smaller than this size from consideration.
	// Small files rarely account for meaningful reclaimable space and cost a
	// disproportionate share of full-hash verification time.
	MinFileSize uint64

	// ComputeFullHash forces full-content verification even for candidates
	// whose sizes and head/tail signatures already agree. When false, a
	// shared head/tail signature between two files larger than twice the
	// signature window is treated as confirmation, trading a small
	// false-positive risk for speed.
	ComputeFullHash bool

	// ExcludePaths lists absolute path prefixes excluded from consideration.
	ExcludePaths []string

	// Root, when non-empty, restricts consideration to entries whose path
	// falls under this absolute prefix. The index may hold entries from
	// scans of several different directories; Root lets one dedupe pass
	// target just one of them without re-scanning.
	Root string
}

// Stats summarizes the outcome of a findDuplicates/deduplicate pass.
type Stats struct {
	TotalFiles       uint64
	DuplicateGroups  uint64
	DuplicateFiles   uint64
	PotentialSavings uint64
	ActualSavings    uint64
	HardlinksCreated uint64
}

// Deduplicator runs the duplicate-detection cascade over the entries stored
// in an Index.
type Deduplicator struct {
	index  *lsm.Index
	logger *logging.Logger
	stats  Stats
}

// New creates a Deduplicator over index.
func New(index *lsm.Index, logger *logging.Logger) *Deduplicator {
	return &Deduplicator{index: index, logger: logger}
}

// Stats returns the statistics accumulated by the most recent deduplicate
// call.
func (d *Deduplicator) Stats() Stats {
	return d.stats
}

// FindDuplicates runs the cascade — group by size, filter by head/tail
// signature, and confirm by full content hash when options.ComputeFullHash
// is set or a head/tail group has more than fullHashConfirmThreshold members
// — and returns the resulting duplicate groups. It does not modify the
// filesystem.
func (d *Deduplicator) FindDuplicates(options Options) ([]*model.DuplicateGroup, error) {
	entries, err := d.index.All()
	if err != nil {
		return nil, err
	}

	candidates := filterCandidates(entries, options)
	bySize := groupBySize(candidates)

	var signatureCandidates []*model.FileEntry
	for _, group := range bySize {
		if len(group) < 2 {
			continue
		}
		signatureCandidates = append(signatureCandidates, group...)
	}

	byHeadTail := groupByHeadTail(signatureCandidates)

	// fullHashConfirmThreshold is the group size past which the cascade
	// always pays for a full-content hash even if the caller didn't ask for
	// it: a large group sharing a head/tail signature is disproportionately
	// likely to contain a signature collision worth ruling out.
	const fullHashConfirmThreshold = 10

	var groups []*model.DuplicateGroup
	for _, group := range byHeadTail {
		if len(group) < 2 {
			continue
		}
		if !options.ComputeFullHash && len(group) <= fullHashConfirmThreshold {
			groups = append(groups, &model.DuplicateGroup{Members: group})
			continue
		}
		confirmed, err := d.confirmGroup(group, options)
		if err != nil {
			return nil, err
		}
		groups = append(groups, confirmed...)
	}

	d.stats = Stats{TotalFiles: uint64(len(entries))}
	for _, g := range groups {
		d.stats.DuplicateGroups++
		d.stats.DuplicateFiles += uint64(len(g.Members))
		d.stats.PotentialSavings += g.PotentialSavings()
	}

	return groups, nil
}

// confirmGroup splits a head/tail-matching group into confirmed duplicate
// subgroups by full content digest. When a member already carries a digest
// (computed during scanning) it is reused; otherwise it is computed here.
func (d *Deduplicator) confirmGroup(group []*model.FileEntry, options Options) ([]*model.DuplicateGroup, error) {
	byDigest := make(map[[32]byte][]*model.FileEntry)

	for _, entry := range group {
		digest := entry.Digest
		if len(digest) != 32 {
			computed, err := hashFullContent(entry.FullPath)
			if err != nil {
				d.logger.Warnf("unable to hash %s for confirmation: %s", entry.FullPath, err)
				continue
			}
			digest = computed
			entry.Digest = computed
		}
		var key [32]byte
		copy(key[:], digest)
		byDigest[key] = append(byDigest[key], entry)
	}

	var groups []*model.DuplicateGroup
	for _, members := range byDigest {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, &model.DuplicateGroup{Members: members})
	}
	return groups, nil
}
