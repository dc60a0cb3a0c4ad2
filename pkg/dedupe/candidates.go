package dedupe

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/GonxKZ/disksense64-sub000/pkg/hashing"
	"github.com/GonxKZ/disksense64-sub000/pkg/model"
)

// filterCandidates drops entries smaller than options.MinFileSize, entries
// under an excluded path prefix, and, when options.Root is set, entries
// outside that prefix.
func filterCandidates(entries []*model.FileEntry, options Options) []*model.FileEntry {
	result := make([]*model.FileEntry, 0, len(entries))
	for _, entry := range entries {
		if options.MinFileSize > 0 && entry.SizeLogical < options.MinFileSize {
			continue
		}
		if options.Root != "" && !hasPathPrefix(entry.FullPath, options.Root) {
			continue
		}
		if isExcluded(entry.FullPath, options.ExcludePaths) {
			continue
		}
		result = append(result, entry)
	}
	return result
}

func isExcluded(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && hasPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// hasPathPrefix reports whether path falls at or under the prefix directory,
// treating prefix as a whole path component rather than a bare string prefix
// (so "/data2" doesn't match a file under "/data").
func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// groupBySize partitions entries by logical size. A group of one can never
// contain a duplicate and is dropped by the caller before further work.
func groupBySize(entries []*model.FileEntry) map[uint64][]*model.FileEntry {
	groups := make(map[uint64][]*model.FileEntry)
	for _, entry := range entries {
		groups[entry.SizeLogical] = append(groups[entry.SizeLogical], entry)
	}
	return groups
}

// groupByHeadTail partitions same-size entries by their head/tail signature,
// computing it for any entry that doesn't already carry one from the scan.
func groupByHeadTail(entries []*model.FileEntry) map[[32]byte][]*model.FileEntry {
	groups := make(map[[32]byte][]*model.FileEntry)
	for _, entry := range entries {
		signature := entry.HeadTail16
		if len(signature) != 32 {
			computed, err := computeHeadTailForPath(entry.FullPath, entry.SizeLogical)
			if err != nil {
				continue
			}
			signature = computed
			entry.HeadTail16 = computed
		}
		var key [32]byte
		copy(key[:], signature)
		groups[key] = append(groups[key], entry)
	}
	return groups
}

func computeHeadTailForPath(path string, size uint64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	const chunk = 16 * 1024
	hasher := hashing.New()

	head := make([]byte, chunk)
	n, err := file.Read(head)
	if err != nil && n == 0 {
		return nil, err
	}
	hasher.Write(head[:n])

	if size > chunk {
		tailStart := int64(size) - chunk
		if tailStart < int64(n) {
			tailStart = int64(n)
		}
		if _, err := file.Seek(tailStart, 0); err == nil {
			tail := make([]byte, chunk)
			tn, _ := file.Read(tail)
			hasher.Write(tail[:tn])
		}
	}

	return hasher.Sum(nil), nil
}

// hashFullContent computes the full-content BLAKE3 digest for the file at
// path.
func hashFullContent(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	hasher := hashing.New()
	buffer := make([]byte, 64*1024)
	for {
		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return hasher.Sum(nil), nil
}

// equalDigest reports whether two digests are byte-identical, used by tests
// to compare against a precomputed expectation.
func equalDigest(a, b []byte) bool {
	return bytes.Equal(a, b)
}
