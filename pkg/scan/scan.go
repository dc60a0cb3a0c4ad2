// Package scan implements the cancellable, depth-first filesystem walk that
// discovers files, extracts their metadata, and (optionally) computes their
// content signatures for the deduplicator.
package scan

import (
	"sync"
	"sync/atomic"

	"github.com/GonxKZ/disksense64-sub000/pkg/logging"
	"github.com/GonxKZ/disksense64-sub000/pkg/model"
)

// EventType classifies a ScanEvent. The scanner only ever emits FileAdded
// today, since it has no prior-scan state to diff against; FileUpdated and
// FileRemoved are carried so that a future incremental scan (diffing against
// the index rather than walking blind) can reuse the same event type without
// a breaking change to sinks.
type EventType int

const (
	FileAdded EventType = iota
	FileUpdated
	FileRemoved
)

// Event is delivered synchronously to the sink for every file a scan
// encounters.
type Event struct {
	Type  EventType
	Entry *model.FileEntry
}

// Options configures a single scan pass.
type Options struct {
	// UseMftReader requests that enumeration bypass directory traversal and
	// read the volume's master file table directly, when the platform
	// supports it and the process holds the privilege it requires. This core
	// has no MFT reader (that belongs to the platform-specific GUI
	// collaborator this package is not responsible for); the walker always
	// falls back to ordinary directory traversal, which matches the
	// documented fallback behavior for a platform or privilege level that
	// doesn't support direct MFT access.
	UseMftReader bool

	// FollowReparsePoints allows the walk to traverse junctions and symbolic
	// links to directories. When false (the default), they are skipped:
	// neither emitted as entries nor descended into, which keeps the walk
	// from cycling on a self-referential link.
	FollowReparsePoints bool

	// ComputeHeadTail computes the 32-byte head+tail signature for every
	// regular file encountered. Enabled by default since it is the input to
	// the deduplicator's first duplicate-candidate filter.
	ComputeHeadTail bool

	// ComputeFullHash computes the full-content BLAKE3 digest for every
	// regular file encountered. This is expensive (a full read of every
	// file) and is normally left to the deduplicator's confirmation phase,
	// which only hashes files that already share a head/tail signature.
	ComputeFullHash bool

	// ExcludePaths lists absolute path prefixes to skip entirely. A
	// directory matching a prefix is neither emitted nor descended into.
	ExcludePaths []string

	// MinFileSize skips files smaller than this size, in bytes. Zero means
	// no minimum.
	MinFileSize uint64
}

// DefaultOptions returns the options a plain `scan <directory>` invocation
// uses.
func DefaultOptions() Options {
	return Options{ComputeHeadTail: true}
}

// Sink receives scan events. It is called synchronously from the scanning
// goroutine, so a slow sink directly throttles the walk.
type Sink func(Event)

// Scanner performs one cancellable filesystem walk at a time. A Scanner is
// safe to reuse for sequential scans but does not support concurrent calls to
// Scan.
type Scanner struct {
	logger   *logging.Logger
	scanning int32

	mutex     sync.Mutex
	cancelled chan struct{}
}

// New creates a Scanner that logs through logger.
func New(logger *logging.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Cancel requests that any in-progress scan stop at its next opportunity
// (the next directory listing or the next buffered read during hashing). It
// has no effect if no scan is running, and a cancelled Scanner can be reused
// for a later scan.
func (s *Scanner) Cancel() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.cancelled != nil {
		select {
		case <-s.cancelled:
		default:
			close(s.cancelled)
		}
	}
}

// IsScanning reports whether a scan is currently in progress.
func (s *Scanner) IsScanning() bool {
	return atomic.LoadInt32(&s.scanning) != 0
}

func (s *Scanner) isCancelled() bool {
	s.mutex.Lock()
	ch := s.cancelled
	s.mutex.Unlock()
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Scan walks root depth-first, emitting a FileAdded event through sink for
// every regular file it encounters. It returns ErrCancelled if the walk was
// stopped via Cancel before completing.
func (s *Scanner) Scan(root string, options Options, sink Sink) error {
	s.mutex.Lock()
	s.cancelled = make(chan struct{})
	cancelled := s.cancelled
	s.mutex.Unlock()

	atomic.StoreInt32(&s.scanning, 1)
	defer atomic.StoreInt32(&s.scanning, 0)

	w := &walker{scanner: s, options: options, sink: sink, cancelled: cancelled}
	return w.walkRoot(root)
}
