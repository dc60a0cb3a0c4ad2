// Package safety implements the process-wide safety gate that governs
// whether the deduplicator is allowed to perform destructive filesystem
// actions.
package safety

import (
	"os"
	"sync"
)

// allowDeleteEnvironmentVariable is the environment variable that unlocks
// destructive deduplication actions when set to exactly "1".
const allowDeleteEnvironmentVariable = "DISKSENSE_ALLOW_DELETE"

var (
	deletionAllowed     bool
	deletionAllowedOnce sync.Once
)

// DeletionAllowed reports whether destructive actions (unlink, move-to-trash,
// hardlink replacement) are currently permitted. The answer is computed once,
// from the environment, the first time it's queried, and never changes for
// the lifetime of the process — there is intentionally no setter. This keeps
// the safety gate immune to any in-process state the deduplicator might
// otherwise be tricked into mutating.
func DeletionAllowed() bool {
	deletionAllowedOnce.Do(func() {
		deletionAllowed = os.Getenv(allowDeleteEnvironmentVariable) == "1"
	})
	return deletionAllowed
}
