package scan

import (
	"os"
	"strings"
)

// isExcludedPath reports whether path matches one of the configured exclude
// prefixes. A directory match excludes the whole subtree, since the walker
// never descends into an excluded directory in the first place.
func isExcludedPath(path string, options Options) bool {
	for _, prefix := range options.ExcludePaths {
		if prefix == "" {
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
