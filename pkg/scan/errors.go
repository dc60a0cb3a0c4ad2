package scan

import "errors"

// ErrCancelled is returned by Scan when a scan was stopped via Cancel before
// it finished walking the tree.
var ErrCancelled = errors.New("scan cancelled")
