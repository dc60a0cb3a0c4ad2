package disksense

import (
	"os"
)

// DebugEnabled controls whether or not debug-level logging is enabled. It is
// set once at process start from the DISKSENSE_DEBUG environment variable and
// never changed afterward.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("DISKSENSE_DEBUG") == "1"
}
