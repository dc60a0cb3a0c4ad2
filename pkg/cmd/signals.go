package cmd

import (
	"os"
	"syscall"
)

// TerminationSignals are the signals disksense64 considers to be requesting
// termination. Certain other signals that also request termination (such as
// SIGABRT) are intentionally excluded because the Go runtime handles them
// specially (e.g. dumping a stack trace). Both SIGINT and SIGTERM are
// emulated on Windows (SIGINT on Ctrl-C and Ctrl-Break, SIGTERM on
// CTRL_CLOSE_EVENT, CTRL_LOGOFF_EVENT, and CTRL_SHUTDOWN_EVENT).
var TerminationSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}
