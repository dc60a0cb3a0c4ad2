package safety

import (
	"os"
	"testing"
)

// DeletionAllowed is captured once per process, by design (no in-process
// setter, matching the "evaluated once at process start" contract). That
// makes it meaningful to exercise only one branch in a given test binary;
// this sets DISKSENSE_ALLOW_DELETE before the first call so the case that
// actually matters in production — an operator explicitly opting in before
// launch — is the one under test.
func TestDeletionAllowedReflectsEnvironmentAtFirstCall(t *testing.T) {
	os.Setenv("DISKSENSE_ALLOW_DELETE", "1")
	defer os.Unsetenv("DISKSENSE_ALLOW_DELETE")

	if !DeletionAllowed() {
		t.Fatal("expected deletion to be allowed once DISKSENSE_ALLOW_DELETE=1 is set before first call")
	}

	// The decision is frozen: changing the environment afterward must not
	// change the answer, since there is no in-process setter.
	os.Unsetenv("DISKSENSE_ALLOW_DELETE")
	if !DeletionAllowed() {
		t.Fatal("DeletionAllowed must not re-read the environment on subsequent calls")
	}
}
