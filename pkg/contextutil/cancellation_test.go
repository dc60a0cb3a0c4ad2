package contextutil

import (
	"context"
	"testing"
)

func TestIsCancelledFalseForLiveContext(t *testing.T) {
	if IsCancelled(context.Background()) {
		t.Fatal("expected a live context to report not cancelled")
	}
}

func TestIsCancelledTrueAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if !IsCancelled(ctx) {
		t.Fatal("expected a cancelled context to report cancelled")
	}
}
