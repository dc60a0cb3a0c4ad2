package timeutil

import (
	"testing"
	"time"
)

func TestStopAndDrainTimerBeforeFire(t *testing.T) {
	timer := time.NewTimer(time.Hour)
	StopAndDrainTimer(timer)
	select {
	case <-timer.C:
		t.Fatal("unfired timer's channel should not have a pending value")
	default:
	}
}

func TestStopAndDrainTimerAfterFire(t *testing.T) {
	timer := time.NewTimer(time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	// The timer has already fired and its channel holds an unread value;
	// StopAndDrainTimer must drain it rather than leaving it for a later
	// Reset to observe as a stale tick.
	StopAndDrainTimer(timer)
	timer.Reset(time.Hour)
	select {
	case <-timer.C:
		t.Fatal("expected no stale tick to surface after drain and reset")
	default:
	}
}
