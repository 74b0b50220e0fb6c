package state

import (
	"testing"
	"time"
)

func TestMemoryManagerStateLifecycle(t *testing.T) {
	mgr := NewMemoryManager(time.Minute)

	if mgr.InProgress(1) {
		t.Fatal("fresh user should not be in progress")
	}
	if got := mgr.GetState(1); got != StateIdle {
		t.Fatalf("GetState = %q, want idle", got)
	}

	mgr.SetState(1, State("collect_name"))
	if !mgr.InProgress(1) {
		t.Fatal("expected user in progress after SetState")
	}
	mgr.SetTemp(1, "name", "Widget")
	if v, ok := mgr.GetTempString(1, "name"); !ok || v != "Widget" {
		t.Fatalf("GetTempString = %q, %v", v, ok)
	}

	mgr.ClearState(1)
	if mgr.InProgress(1) {
		t.Fatal("expected idle after ClearState")
	}
	// Temp data survives ClearState but not Clear.
	if _, ok := mgr.GetTempString(1, "name"); !ok {
		t.Fatal("temp data should survive ClearState")
	}
	mgr.Clear(1)
	if _, ok := mgr.GetTempString(1, "name"); ok {
		t.Fatal("temp data should be gone after Clear")
	}
}

func TestMemoryManagerTTLExpiry(t *testing.T) {
	mm := NewMemoryManager(10 * time.Minute).(*memoryManager)
	current := time.Unix(1_700_000_000, 0)
	mm.now = func() time.Time { return current }

	mm.SetState(7, State("collect_name"))
	mm.SetTemp(7, "name", "Widget")

	current = current.Add(5 * time.Minute)
	if !mm.InProgress(7) {
		t.Fatal("session should still be live before TTL")
	}

	// Touching refreshes the deadline.
	mm.SetTemp(7, "description", "A fine widget")
	current = current.Add(6 * time.Minute)
	if !mm.InProgress(7) {
		t.Fatal("touch should have refreshed the session deadline")
	}

	current = current.Add(11 * time.Minute)
	if mm.InProgress(7) {
		t.Fatal("session should have expired")
	}
	if _, ok := mm.GetTempString(7, "name"); ok {
		t.Fatal("draft data should be dropped with the expired session")
	}
	if got := mm.GetState(7); got != StateIdle {
		t.Fatalf("GetState after expiry = %q, want idle", got)
	}
}

func TestMemoryManagerIsolatesUsers(t *testing.T) {
	mgr := NewMemoryManager(time.Minute)
	mgr.SetState(1, State("collect_name"))
	mgr.SetTemp(1, "name", "Widget")

	if mgr.InProgress(2) {
		t.Fatal("second user must not inherit state")
	}
	if _, ok := mgr.GetTempString(2, "name"); ok {
		t.Fatal("second user must not see first user's draft")
	}
}
