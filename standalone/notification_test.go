package standalone

import (
	"testing"
	"time"
)

func TestNotification_Lifetime(t *testing.T) {
	now := time.Unix(1000, 0)
	n := NewNotification()
	n.now = func() time.Time { return now }

	if n.IsVisible() {
		t.Fatal("new notification should be hidden")
	}

	n.ShowShort("Paused")
	if n.Current() != "Paused" {
		t.Fatalf("expected Paused, got %q", n.Current())
	}

	now = now.Add(999 * time.Millisecond)
	if !n.IsVisible() {
		t.Fatal("should still be visible before the duration elapses")
	}

	now = now.Add(time.Millisecond)
	if n.IsVisible() {
		t.Fatal("should be hidden once the duration elapses")
	}
}

func TestNotification_ReplaceAndClear(t *testing.T) {
	now := time.Unix(1000, 0)
	n := NewNotification()
	n.now = func() time.Time { return now }

	n.ShowDefault("first")
	now = now.Add(2 * time.Second)
	n.ShowShort("second")
	if n.Current() != "second" {
		t.Fatalf("expected replacement, got %q", n.Current())
	}

	n.Clear()
	if n.IsVisible() {
		t.Fatal("Clear should hide the message")
	}
}
