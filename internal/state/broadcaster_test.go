package state

import (
	"testing"
)

func TestNewBroadcaster(t *testing.T) {
	b := NewBroadcaster[int]()
	if b == nil {
		t.Fatal("NewBroadcaster returned nil")
	}
	if b.ListenerCount() != 0 {
		t.Errorf("Expected 0 listeners, got %d", b.ListenerCount())
	}
}

func TestBroadcaster_AddListener(t *testing.T) {
	b := NewBroadcaster[int]()
	defer b.Close()

	listener := func(old, new int) {}

	if err := b.AddListener("test1", listener); err != nil {
		t.Fatalf("Failed to add listener: %v", err)
	}
	if !b.HasListener("test1") {
		t.Error("Expected listener 'test1' to exist")
	}

	if err := b.AddListener("test1", listener); err == nil {
		t.Fatal("Expected error when adding listener with duplicate name, but got nil")
	}
	if err := b.AddListener("nil", nil); err == nil {
		t.Fatal("Expected error when adding nil listener")
	}
}

func TestBroadcaster_RemoveListener(t *testing.T) {
	b := NewBroadcaster[int]()
	if err := b.AddListener("test1", func(old, new int) {}); err != nil {
		t.Fatalf("AddListener failed: %v", err)
	}

	b.RemoveListener("test1")
	if b.HasListener("test1") {
		t.Error("Expected listener 'test1' to be removed")
	}

	// Removing a non-existent listener should not panic
	b.RemoveListener("nonexistent")
}

func TestBroadcaster_BroadcastInNameOrder(t *testing.T) {
	b := NewBroadcaster[string]()

	var calls []string
	for _, name := range []string{"c", "a", "b"} {
		name := name
		if err := b.AddListener(name, func(old, new string) {
			calls = append(calls, name+":"+old+"->"+new)
		}); err != nil {
			t.Fatalf("AddListener failed: %v", err)
		}
	}

	b.Broadcast("x", "y")

	want := []string{"a:x->y", "b:x->y", "c:x->y"}
	if len(calls) != len(want) {
		t.Fatalf("got %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestBroadcaster_ListenerMayUnsubscribeItself(t *testing.T) {
	b := NewBroadcaster[int]()
	count := 0
	_ = b.AddListener("once", func(old, new int) {
		count++
		b.RemoveListener("once")
	})

	b.Broadcast(0, 1)
	b.Broadcast(1, 2)

	if count != 1 {
		t.Errorf("listener called %d times, want 1", count)
	}
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster[int]()
	_ = b.AddListener("a", func(old, new int) {})
	_ = b.AddListener("b", func(old, new int) {})

	b.Close()

	if b.ListenerCount() != 0 {
		t.Errorf("Expected 0 listeners after Close, got %d", b.ListenerCount())
	}
}
