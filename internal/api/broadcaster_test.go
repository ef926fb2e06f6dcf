package api

import "testing"

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster()

	// Publishing with no subscribers is a no-op.
	b.Publish()

	var order []string
	b.Subscribe(func() { order = append(order, "first") })
	b.Subscribe(func() { order = append(order, "second") })

	b.Publish()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("subscriber order = %v", order)
	}

	b.Publish()
	if len(order) != 4 {
		t.Fatalf("subscribers invoked %d times total, want 4", len(order))
	}
}

func TestSubscribeDuringPublish(t *testing.T) {
	b := NewBroadcaster()

	called := false
	b.Subscribe(func() {
		// Subscribing from inside a notification must not deadlock.
		b.Subscribe(func() { called = true })
	})

	b.Publish()
	if called {
		t.Fatal("late subscriber ran during the publish that added it")
	}

	b.Publish()
	if !called {
		t.Fatal("late subscriber never ran")
	}
}
