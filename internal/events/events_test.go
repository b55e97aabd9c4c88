package events

import (
	"testing"
	"time"
)

func TestListenersUnsubscribe(t *testing.T) {
	var l Listeners[int]
	var a, b []int

	unsubA := l.Subscribe(func(v int) { a = append(a, v) })
	l.Subscribe(func(v int) { b = append(b, v) })

	l.Notify(1)
	unsubA()
	unsubA()
	l.Notify(2)

	if len(a) != 1 || a[0] != 1 {
		t.Errorf("expected first listener to see only 1, got %v", a)
	}
	if len(b) != 2 {
		t.Errorf("expected second listener to see both values, got %v", b)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 listener left, got %d", l.Len())
	}
}

func TestListenersSelfUnsubscribeDuringNotify(t *testing.T) {
	var l Listeners[string]
	calls := 0
	var unsub func()
	unsub = l.Subscribe(func(string) {
		calls++
		unsub()
	})

	l.Notify("x")
	l.Notify("y")
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestBroadcasterPublish(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeWindowOpen, Path: "/home/drake/About.md"})

	select {
	case got := <-ch:
		if got.Type != TypeWindowOpen || got.Path != "/home/drake/About.md" {
			t.Errorf("unexpected event %+v", got)
		}
		if got.Timestamp == 0 {
			t.Error("expected non-zero timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBroadcasterDropsForSlowConsumer(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 100; i++ {
		b.Publish(Event{Type: TypeConsole})
	}
	if len(ch) != cap(ch) {
		t.Errorf("expected buffer full at %d, got %d", cap(ch), len(ch))
	}
}

func TestBroadcasterUnsubscribeTwice(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	b.Unsubscribe(ch)
	if b.Count() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.Count())
	}
}
