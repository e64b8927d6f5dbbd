package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
)

func TestMockSubscriber_SendAndClose(t *testing.T) {
	sub := NewMockSubscriber("sub-1")

	if err := sub.Send(events.NewEvent(events.EventTypeHeartbeat, nil)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if sub.EventCount() != 1 {
		t.Fatalf("EventCount() = %d, want 1", sub.EventCount())
	}

	sub.Close()
	sub.Close()
	select {
	case <-sub.Done():
	default:
		t.Fatal("Done() not closed after Close()")
	}
}

func TestMockSubscriber_SendError(t *testing.T) {
	sub := NewMockSubscriber("sub-1")
	want := errors.New("send failed")
	sub.SetSendError(want)

	if err := sub.Send(events.NewEvent(events.EventTypeHeartbeat, nil)); err != want {
		t.Fatalf("Send() error = %v, want %v", err, want)
	}
	if sub.EventCount() != 0 {
		t.Fatalf("EventCount() = %d, want 0", sub.EventCount())
	}
}

func TestMockEventHub_EventsOfType(t *testing.T) {
	hub := NewMockEventHub()
	hub.Publish(events.NewEvent(events.EventTypeHeartbeat, nil))
	hub.Publish(events.NewCacheDeletedEvent("/c.json"))
	hub.Publish(events.NewEvent(events.EventTypeHeartbeat, nil))

	if got := len(hub.EventsOfType(events.EventTypeHeartbeat)); got != 2 {
		t.Fatalf("heartbeats = %d, want 2", got)
	}
	if got := len(hub.PublishedEvents()); got != 3 {
		t.Fatalf("PublishedEvents() = %d, want 3", got)
	}

	sub := NewMockSubscriber("a")
	hub.Subscribe(sub)
	hub.Unsubscribe("missing")
	hub.Unsubscribe("a")
	if hub.SubscriberCount() != 0 {
		t.Fatalf("SubscriberCount() = %d, want 0", hub.SubscriberCount())
	}
}

func TestFakeExpander(t *testing.T) {
	exp := NewFakeExpander(map[string][]string{"a": {"/x"}})

	if got := exp.Expand(context.Background(), "a"); len(got) != 1 || got[0] != "/x" {
		t.Fatalf("Expand(a) = %v", got)
	}
	if got := exp.Expand(context.Background(), "missing"); len(got) != 0 {
		t.Fatalf("Expand(missing) = %v, want empty", got)
	}
	if exp.Calls() != 2 {
		t.Fatalf("Calls() = %d, want 2", exp.Calls())
	}

	exp.PanicOn("a")
	defer func() {
		if recover() == nil {
			t.Fatal("Expand did not panic")
		}
	}()
	exp.Expand(context.Background(), "a")
}

func TestFakeExpander_Block(t *testing.T) {
	exp := NewFakeExpander(map[string][]string{"a": {"/x"}})
	entered := exp.Block()

	done := make(chan []string)
	go func() { done <- exp.Expand(context.Background(), "a") }()

	if p := <-entered; p != "a" {
		t.Fatalf("entered = %q, want a", p)
	}
	exp.Release()
	if got := <-done; len(got) != 1 {
		t.Fatalf("Expand() = %v", got)
	}
}

func TestWriteTree(t *testing.T) {
	root := t.TempDir()
	WriteTree(t, root, "a/b.txt", "empty/")

	if info, err := os.Stat(filepath.Join(root, "empty")); err != nil || !info.IsDir() {
		t.Fatalf("empty dir missing: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "a", "b.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "a/b.txt" {
		t.Fatalf("content = %q", data)
	}
}
