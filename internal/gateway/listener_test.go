package gateway

import (
	"testing"
	"time"
)

func TestListenerDeliversEventsInOrderAndSkipsGarbage(t *testing.T) {
	skipWithoutShell(t)

	script := `printf '%s\n' ` +
		`'{"type":"chat","msg":{"msg":{"conversation_id":"c1","channel":{"name":"acme","members_type":"team"},"sender":{"username":"alice","device_name":"laptop"},"content":{"type":"text","text":{"body":"one"}}}}}' ` +
		`'this line is not json' ` +
		`'{"type":"chat","msg":{"msg":{"conversation_id":"c2","channel":{"name":"acme","members_type":"team"},"sender":{"username":"alice","device_name":"laptop"},"content":{"type":"text","text":{"body":"two"}}}}}'`

	l, err := StartListener("sh", []string{"-c", script}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer l.Close()

	var ids []string
	for event := range l.Events() {
		ids = append(ids, event.Message.ConversationID)
	}
	if len(ids) != 2 || ids[0] != "c1" || ids[1] != "c2" {
		t.Fatalf("event ids = %v, want [c1 c2]", ids)
	}
}

func TestListenerCloseKillsSubprocess(t *testing.T) {
	skipWithoutShell(t)

	l, err := StartListener("sh", []string{"-c", "sleep 60"}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = l.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return; subprocess was not killed")
	}

	if _, open := <-l.Events(); open {
		t.Fatal("event channel still open after Close")
	}
}

func TestListenerCloseIsIdempotent(t *testing.T) {
	skipWithoutShell(t)

	l, err := StartListener("sh", []string{"-c", "sleep 60"}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
