package reverse

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/haasonsaas/skillrt/internal/frame"
)

func TestCallResolvesOnReply(t *testing.T) {
	var buf bytes.Buffer
	c := NewClient(frame.NewWriter(&buf))

	done := make(chan struct{})
	var result json.RawMessage
	var callErr error
	go func() {
		result, callErr = c.Call(context.Background(), "data/read", map[string]any{"name": "x"}, time.Second)
		close(done)
	}()

	// Drain the written request to recover its allocated id.
	var sent map[string]any
	deadline := time.Now().Add(time.Second)
	for buf.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := json.Unmarshal(bytes.TrimRight(buf.Bytes(), "\n"), &sent); err != nil {
		t.Fatalf("decode sent request: %v", err)
	}
	id := sent["id"]

	idRaw, _ := json.Marshal(id)
	ok := c.HandleReply(&frame.Message{ID: idRaw, Result: []byte(`{"content":"hi"}`)})
	if !ok {
		t.Fatal("expected HandleReply to find the pending call")
	}

	<-done
	if callErr != nil {
		t.Fatalf("Call returned error: %v", callErr)
	}
	if string(result) != `{"content":"hi"}` {
		t.Fatalf("unexpected result: %s", result)
	}
}

func TestCallTimesOut(t *testing.T) {
	var buf bytes.Buffer
	c := NewClient(frame.NewWriter(&buf))
	_, err := c.Call(context.Background(), "data/read", nil, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestHandleReplyUnknownIDIsNoop(t *testing.T) {
	var buf bytes.Buffer
	c := NewClient(frame.NewWriter(&buf))
	idRaw, _ := json.Marshal(999)
	ok := c.HandleReply(&frame.Message{ID: idRaw, Result: []byte(`{}`)})
	if ok {
		t.Fatal("expected HandleReply to report no match for unknown id")
	}
}

func TestCallSurfacesRemoteError(t *testing.T) {
	var buf bytes.Buffer
	c := NewClient(frame.NewWriter(&buf))

	done := make(chan struct{})
	var callErr error
	go func() {
		_, callErr = c.Call(context.Background(), "entities/search", nil, time.Second)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for buf.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	var sent map[string]any
	_ = json.Unmarshal(bytes.TrimRight(buf.Bytes(), "\n"), &sent)
	idRaw, _ := json.Marshal(sent["id"])

	c.HandleReply(&frame.Message{ID: idRaw, Error: &frame.Error{Code: -32603, Message: "boom"}})
	<-done
	if callErr == nil {
		t.Fatal("expected remote error to surface")
	}
}
