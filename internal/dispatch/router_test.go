package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/haasonsaas/skillrt/internal/frame"
)

func idOf(n int) json.RawMessage {
	raw, _ := json.Marshal(n)
	return raw
}

func TestDispatchWritesExactlyOneResponse(t *testing.T) {
	var buf bytes.Buffer
	w := frame.NewWriter(&buf)
	r := NewRouter()
	r.Handle("tools/list", func(ctx context.Context, params json.RawMessage) (any, error) {
		return map[string]any{"tools": []string{}}, nil
	})

	msg := &frame.Message{ID: idOf(1), Method: "tools/list"}
	Dispatch(context.Background(), r, w, msg, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one response line, got %d", len(lines))
	}
	var resp map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, hasResult := resp["result"]; !hasResult {
		t.Fatal("expected a result field")
	}
	if _, hasError := resp["error"]; hasError {
		t.Fatal("did not expect an error field")
	}
}

func TestDispatchUnknownMethodIsInternalError(t *testing.T) {
	var buf bytes.Buffer
	w := frame.NewWriter(&buf)
	r := NewRouter()
	msg := &frame.Message{ID: idOf(2), Method: "bogus/method"}
	Dispatch(context.Background(), r, w, msg, nil)

	var resp map[string]any
	_ = json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp)
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatal("expected an error object")
	}
	if int(errObj["code"].(float64)) != internalErrorCode {
		t.Fatalf("expected code %d, got %v", internalErrorCode, errObj["code"])
	}
}

func TestDispatchHandlerErrorIsInternalError(t *testing.T) {
	var buf bytes.Buffer
	w := frame.NewWriter(&buf)
	r := NewRouter()
	r.Handle("skill/status", func(ctx context.Context, params json.RawMessage) (any, error) {
		return nil, errors.New("status not implemented")
	})
	msg := &frame.Message{ID: idOf(3), Method: "skill/status"}
	Dispatch(context.Background(), r, w, msg, nil)

	var resp map[string]any
	_ = json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp)
	errObj := resp["error"].(map[string]any)
	if errObj["message"] != "status not implemented" {
		t.Fatalf("unexpected message: %v", errObj["message"])
	}
}

func TestDispatchNotificationProducesNoResponse(t *testing.T) {
	var buf bytes.Buffer
	w := frame.NewWriter(&buf)
	r := NewRouter()
	called := false
	r.Handle("skill/tick", func(ctx context.Context, params json.RawMessage) (any, error) {
		called = true
		return map[string]any{"ok": true}, nil
	})
	msg := &frame.Message{Method: "skill/tick"} // no ID: notification
	Dispatch(context.Background(), r, w, msg, nil)

	if !called {
		t.Fatal("expected handler to run")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no response frame for a notification, got %q", buf.String())
	}
}

func TestDispatchNotificationErrorIsReportedNotFramed(t *testing.T) {
	var buf bytes.Buffer
	w := frame.NewWriter(&buf)
	r := NewRouter()
	r.Handle("skill/tick", func(ctx context.Context, params json.RawMessage) (any, error) {
		return nil, errors.New("boom")
	})
	var reported error
	msg := &frame.Message{Method: "skill/tick"}
	Dispatch(context.Background(), r, w, msg, func(method string, err error) { reported = err })

	if buf.Len() != 0 {
		t.Fatal("notification must never produce a response frame")
	}
	if reported == nil {
		t.Fatal("expected notification error to be reported out of band")
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	var buf bytes.Buffer
	w := frame.NewWriter(&buf)
	r := NewRouter()
	r.Handle("tools/call", func(ctx context.Context, params json.RawMessage) (any, error) {
		panic("handler exploded")
	})
	msg := &frame.Message{ID: idOf(4), Method: "tools/call"}
	Dispatch(context.Background(), r, w, msg, nil)

	var resp map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp); err != nil {
		t.Fatalf("expected a valid response frame even after a panic: %v", err)
	}
	if _, hasError := resp["error"]; !hasError {
		t.Fatal("expected a panic to surface as an error response")
	}
}
