package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/haasonsaas/skillrt/internal/dispatch"
	"github.com/haasonsaas/skillrt/internal/frame"
	"github.com/haasonsaas/skillrt/internal/reverse"
)

// harness spawns one skill subprocess and answers its reverse-RPC
// calls from an in-memory map, with no disk persistence — scoped to
// one validate run.
type harness struct {
	cmd    *exec.Cmd
	rpc    *reverse.Client
	reader *frame.Reader
	router *dispatch.Router

	mu    sync.Mutex
	data  map[string]string
	state map[string]any
}

func newHarness(skillPath string) (*harness, error) {
	cmd := exec.Command(skillPath)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start skill %s: %w", skillPath, err)
	}

	writer := frame.NewWriter(stdin)
	h := &harness{
		cmd:    cmd,
		rpc:    reverse.NewClient(writer),
		reader: frame.NewReader(stdout),
		router: dispatch.NewRouter(),
		data:   make(map[string]string),
		state:  make(map[string]any),
	}
	h.router.Handle("data/read", h.handleDataRead)
	h.router.Handle("data/write", h.handleDataWrite)
	h.router.Handle("state/get", h.handleStateGet)
	h.router.Handle("state/set", h.handleStateSet)
	h.router.Handle("intelligence/emitEvent", func(ctx context.Context, raw json.RawMessage) (any, error) { return nil, nil })
	h.router.Handle("intelligence/summarize", func(ctx context.Context, raw json.RawMessage) (any, error) {
		return map[string]any{"topics": []string{}, "connections": []string{}, "summary": ""}, nil
	})
	echoBack := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var v map[string]any
		_ = json.Unmarshal(raw, &v)
		return v, nil
	}
	h.router.Handle("entities/upsert", echoBack)
	h.router.Handle("entities/upsertRelationship", echoBack)
	h.router.Handle("entities/search", func(ctx context.Context, raw json.RawMessage) (any, error) {
		return []map[string]any{}, nil
	})
	h.router.Handle("entities/getRelationships", func(ctx context.Context, raw json.RawMessage) (any, error) {
		return []map[string]any{}, nil
	})
	h.router.Handle("triggers/fired", func(ctx context.Context, raw json.RawMessage) (any, error) { return nil, nil })
	return h, nil
}

func (h *harness) handleDataRead(ctx context.Context, raw json.RawMessage) (any, error) {
	var p struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return map[string]any{"content": h.data[p.Name]}, nil
}

func (h *harness) handleDataWrite(ctx context.Context, raw json.RawMessage) (any, error) {
	var p struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.data[p.Name] = p.Content
	h.mu.Unlock()
	return map[string]any{"ok": true}, nil
}

func (h *harness) handleStateGet(ctx context.Context, raw json.RawMessage) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]any, len(h.state))
	for k, v := range h.state {
		out[k] = v
	}
	return out, nil
}

func (h *harness) handleStateSet(ctx context.Context, raw json.RawMessage) (any, error) {
	var partial map[string]any
	if err := json.Unmarshal(raw, &partial); err != nil {
		return nil, err
	}
	h.mu.Lock()
	for k, v := range partial {
		h.state[k] = v
	}
	h.mu.Unlock()
	return map[string]any{"ok": true}, nil
}

// run services the skill's stdout in the background until ctx is done
// or the process exits.
func (h *harness) run(ctx context.Context) {
	go func() {
		for {
			msg, err := h.reader.Read()
			if err != nil {
				return
			}
			if msg.IsReply() {
				h.rpc.HandleReply(msg)
				continue
			}
			go dispatch.Dispatch(ctx, h.router, h.rpc.Writer(), msg, nil)
		}
	}()
}

func (h *harness) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return h.rpc.Call(ctx, method, params, reverse.DefaultTimeout)
}

func (h *harness) close() {
	_, _ = h.call(context.Background(), "skill/shutdown", nil)
	_ = h.cmd.Wait()
}
