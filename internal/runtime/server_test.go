package runtime

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/haasonsaas/skillrt/internal/frame"
	"github.com/haasonsaas/skillrt/internal/reverse"
	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

// testHost plays the opposite protocol role from Server in-process over
// a pair of pipes: it answers the skill's reverse-RPC calls from an
// in-memory map and issues its own forward calls to drive the skill
// through its lifecycle, the same duality cmd/skillrt-hostsim and
// cmd/skillrt-validate play against a real subprocess.
type testHost struct {
	rpc    *reverse.Client
	reader *frame.Reader

	mu    sync.Mutex
	data  map[string]string
	state map[string]any
}

func newTestHost(toSkill io.Writer, fromSkill io.Reader) *testHost {
	return &testHost{
		rpc:    reverse.NewClient(frame.NewWriter(toSkill)),
		reader: frame.NewReader(fromSkill),
		data:   make(map[string]string),
		state:  make(map[string]any),
	}
}

func (h *testHost) run() {
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
			go h.answer(msg)
		}
	}()
}

func (h *testHost) answer(msg *frame.Message) {
	var result any
	switch msg.Method {
	case "data/read":
		var p struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(msg.Params, &p)
		h.mu.Lock()
		content := h.data[p.Name]
		h.mu.Unlock()
		result = map[string]any{"content": content}
	case "data/write":
		var p struct {
			Name    string `json:"name"`
			Content string `json:"content"`
		}
		_ = json.Unmarshal(msg.Params, &p)
		h.mu.Lock()
		h.data[p.Name] = p.Content
		h.mu.Unlock()
		result = map[string]any{"ok": true}
	case "state/get":
		h.mu.Lock()
		out := make(map[string]any, len(h.state))
		for k, v := range h.state {
			out[k] = v
		}
		h.mu.Unlock()
		result = out
	case "state/set":
		var partial map[string]any
		_ = json.Unmarshal(msg.Params, &partial)
		h.mu.Lock()
		for k, v := range partial {
			h.state[k] = v
		}
		h.mu.Unlock()
		result = map[string]any{"ok": true}
	default:
		result = map[string]any{}
	}
	if msg.ID == nil {
		return
	}
	payload, _ := json.Marshal(result)
	_ = h.rpc.Writer().Write(map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(msg.ID),
		"result":  json.RawMessage(payload),
	})
}

func (h *testHost) call(t *testing.T, method string, params any) json.RawMessage {
	t.Helper()
	raw, err := h.rpc.Call(context.Background(), method, params, 2*time.Second)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return raw
}

func echoTool() skillsdk.ToolDefinition {
	return skillsdk.ToolDefinition{
		Name:        "echo",
		Description: "echo back the message argument",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"message": map[string]any{"type": "string"}},
			"required":   []string{"message"},
		},
		Execute: func(ctx context.Context, c *skillsdk.Context, args map[string]any) (skillsdk.ToolResult, error) {
			msg, _ := args["message"].(string)
			return skillsdk.ToolResult{Content: msg}, nil
		},
	}
}

func gatedTool() skillsdk.ToolDefinition {
	return skillsdk.ToolDefinition{
		Name:       "gated",
		Parameters: map[string]any{"type": "object", "properties": map[string]any{}},
		Execute: func(ctx context.Context, c *skillsdk.Context, args map[string]any) (skillsdk.ToolResult, error) {
			return skillsdk.ToolResult{Content: "ran"}, nil
		},
	}
}

func testDefinition() *skillsdk.Definition {
	return &skillsdk.Definition{
		Name:  "test-skill",
		Tools: []skillsdk.ToolDefinition{echoTool(), gatedTool()},
		Options: []skillsdk.OptionDefinition{
			{Name: "gated_enabled", Type: skillsdk.OptionBoolean, Default: true, ToolFilter: []string{"gated"}},
		},
		TriggerSchema: &skillsdk.TriggerSchema{
			TriggerTypes: []skillsdk.TriggerTypeDefinition{
				{Type: "message_match", ConditionFields: []skillsdk.TriggerFieldSchema{{Name: "message.text", Type: "string"}}},
			},
		},
	}
}

func setupServer(t *testing.T) (*Server, *testHost, func()) {
	t.Helper()
	hostToSkill, skillFromHost := io.Pipe()
	skillToHost, hostFromSkill := io.Pipe()

	s := New(testDefinition(), hostToSkill, skillToHost, io.Discard, nil)
	host := newTestHost(skillFromHost, hostFromSkill)
	host.run()

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)

	cleanup := func() {
		cancel()
		hostToSkill.Close()
		skillToHost.Close()
	}
	return s, host, cleanup
}

func decodeResult[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return v
}

func TestLoadActivateAndCallTool(t *testing.T) {
	_, host, cleanup := setupServer(t)
	defer cleanup()

	host.call(t, "skill/load", map[string]any{"manifest": map[string]any{}, "dataDir": "."})
	host.call(t, "skill/activate", nil)

	raw := host.call(t, "tools/call", map[string]any{
		"name":      "echo",
		"arguments": map[string]any{"message": "hi"},
	})
	resp := decodeResult[struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}](t, raw)
	if resp.IsError {
		t.Fatalf("unexpected tool error")
	}
	if len(resp.Content) != 1 || resp.Content[0].Text != "hi" {
		t.Fatalf("unexpected tool result: %+v", resp)
	}
}

func TestUnknownToolIsRejected(t *testing.T) {
	_, host, cleanup := setupServer(t)
	defer cleanup()

	host.call(t, "skill/load", map[string]any{"manifest": map[string]any{}, "dataDir": "."})
	_, err := host.rpc.Call(context.Background(), "tools/call", map[string]any{
		"name":      "does-not-exist",
		"arguments": map[string]any{},
	}, 2*time.Second)
	if err == nil {
		t.Fatal("expected unknown tool to error")
	}
}

func TestOptionsSetHidesGatedTool(t *testing.T) {
	_, host, cleanup := setupServer(t)
	defer cleanup()

	host.call(t, "skill/load", map[string]any{"manifest": map[string]any{}, "dataDir": "."})

	raw := host.call(t, "tools/list", nil)
	before := decodeResult[struct {
		Tools []map[string]any `json:"tools"`
	}](t, raw)
	if !toolNamesInclude(before.Tools, "gated") {
		t.Fatalf("expected gated tool visible before option is disabled: %+v", before.Tools)
	}

	host.call(t, "options/set", map[string]any{"name": "gated_enabled", "value": false})

	raw = host.call(t, "tools/list", nil)
	after := decodeResult[struct {
		Tools []map[string]any `json:"tools"`
	}](t, raw)
	if toolNamesInclude(after.Tools, "gated") {
		t.Fatalf("expected gated tool hidden after option disabled: %+v", after.Tools)
	}
}

func toolNamesInclude(tools []map[string]any, name string) bool {
	for _, t := range tools {
		if t["name"] == name {
			return true
		}
	}
	return false
}

func TestTriggerCreateRejectsMalformedRegex(t *testing.T) {
	_, host, cleanup := setupServer(t)
	defer cleanup()

	host.call(t, "skill/load", map[string]any{"manifest": map[string]any{}, "dataDir": "."})

	_, err := host.rpc.Call(context.Background(), "triggers/create", map[string]any{
		"type": "message_match",
		"name": "bad",
		"conditions": []map[string]any{
			{"type": "regex", "field": "message.text", "pattern": "[unterminated"},
		},
	}, 2*time.Second)
	if err == nil {
		t.Fatal("expected malformed regex to be rejected")
	}

	raw := host.call(t, "triggers/list", nil)
	list := decodeResult[struct {
		Triggers []map[string]any `json:"triggers"`
	}](t, raw)
	if len(list.Triggers) != 0 {
		t.Fatalf("expected no trigger to be persisted, got %d", len(list.Triggers))
	}
}

func TestTriggerCooldownSuppressesRapidRefire(t *testing.T) {
	s, host, cleanup := setupServer(t)
	defer cleanup()

	host.call(t, "skill/load", map[string]any{"manifest": map[string]any{}, "dataDir": "."})

	raw := host.call(t, "triggers/create", map[string]any{
		"type": "message_match",
		"name": "greeting",
		"conditions": []map[string]any{
			{"type": "keyword", "field": "message.text", "keywords": []string{"hello"}},
		},
	})
	_ = decodeResult[struct {
		Trigger struct {
			ID string `json:"id"`
		} `json:"trigger"`
	}](t, raw)

	data := map[string]any{"message": map[string]any{"text": "hello there"}}
	now := time.Now()

	first := s.triggers.Match("message_match", data, now, nil)
	if len(first) != 1 {
		t.Fatalf("expected the first match to fire, got %d", len(first))
	}
	second := s.triggers.Match("message_match", data, now.Add(time.Second), nil)
	if len(second) != 0 {
		t.Fatalf("expected a refire inside the cooldown window to be suppressed, got %d", len(second))
	}
	third := s.triggers.Match("message_match", data, now.Add(6*time.Second), nil)
	if len(third) != 1 {
		t.Fatalf("expected a refire after the cooldown window to fire again, got %d", len(third))
	}
}

func TestSetupWizardRoundTrip(t *testing.T) {
	def := testDefinition()
	def.HasSetup = true
	var submitted map[string]any
	def.Hooks.OnSetupStart = func(ctx context.Context, c *skillsdk.Context) (*skillsdk.SetupStep, error) {
		return &skillsdk.SetupStep{ID: "welcome", Fields: []skillsdk.SetupField{{Name: "greeting", Type: "text"}}}, nil
	}
	def.Hooks.OnSetupSubmit = func(ctx context.Context, c *skillsdk.Context, stepID string, values map[string]any) (*skillsdk.SetupResult, error) {
		submitted = values
		return &skillsdk.SetupResult{Status: "complete"}, nil
	}

	hostToSkill, skillFromHost := io.Pipe()
	skillToHost, hostFromSkill := io.Pipe()
	s := New(def, hostToSkill, skillToHost, io.Discard, nil)
	host := newTestHost(skillFromHost, hostFromSkill)
	host.run()
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	defer func() {
		cancel()
		hostToSkill.Close()
		skillToHost.Close()
	}()

	host.call(t, "skill/load", map[string]any{"manifest": map[string]any{}, "dataDir": "."})
	host.call(t, "setup/start", nil)
	host.call(t, "setup/submit", map[string]any{"stepId": "welcome", "values": map[string]any{"greeting": "hi"}})

	if submitted["greeting"] != "hi" {
		t.Fatalf("expected submitted values to reach on_setup_submit, got %+v", submitted)
	}

	_, err := host.rpc.Call(context.Background(), "setup/submit", map[string]any{"stepId": "welcome", "values": map[string]any{}}, 2*time.Second)
	if err == nil {
		t.Fatal("expected a second submit with no active session to fail")
	}
}
