package runtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/haasonsaas/skillrt/internal/reverse"
	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

// Server implements skillsdk.Facade directly; skillsdk.Context wraps it
// so skill code never depends on internal/reverse or internal/runtime.
var _ skillsdk.Facade = (*Server)(nil)

func (s *Server) DataDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataDir != "" {
		return s.dataDir
	}
	id := "unknown"
	if s.def.Name != "" {
		id = s.def.Name
	}
	return fmt.Sprintf("skills/%s/data", id)
}

func (s *Server) ReadData(ctx context.Context, name string) (string, error) {
	raw, err := s.rpc.Call(ctx, "data/read", map[string]any{"name": name}, reverse.DefaultTimeout)
	if err != nil {
		return "", err
	}
	var resp struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (s *Server) WriteData(ctx context.Context, name, content string) error {
	_, err := s.rpc.Call(ctx, "data/write", map[string]any{"name": name, "content": content}, reverse.DefaultTimeout)
	return err
}

func (s *Server) Log(message string) {
	obsSkillLog(s.logOut, message)
}

func (s *Server) GetState(ctx context.Context) (map[string]any, error) {
	raw, err := s.rpc.Call(ctx, "state/get", nil, reverse.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	var state map[string]any
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Server) SetState(ctx context.Context, partial map[string]any) error {
	_, err := s.rpc.Call(ctx, "state/set", partial, reverse.DefaultTimeout)
	return err
}

func (s *Server) EmitEvent(ctx context.Context, name string, data map[string]any) error {
	return s.rpc.Notify("intelligence/emitEvent", map[string]any{"name": name, "data": data})
}

func (s *Server) UpsertEntity(ctx context.Context, entity map[string]any) (map[string]any, error) {
	raw, err := s.rpc.Call(ctx, "entities/upsert", entity, reverse.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return decodeMap(raw)
}

func (s *Server) UpsertRelationship(ctx context.Context, rel map[string]any) (map[string]any, error) {
	raw, err := s.rpc.Call(ctx, "entities/upsertRelationship", rel, reverse.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return decodeMap(raw)
}

func (s *Server) SearchEntities(ctx context.Context, query map[string]any) ([]map[string]any, error) {
	raw, err := s.rpc.Call(ctx, "entities/search", query, reverse.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return decodeMapSlice(raw)
}

func (s *Server) GetRelationships(ctx context.Context, query map[string]any) ([]map[string]any, error) {
	raw, err := s.rpc.Call(ctx, "entities/getRelationships", query, reverse.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	return decodeMapSlice(raw)
}

func (s *Server) GetOptions(ctx context.Context) map[string]any {
	return s.options.Snapshot()
}

func (s *Server) FireTrigger(ctx context.Context, triggerID string, matchedData, extra map[string]any) error {
	t, ok := s.triggers.Get(triggerID)
	if !ok {
		s.log.Warn("fire_trigger called with unknown trigger id", "trigger", triggerID)
		return nil
	}
	if s.metrics != nil {
		s.metrics.ObserveTriggerFire(t.Type)
	}
	return s.rpc.Notify("triggers/fired", map[string]any{
		"triggerId":   t.ID,
		"triggerName": t.Name,
		"triggerType": t.Type,
		"firedAt":     nowUTC(),
		"matchedData": matchedData,
		"context":     extra,
	})
}

func (s *Server) GetTriggers(ctx context.Context) []*skillsdk.TriggerInstance {
	return s.triggers.List()
}

func (s *Server) RequestSummarization(ctx context.Context, messages, chats []map[string]any, currentUser *string) (map[string]any, error) {
	params := map[string]any{"messages": messages, "chats": chats}
	if currentUser != nil {
		params["currentUser"] = *currentUser
	}
	raw, err := s.rpc.Call(ctx, "intelligence/summarize", params, reverse.SummarizationTimeout)
	if err != nil {
		return nil, err
	}
	return decodeMap(raw)
}

func (s *Server) Memory() skillsdk.Memory {
	return &memoryFacade{s: s}
}

type memoryFacade struct{ s *Server }

func (m *memoryFacade) Read(ctx context.Context, key string) (string, error) {
	return m.s.ReadData(ctx, "memory/"+key)
}

func (m *memoryFacade) Write(ctx context.Context, key, value string) error {
	return m.s.WriteData(ctx, "memory/"+key, value)
}

// Search, List, and Delete have no backing reverse-RPC method in this
// protocol version; they return empty results rather than erroring, so
// skill code that probes for memory search support degrades gracefully.
func (m *memoryFacade) Search(ctx context.Context, query string) ([]string, error) { return nil, nil }
func (m *memoryFacade) List(ctx context.Context) ([]string, error)                 { return nil, nil }
func (m *memoryFacade) Delete(ctx context.Context, key string) error               { return nil }

func decodeMap(raw json.RawMessage) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeMapSlice(raw json.RawMessage) ([]map[string]any, error) {
	var s []map[string]any
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s, nil
}
