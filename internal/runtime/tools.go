package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

// rebuildTools recomputes the currently-callable tool set: every
// declared tool not hidden by a false boolean option's tool_filter,
// plus the trigger CRUD tools (always visible, never filtered) when
// the skill declares a trigger schema.
func (s *Server) rebuildTools() {
	names := make([]string, 0, len(s.def.Tools))
	for _, t := range s.def.Tools {
		names = append(names, t.Name)
	}
	visible := s.options.VisibleTools(names)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = make(map[string]skillsdk.ToolDefinition, len(s.def.Tools))
	for _, t := range s.def.Tools {
		if visible[t.Name] {
			s.tools[t.Name] = t
		}
	}
	if s.def.TriggerSchema != nil {
		for _, t := range s.triggers.BuildTools(s, s) {
			s.tools[t.Name] = t
		}
	}
}

func (s *Server) toolList() []skillsdk.ToolDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]skillsdk.ToolDefinition, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, t)
	}
	return out
}

func (s *Server) lookupTool(name string) (skillsdk.ToolDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tools[name]
	return t, ok
}

func (s *Server) handleToolsList(ctx context.Context, raw json.RawMessage) (any, error) {
	tools := s.toolList()
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		out = append(out, map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": t.Parameters,
		})
	}
	return map[string]any{"tools": out}, nil
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleToolsCall(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodeParams[toolCallParams](raw)
	if err != nil {
		return nil, err
	}
	t, ok := s.lookupTool(p.Name)
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", p.Name)
	}
	if err := t.ValidateArguments(p.Arguments); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := t.Execute(ctx, s.ctx, p.Arguments)
	if s.metrics != nil {
		s.metrics.ObserveToolCall(p.Name, err != nil || result.IsError, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"content": []map[string]any{{"type": "text", "text": result.Content}},
		"isError": result.IsError,
	}, nil
}
