package triggerstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

// BuildTools returns the six auto-generated trigger CRUD tools exposed
// to the language model whenever a skill declares a trigger schema.
// They are always visible — never subject to option tool_filter.
func (s *Store) BuildTools(p Persister, log Logger) []skillsdk.ToolDefinition {
	return []skillsdk.ToolDefinition{
		s.listTypesTool(),
		s.listTriggersTool(),
		s.getTriggerTool(),
		s.createTriggerTool(p, log),
		s.updateTriggerTool(p, log),
		s.deleteTriggerTool(p),
	}
}

func errResult(err error) (skillsdk.ToolResult, error) {
	return skillsdk.ToolResult{Content: err.Error(), IsError: true}, nil
}

func jsonResult(v any) (skillsdk.ToolResult, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return errResult(err)
	}
	return skillsdk.ToolResult{Content: string(payload)}, nil
}

func (s *Store) listTypesTool() skillsdk.ToolDefinition {
	return skillsdk.ToolDefinition{
		Name:        "list-trigger-types",
		Description: "List the trigger types this skill supports.",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		Execute: func(ctx context.Context, c *skillsdk.Context, args map[string]any) (skillsdk.ToolResult, error) {
			return jsonResult(s.Types())
		},
	}
}

func (s *Store) listTriggersTool() skillsdk.ToolDefinition {
	return skillsdk.ToolDefinition{
		Name:        "list-triggers",
		Description: "List all registered triggers.",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		Execute: func(ctx context.Context, c *skillsdk.Context, args map[string]any) (skillsdk.ToolResult, error) {
			triggers := s.List()
			wire := make([]WireTrigger, 0, len(triggers))
			for _, t := range triggers {
				wire = append(wire, ToWire(t))
			}
			return jsonResult(wire)
		},
	}
}

func (s *Store) getTriggerTool() skillsdk.ToolDefinition {
	return skillsdk.ToolDefinition{
		Name:        "get-trigger",
		Description: "Get one trigger by id.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"id": map[string]any{"type": "string"}},
			"required":   []string{"id"},
		},
		Execute: func(ctx context.Context, c *skillsdk.Context, args map[string]any) (skillsdk.ToolResult, error) {
			id, _ := args["id"].(string)
			t, ok := s.Get(id)
			if !ok {
				return errResult(fmt.Errorf("unknown trigger: %s", id))
			}
			return jsonResult(ToWire(t))
		},
	}
}

func (s *Store) createTriggerTool(p Persister, log Logger) skillsdk.ToolDefinition {
	return skillsdk.ToolDefinition{
		Name:        "create-trigger",
		Description: "Create a new trigger.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type":        map[string]any{"type": "string"},
				"name":        map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"conditions":  map[string]any{"type": "array"},
				"config":      map[string]any{"type": "object"},
				"enabled":     map[string]any{"type": "boolean"},
				"metadata":    map[string]any{"type": "object"},
			},
			"required": []string{"type", "name", "conditions"},
		},
		Execute: func(ctx context.Context, c *skillsdk.Context, args map[string]any) (skillsdk.ToolResult, error) {
			req, err := decodeCreateRequest(args)
			if err != nil {
				return errResult(err)
			}
			t, err := s.Create(ctx, p, log, req)
			if err != nil {
				return errResult(err)
			}
			return jsonResult(ToWire(t))
		},
	}
}

func (s *Store) updateTriggerTool(p Persister, log Logger) skillsdk.ToolDefinition {
	return skillsdk.ToolDefinition{
		Name:        "update-trigger",
		Description: "Update fields of an existing trigger.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":          map[string]any{"type": "string"},
				"name":        map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"conditions":  map[string]any{"type": "array"},
				"config":      map[string]any{"type": "object"},
				"enabled":     map[string]any{"type": "boolean"},
				"metadata":    map[string]any{"type": "object"},
			},
			"required": []string{"id"},
		},
		Execute: func(ctx context.Context, c *skillsdk.Context, args map[string]any) (skillsdk.ToolResult, error) {
			id, _ := args["id"].(string)
			patch, err := decodeUpdatePatch(args)
			if err != nil {
				return errResult(err)
			}
			t, err := s.Update(ctx, p, log, id, patch)
			if err != nil {
				return errResult(err)
			}
			return jsonResult(ToWire(t))
		},
	}
}

func (s *Store) deleteTriggerTool(p Persister) skillsdk.ToolDefinition {
	return skillsdk.ToolDefinition{
		Name:        "delete-trigger",
		Description: "Delete a trigger by id.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"id": map[string]any{"type": "string"}},
			"required":   []string{"id"},
		},
		Execute: func(ctx context.Context, c *skillsdk.Context, args map[string]any) (skillsdk.ToolResult, error) {
			id, _ := args["id"].(string)
			if err := s.Delete(ctx, p, id); err != nil {
				return errResult(err)
			}
			return jsonResult(map[string]bool{"ok": true})
		},
	}
}

func decodeCreateRequest(args map[string]any) (CreateRequest, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return CreateRequest{}, err
	}
	var req CreateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return CreateRequest{}, fmt.Errorf("invalid create-trigger arguments: %w", err)
	}
	return req, nil
}

func decodeUpdatePatch(args map[string]any) (UpdatePatch, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return UpdatePatch{}, err
	}
	var patch UpdatePatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return UpdatePatch{}, fmt.Errorf("invalid update-trigger arguments: %w", err)
	}
	return patch, nil
}
