package main

import (
	"context"
	"encoding/json"
	"fmt"
)

type checkResult struct {
	name string
	err  error
}

func runChecks(ctx context.Context, skillPath string) error {
	h, err := newHarness(skillPath)
	if err != nil {
		return err
	}
	defer h.close()
	h.run(ctx)

	if _, err := h.call(ctx, "skill/load", map[string]any{
		"manifest": map[string]any{},
		"dataDir":  ".",
	}); err != nil {
		return fmt.Errorf("skill/load: %w", err)
	}
	if _, err := h.call(ctx, "skill/activate", nil); err != nil {
		return fmt.Errorf("skill/activate: %w", err)
	}

	results := []checkResult{
		{"tools/list responds", checkToolsList(ctx, h)},
		{"unknown tool call is rejected", checkUnknownTool(ctx, h)},
		{"setup wizard rejects submit without start", checkSetupWithoutStart(ctx, h)},
		{"trigger creation rejects malformed regex", checkBadRegexRejected(ctx, h)},
		{"options/list responds", checkOptionsList(ctx, h)},
	}

	failed := false
	for _, r := range results {
		if r.err != nil {
			failed = true
			fmt.Printf("FAIL %s: %v\n", r.name, r.err)
		} else {
			fmt.Printf("PASS %s\n", r.name)
		}
	}
	if failed {
		return fmt.Errorf("one or more checks failed")
	}
	return nil
}

func checkToolsList(ctx context.Context, h *harness) error {
	raw, err := h.call(ctx, "tools/list", nil)
	if err != nil {
		return err
	}
	var resp struct {
		Tools []map[string]any `json:"tools"`
	}
	return json.Unmarshal(raw, &resp)
}

func checkUnknownTool(ctx context.Context, h *harness) error {
	_, err := h.call(ctx, "tools/call", map[string]any{"name": "does-not-exist", "arguments": map[string]any{}})
	if err == nil {
		return fmt.Errorf("expected an error calling an unknown tool")
	}
	return nil
}

func checkSetupWithoutStart(ctx context.Context, h *harness) error {
	_, err := h.call(ctx, "setup/submit", map[string]any{"stepId": "a", "values": map[string]any{}})
	if err == nil {
		return fmt.Errorf("expected setup/submit without a prior setup/start to fail")
	}
	return nil
}

func checkBadRegexRejected(ctx context.Context, h *harness) error {
	_, err := h.call(ctx, "triggers/create", map[string]any{
		"type": "message_match",
		"name": "validate-bad-regex",
		"conditions": []map[string]any{
			{"type": "regex", "field": "message.text", "pattern": "[unterminated"},
		},
	})
	if err == nil {
		return fmt.Errorf("expected an unterminated regex to be rejected at creation")
	}
	return nil
}

func checkOptionsList(ctx context.Context, h *harness) error {
	raw, err := h.call(ctx, "options/list", nil)
	if err != nil {
		return err
	}
	var resp struct {
		Options []map[string]any `json:"options"`
	}
	return json.Unmarshal(raw, &resp)
}
