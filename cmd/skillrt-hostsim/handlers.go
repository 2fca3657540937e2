package main

import (
	"context"
	"encoding/json"
)

type dataReadParams struct {
	Name string `json:"name"`
}

func (s *Supervisor) handleDataRead(ctx context.Context, raw json.RawMessage) (any, error) {
	var p dataReadParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	content, err := s.store.ReadData(ctx, s.cfg.SkillID, p.Name)
	if err != nil {
		return nil, err
	}
	return map[string]any{"content": content}, nil
}

type dataWriteParams struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (s *Supervisor) handleDataWrite(ctx context.Context, raw json.RawMessage) (any, error) {
	var p dataWriteParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if err := s.store.WriteData(ctx, s.cfg.SkillID, p.Name, p.Content); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (s *Supervisor) handleStateGet(ctx context.Context, raw json.RawMessage) (any, error) {
	return s.store.GetState(ctx, s.cfg.SkillID)
}

func (s *Supervisor) handleStateSet(ctx context.Context, raw json.RawMessage) (any, error) {
	var partial map[string]any
	if err := json.Unmarshal(raw, &partial); err != nil {
		return nil, err
	}
	if err := s.store.SetState(ctx, s.cfg.SkillID, partial); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (s *Supervisor) handleEmitEvent(ctx context.Context, raw json.RawMessage) (any, error) {
	var evt map[string]any
	_ = json.Unmarshal(raw, &evt)
	s.log.Info("skill emitted event", "event", evt)
	return nil, nil
}

// handleSummarize is a reference stub: skillrt-hostsim has no attached
// language model, so it returns an empty summary rather than failing
// the call outright, letting a skill's summarization path exercise end
// to end during local development.
func (s *Supervisor) handleSummarize(ctx context.Context, raw json.RawMessage) (any, error) {
	return map[string]any{
		"topics":      []string{},
		"connections": []string{},
		"summary":     "",
	}, nil
}

func (s *Supervisor) handleEntitiesStub(ctx context.Context, raw json.RawMessage) (any, error) {
	var entity map[string]any
	_ = json.Unmarshal(raw, &entity)
	return entity, nil
}

func (s *Supervisor) handleEntitiesSearchStub(ctx context.Context, raw json.RawMessage) (any, error) {
	return []map[string]any{}, nil
}

func (s *Supervisor) handleTriggersFired(ctx context.Context, raw json.RawMessage) (any, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	s.log.Info("trigger fired", "trigger", payload["triggerName"])
	if s.onTriggerFired != nil {
		s.onTriggerFired(payload)
	}
	return nil, nil
}
