package runtime

import (
	"context"
	"encoding/json"
)

func (s *Server) handleOptionsList(ctx context.Context, raw json.RawMessage) (any, error) {
	return map[string]any{"options": s.options.List()}, nil
}

func (s *Server) handleOptionsGet(ctx context.Context, raw json.RawMessage) (any, error) {
	return map[string]any{"options": s.options.Snapshot()}, nil
}

type optionSetParams struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// handleOptionsSet applies the new value, recomputes the visible tool
// set, and only then invokes on_options_change — so a skill that reads
// back its own tool list inside the hook sees the change already
// applied.
func (s *Server) handleOptionsSet(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodeParams[optionSetParams](raw)
	if err != nil {
		return nil, err
	}
	if err := s.options.Set(ctx, s, p.Name, p.Value); err != nil {
		return nil, err
	}
	s.rebuildTools()

	if s.def.Hooks.OnOptionsChange != nil {
		if err := s.def.Hooks.OnOptionsChange(ctx, s.ctx, s.options.Snapshot()); err != nil {
			return nil, err
		}
	}
	return ok(), nil
}

func (s *Server) handleOptionsReset(ctx context.Context, raw json.RawMessage) (any, error) {
	if err := s.options.Reset(ctx, s); err != nil {
		return nil, err
	}
	s.rebuildTools()

	if s.def.Hooks.OnOptionsChange != nil {
		if err := s.def.Hooks.OnOptionsChange(ctx, s.ctx, s.options.Snapshot()); err != nil {
			return nil, err
		}
	}
	return ok(), nil
}
