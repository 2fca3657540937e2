package runtime

import (
	"context"
	"encoding/json"
	"fmt"
)

func (s *Server) handleSetupStart(ctx context.Context, raw json.RawMessage) (any, error) {
	if !s.def.HasSetup {
		return nil, fmt.Errorf("skill does not support setup")
	}
	step, err := s.wizard.Start(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"step": step}, nil
}

type setupSubmitParams struct {
	StepID string         `json:"stepId"`
	Values map[string]any `json:"values"`
}

func (s *Server) handleSetupSubmit(ctx context.Context, raw json.RawMessage) (any, error) {
	if !s.def.HasSetup {
		return nil, fmt.Errorf("skill does not support setup")
	}
	p, err := decodeParams[setupSubmitParams](raw)
	if err != nil {
		return nil, err
	}
	result, err := s.wizard.Submit(ctx, p.StepID, p.Values)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Server) handleSetupCancel(ctx context.Context, raw json.RawMessage) (any, error) {
	if !s.def.HasSetup {
		return nil, fmt.Errorf("skill does not support setup")
	}
	if err := s.wizard.Cancel(ctx); err != nil {
		return nil, err
	}
	return ok(), nil
}
