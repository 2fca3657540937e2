package runtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/haasonsaas/skillrt/internal/triggerstore"
)

func (s *Server) handleTriggersTypes(ctx context.Context, raw json.RawMessage) (any, error) {
	return map[string]any{"triggerTypes": s.triggers.Types()}, nil
}

func (s *Server) handleTriggersList(ctx context.Context, raw json.RawMessage) (any, error) {
	list := s.triggers.List()
	wire := make([]triggerstore.WireTrigger, 0, len(list))
	for _, t := range list {
		wire = append(wire, triggerstore.ToWire(t))
	}
	return map[string]any{"triggers": wire}, nil
}

type triggerIDParams struct {
	ID string `json:"id"`
}

func (s *Server) handleTriggersGet(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodeParams[triggerIDParams](raw)
	if err != nil {
		return nil, err
	}
	t, ok := s.triggers.Get(p.ID)
	if !ok {
		return nil, fmt.Errorf("unknown trigger: %s", p.ID)
	}
	return map[string]any{"trigger": triggerstore.ToWire(t)}, nil
}

func (s *Server) handleTriggersCreate(ctx context.Context, raw json.RawMessage) (any, error) {
	req, err := decodeParams[triggerstore.CreateRequest](raw)
	if err != nil {
		return nil, err
	}
	t, err := s.triggers.Create(ctx, s, s, req)
	if err != nil {
		return nil, err
	}
	return map[string]any{"trigger": triggerstore.ToWire(t)}, nil
}

type triggerUpdateParams struct {
	ID string `json:"id"`
	triggerstore.UpdatePatch
}

func (s *Server) handleTriggersUpdate(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodeParams[triggerUpdateParams](raw)
	if err != nil {
		return nil, err
	}
	t, err := s.triggers.Update(ctx, s, s, p.ID, p.UpdatePatch)
	if err != nil {
		return nil, err
	}
	return map[string]any{"trigger": triggerstore.ToWire(t)}, nil
}

func (s *Server) handleTriggersDelete(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodeParams[triggerIDParams](raw)
	if err != nil {
		return nil, err
	}
	if err := s.triggers.Delete(ctx, s, p.ID); err != nil {
		return nil, err
	}
	return ok(), nil
}
