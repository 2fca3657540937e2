package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

func (s *Server) registerHandlers() {
	s.router.Handle("tools/list", s.handleToolsList)
	s.router.Handle("tools/call", s.handleToolsCall)

	s.router.Handle("skill/load", s.handleLoad)
	s.router.Handle("skill/unload", s.handleUnload)
	s.router.Handle("skill/activate", s.handleActivate)
	s.router.Handle("skill/deactivate", s.handleDeactivate)
	s.router.Handle("skill/sessionStart", s.handleSessionStart)
	s.router.Handle("skill/sessionEnd", s.handleSessionEnd)
	s.router.Handle("skill/beforeMessage", s.handleBeforeMessage)
	s.router.Handle("skill/afterResponse", s.handleAfterResponse)
	s.router.Handle("skill/tick", s.handleTick)
	s.router.Handle("skill/status", s.handleStatus)
	s.router.Handle("skill/shutdown", s.handleShutdown)
	s.router.Handle("skill/disconnect", s.handleDisconnect)

	s.router.Handle("setup/start", s.handleSetupStart)
	s.router.Handle("setup/submit", s.handleSetupSubmit)
	s.router.Handle("setup/cancel", s.handleSetupCancel)

	s.router.Handle("options/list", s.handleOptionsList)
	s.router.Handle("options/get", s.handleOptionsGet)
	s.router.Handle("options/set", s.handleOptionsSet)
	s.router.Handle("options/reset", s.handleOptionsReset)

	s.router.Handle("triggers/types", s.handleTriggersTypes)
	s.router.Handle("triggers/list", s.handleTriggersList)
	s.router.Handle("triggers/get", s.handleTriggersGet)
	s.router.Handle("triggers/create", s.handleTriggersCreate)
	s.router.Handle("triggers/update", s.handleTriggersUpdate)
	s.router.Handle("triggers/delete", s.handleTriggersDelete)
}

func ok() map[string]any { return map[string]any{"ok": true} }

type loadParams struct {
	Manifest map[string]any `json:"manifest"`
	DataDir  string          `json:"dataDir"`
	Config   map[string]any  `json:"config"`
}

func (s *Server) handleLoad(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodeParams[loadParams](raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.manifest = p.Manifest
	s.dataDir = p.DataDir
	s.mu.Unlock()

	if err := s.options.Load(ctx, s); err != nil {
		s.log.Warn("options load failed", "error", err)
	}
	if err := s.triggers.Load(ctx, s, s); err != nil {
		s.log.Warn("triggers load failed", "error", err)
	}
	s.rebuildTools()

	if s.def.Hooks.OnLoad != nil {
		if err := s.def.Hooks.OnLoad(ctx, s.ctx); err != nil {
			return nil, err
		}
	}
	s.setState(StateLoaded)
	return ok(), nil
}

func (s *Server) handleUnload(ctx context.Context, raw json.RawMessage) (any, error) {
	if s.def.Hooks.OnUnload != nil {
		if err := s.def.Hooks.OnUnload(ctx, s.ctx); err != nil {
			return nil, err
		}
	}
	s.triggers.Clear()
	s.setState(StateUnloaded)
	return ok(), nil
}

func (s *Server) handleActivate(ctx context.Context, raw json.RawMessage) (any, error) {
	s.setState(StateActive)
	return ok(), nil
}

func (s *Server) handleDeactivate(ctx context.Context, raw json.RawMessage) (any, error) {
	s.setState(StateLoaded)
	return ok(), nil
}

type sessionParams struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleSessionStart(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodeParams[sessionParams](raw)
	if err != nil {
		return nil, err
	}
	if s.def.Hooks.OnSessionStart != nil {
		if err := s.def.Hooks.OnSessionStart(ctx, s.ctx, p.SessionID); err != nil {
			return nil, err
		}
	}
	return ok(), nil
}

func (s *Server) handleSessionEnd(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodeParams[sessionParams](raw)
	if err != nil {
		return nil, err
	}
	if s.def.Hooks.OnSessionEnd != nil {
		if err := s.def.Hooks.OnSessionEnd(ctx, s.ctx, p.SessionID); err != nil {
			return nil, err
		}
	}
	return ok(), nil
}

type messageParams struct {
	Message string `json:"message"`
}

func (s *Server) handleBeforeMessage(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodeParams[messageParams](raw)
	if err != nil {
		return nil, err
	}
	if s.def.Hooks.OnBeforeMessage == nil {
		return map[string]any{"message": nil}, nil
	}
	result, err := s.def.Hooks.OnBeforeMessage(ctx, s.ctx, p.Message)
	if err != nil {
		return nil, err
	}
	return map[string]any{"message": result}, nil
}

type responseParams struct {
	Response string `json:"response"`
}

func (s *Server) handleAfterResponse(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := decodeParams[responseParams](raw)
	if err != nil {
		return nil, err
	}
	if s.def.Hooks.OnAfterResponse == nil {
		return map[string]any{"response": nil}, nil
	}
	result, err := s.def.Hooks.OnAfterResponse(ctx, s.ctx, p.Response)
	if err != nil {
		return nil, err
	}
	return map[string]any{"response": result}, nil
}

func (s *Server) handleTick(ctx context.Context, raw json.RawMessage) (any, error) {
	if s.def.Hooks.OnTick != nil {
		if err := s.def.Hooks.OnTick(ctx, s.ctx); err != nil {
			return nil, err
		}
	}
	return ok(), nil
}

func (s *Server) handleStatus(ctx context.Context, raw json.RawMessage) (any, error) {
	if s.def.Hooks.OnStatus == nil {
		return nil, fmt.Errorf("skill must implement on_status hook")
	}
	status, err := s.def.Hooks.OnStatus(ctx, s.ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": status}, nil
}

func (s *Server) handleShutdown(ctx context.Context, raw json.RawMessage) (any, error) {
	go func() {
		time.Sleep(100 * time.Millisecond)
		os.Exit(0)
	}()
	return ok(), nil
}

func (s *Server) handleDisconnect(ctx context.Context, raw json.RawMessage) (any, error) {
	if !s.def.HasDisconnect || s.def.Hooks.OnDisconnect == nil {
		return nil, fmt.Errorf("skill does not support disconnect")
	}
	if err := s.def.Hooks.OnDisconnect(ctx, s.ctx); err != nil {
		return nil, err
	}
	return ok(), nil
}
