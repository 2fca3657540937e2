// Package runtime implements the skill lifecycle state machine and the
// skill façade, wiring the frame codec, reverse-RPC client, dispatch
// router, option store, trigger store, and setup wizard into one
// process-wide server.
package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/haasonsaas/skillrt/internal/dispatch"
	"github.com/haasonsaas/skillrt/internal/frame"
	"github.com/haasonsaas/skillrt/internal/obs"
	"github.com/haasonsaas/skillrt/internal/optionstore"
	"github.com/haasonsaas/skillrt/internal/reverse"
	"github.com/haasonsaas/skillrt/internal/setupwizard"
	"github.com/haasonsaas/skillrt/internal/triggerstore"
	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

// State is the skill's lifecycle position.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoaded   State = "loaded"
	StateActive   State = "active"
)

// Server is the single process-wide skill host. There is exactly one
// skill, one trigger registry, and one option store per process.
type Server struct {
	def *skillsdk.Definition

	reader  *frame.Reader
	writer  *frame.Writer
	rpc     *reverse.Client
	router  *dispatch.Router
	wizard  *setupwizard.Wizard
	options *optionstore.Store
	triggers *triggerstore.Store

	logOut  io.Writer
	log     *slog.Logger
	metrics *obs.Metrics

	mu       sync.Mutex
	state    State
	dataDir  string
	manifest map[string]any
	tools    map[string]skillsdk.ToolDefinition
	ctx      *skillsdk.Context
}

// New builds a server for def, reading frames from r and writing to w.
// logOut (conventionally stderr) receives the `[skill] `-prefixed lines
// written by the façade's Log and the runtime's own slog text lines,
// which carry no `[skill] ` prefix.
func New(def *skillsdk.Definition, r io.Reader, w io.Writer, logOut io.Writer, metrics *obs.Metrics) *Server {
	writer := frame.NewWriter(w)
	s := &Server{
		def:      def,
		reader:   frame.NewReader(r),
		writer:   writer,
		rpc:      reverse.NewClient(writer),
		router:   dispatch.NewRouter(),
		options:  optionstore.New(def.Options),
		triggers: triggerstore.New(def.TriggerSchema),
		logOut:   logOut,
		log:      obs.NewLogger(logOut),
		metrics:  metrics,
		state:    StateUnloaded,
		tools:    make(map[string]skillsdk.ToolDefinition),
	}
	s.ctx = skillsdk.NewContext(s)
	s.triggers.OnRegister = func(ctx context.Context, t *skillsdk.TriggerInstance) {
		if def.Hooks.OnTriggerRegister != nil {
			if err := def.Hooks.OnTriggerRegister(ctx, s.ctx, t); err != nil {
				s.log.Warn("on_trigger_register failed", "trigger", t.ID, "error", err)
			}
		}
	}
	s.triggers.OnRemove = func(ctx context.Context, t *skillsdk.TriggerInstance) {
		if def.Hooks.OnTriggerRemove != nil {
			if err := def.Hooks.OnTriggerRemove(ctx, s.ctx, t); err != nil {
				s.log.Warn("on_trigger_remove failed", "trigger", t.ID, "error", err)
			}
		}
	}
	s.wizard = setupwizard.New(setupwizard.Handlers{
		Start: func(ctx context.Context) (*skillsdk.SetupStep, error) {
			return def.Hooks.OnSetupStart(ctx, s.ctx)
		},
		Submit: func(ctx context.Context, stepID string, values map[string]any) (*skillsdk.SetupResult, error) {
			return def.Hooks.OnSetupSubmit(ctx, s.ctx, stepID, values)
		},
		Cancel: func(ctx context.Context) error {
			if def.Hooks.OnSetupCancel == nil {
				return nil
			}
			return def.Hooks.OnSetupCancel(ctx, s.ctx)
		},
	})
	if def.HasSetup && def.Hooks.OnSetupStart == nil {
		s.log.Warn("skill declares has_setup but implements no setup hooks")
	}

	s.registerHandlers()
	return s
}

// Run drives the read loop until the stream closes or the context is
// cancelled. Malformed frames are logged and skipped; reverse-RPC
// replies are handled inline; everything else is dispatched on its own
// goroutine so a slow handler never blocks reply correlation.
func (s *Server) Run(ctx context.Context) error {
	for {
		msg, err := s.reader.Read()
		if err != nil {
			if errors.Is(err, frame.ErrMalformed) {
				s.log.Warn("malformed frame, skipping", "error", err)
				continue
			}
			return err
		}
		if msg.IsReply() {
			if !s.rpc.HandleReply(msg) {
				s.log.Warn("reverse rpc reply with no matching pending call")
			}
			continue
		}
		go dispatch.Dispatch(ctx, s.router, s.writer, msg, func(method string, err error) {
			s.log.Error("notification handler failed", "method", method, "error", err)
			if s.metrics != nil {
				s.metrics.ObserveDispatchError(method)
			}
		})
	}
}

func (s *Server) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

func (s *Server) currentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func decodeParams[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("invalid params: %w", err)
	}
	return v, nil
}
