package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/haasonsaas/skillrt/internal/dispatch"
	"github.com/haasonsaas/skillrt/internal/frame"
	"github.com/haasonsaas/skillrt/internal/hoststore"
	"github.com/haasonsaas/skillrt/internal/obs"
	"github.com/haasonsaas/skillrt/internal/reverse"
)

// Supervisor spawns one skill subprocess and plays the host side of the
// wire protocol: it sends forward requests (skill/load, tools/list,
// skill/tick, ...) via rpc, and answers the skill's reverse-RPC calls
// (data/read, data/write, state/get, state/set, ...) from store.
type Supervisor struct {
	cfg     *Config
	store   *hoststore.Store
	metrics *obs.Metrics
	log     *slog.Logger

	cmd    *exec.Cmd
	rpc    *reverse.Client
	reader *frame.Reader
	router *dispatch.Router

	onTriggerFired func(payload map[string]any)
}

// NewSupervisor launches the configured skill binary and wires its
// reverse-RPC handlers. The skill is not yet loaded — send skill/load
// via Call.
func NewSupervisor(cfg *Config, store *hoststore.Store, metrics *obs.Metrics, log *slog.Logger) (*Supervisor, error) {
	cmd, stdin, stdout, err := spawnSkill(cfg)
	if err != nil {
		return nil, err
	}

	writer := frame.NewWriter(stdin)
	sup := &Supervisor{
		cfg:     cfg,
		store:   store,
		metrics: metrics,
		log:     log,
		cmd:     cmd,
		rpc:     reverse.NewClient(writer),
		reader:  frame.NewReader(stdout),
		router:  dispatch.NewRouter(),
	}
	sup.registerHostHandlers(writer)
	return sup, nil
}

func spawnSkill(cfg *Config) (*exec.Cmd, io.WriteCloser, io.ReadCloser, error) {
	if cfg.Isolation == "firecracker" {
		return spawnSkillFirecracker(cfg)
	}
	cmd := exec.Command(cfg.Skill)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, nil, fmt.Errorf("start skill %s: %w", cfg.Skill, err)
	}
	return cmd, stdin, stdout, nil
}

// registerHostHandlers wires the reverse-RPC methods a skill calls on
// the host: data/*, state/*, intelligence/*, entities/*, and the
// triggers/fired notification.
func (s *Supervisor) registerHostHandlers(w *frame.Writer) {
	s.router.Handle("data/read", s.handleDataRead)
	s.router.Handle("data/write", s.handleDataWrite)
	s.router.Handle("state/get", s.handleStateGet)
	s.router.Handle("state/set", s.handleStateSet)
	s.router.Handle("intelligence/emitEvent", s.handleEmitEvent)
	s.router.Handle("intelligence/summarize", s.handleSummarize)
	s.router.Handle("entities/upsert", s.handleEntitiesStub)
	s.router.Handle("entities/upsertRelationship", s.handleEntitiesStub)
	s.router.Handle("entities/search", s.handleEntitiesSearchStub)
	s.router.Handle("entities/getRelationships", s.handleEntitiesSearchStub)
	s.router.Handle("triggers/fired", s.handleTriggersFired)
}

// Run services the skill's stdout until it closes: reverse-RPC replies
// to our own forward calls are handled inline; everything else is
// dispatched through the host router and answered on the same writer.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		msg, err := s.reader.Read()
		if err != nil {
			return err
		}
		if msg.IsReply() {
			if !s.rpc.HandleReply(msg) {
				s.log.Warn("reply with no matching pending forward call")
			}
			continue
		}
		go dispatch.Dispatch(ctx, s.router, s.rpc.Writer(), msg, func(method string, err error) {
			s.log.Error("skill notification handler failed", "method", method, "error", err)
		})
	}
}

// Call sends a forward request to the skill and waits for its result.
func (s *Supervisor) Call(ctx context.Context, method string, params any) ([]byte, error) {
	start := time.Now()
	raw, err := s.rpc.Call(ctx, method, params, reverse.DefaultTimeout)
	if s.metrics != nil {
		s.metrics.ObserveReverseRPC(method, time.Since(start))
	}
	return raw, err
}

// Shutdown requests a graceful skill exit and kills the process if it
// does not exit within cfg.ShutdownGrace.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	_, _ = s.Call(ctx, "skill/shutdown", nil)
	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case <-done:
		return nil
	case <-time.After(s.cfg.ShutdownGrace):
		return s.cmd.Process.Kill()
	}
}
