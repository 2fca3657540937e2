package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/haasonsaas/skillrt/internal/hoststore"
	"github.com/haasonsaas/skillrt/internal/obs"
)

func runHost(ctx context.Context, cfg *Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := obs.NewLogger(os.Stderr)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := hoststore.Open(filepath.Join(cfg.DataDir, "hostsim.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	metrics := obs.NewMetrics(reg)
	serveMetrics(cfg.MetricsAddr, reg, log)

	if cfg.OTLPEndpoint != "" {
		tp, err := obs.NewTracerProvider(ctx, cfg.OTLPEndpoint, "skillrt-hostsim")
		if err != nil {
			log.Warn("tracing disabled", "error", err)
		} else {
			defer tp.Shutdown(ctx)
		}
	}

	bridge := newTriggerBridge(log)
	serveWebSocket(cfg.WebSocketAddr, bridge, log)

	if watcher, err := watchDataDir(cfg.DataDir, log); err == nil {
		defer watcher.Close()
	}

	sup, err := NewSupervisor(cfg, store, metrics, log)
	if err != nil {
		return err
	}
	sup.onTriggerFired = bridge.broadcast

	runErr := make(chan error, 1)
	go func() { runErr <- sup.Run(ctx) }()

	if _, err := sup.Call(ctx, "skill/load", map[string]any{
		"manifest": map[string]any{},
		"dataDir":  cfg.DataDir,
	}); err != nil {
		return fmt.Errorf("skill/load: %w", err)
	}
	if _, err := sup.Call(ctx, "skill/activate", nil); err != nil {
		return fmt.Errorf("skill/activate: %w", err)
	}
	log.Info("skill loaded and active", "skill", cfg.Skill)

	var ticker *time.Ticker
	var tickC <-chan time.Time
	if cfg.TickInterval > 0 {
		ticker = time.NewTicker(time.Duration(cfg.TickInterval) * time.Millisecond)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace+time.Second)
			defer cancel()
			return sup.Shutdown(shutCtx)
		case err := <-runErr:
			return err
		case <-tickC:
			if _, err := sup.Call(ctx, "skill/tick", nil); err != nil {
				log.Warn("tick failed", "error", err)
			}
		}
	}
}

// replayHost loads the skill then feeds it a recorded sequence of
// before-message events from a newline-delimited JSON file, useful for
// exercising trigger matching and hook behavior against real transcripts
// without a live host attached.
func replayHost(ctx context.Context, cfg *Config, eventsPath string) error {
	log := obs.NewLogger(os.Stderr)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := hoststore.Open(filepath.Join(cfg.DataDir, "hostsim.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	metrics := obs.NewMetrics(reg)

	sup, err := NewSupervisor(cfg, store, metrics, log)
	if err != nil {
		return err
	}
	go func() { _ = sup.Run(ctx) }()

	if _, err := sup.Call(ctx, "skill/load", map[string]any{
		"manifest": map[string]any{},
		"dataDir":  cfg.DataDir,
	}); err != nil {
		return fmt.Errorf("skill/load: %w", err)
	}
	if _, err := sup.Call(ctx, "skill/activate", nil); err != nil {
		return fmt.Errorf("skill/activate: %w", err)
	}

	f, err := os.Open(eventsPath)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	var replayLogger = func(format string, args ...any) { log.Info(fmt.Sprintf(format, args...)) }

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var evt struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			replayLogger("skipping malformed event line: %v", err)
			continue
		}
		if _, err := sup.Call(ctx, "skill/beforeMessage", map[string]any{"message": evt.Message}); err != nil {
			replayLogger("beforeMessage failed: %v", err)
		}
	}
	return scanner.Err()
}
