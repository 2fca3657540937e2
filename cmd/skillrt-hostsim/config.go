package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes how skillrt-hostsim spawns and services one skill
// subprocess. It has no bearing on the runtime itself, which never
// reads configuration of its own (spec §6.3) — this is purely a
// reference host concern.
type Config struct {
	// Skill is the path to the skill binary to spawn.
	Skill string `yaml:"skill" jsonschema:"required,description=Path to the skill binary to spawn"`
	// DataDir is where skill_data/skill_state are persisted via SQLite.
	DataDir string `yaml:"dataDir" jsonschema:"description=Directory holding the host's SQLite database"`
	// SkillID namespaces persisted data when multiple skills share a host.
	SkillID string `yaml:"skillId" jsonschema:"description=Unique id for this skill instance"`
	// TickInterval overrides the skill's declared tick interval, in
	// milliseconds. Zero disables host-driven ticks; the skill's own
	// declared tick interval is not read.
	TickInterval int `yaml:"tickInterval,omitempty" jsonschema:"description=Override for the skill's tick interval in milliseconds"`
	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint. Empty disables it.
	MetricsAddr string `yaml:"metricsAddr,omitempty" jsonschema:"description=Listen address for the /metrics endpoint"`
	// WebSocketAddr is the listen address for the /ws observability
	// bridge relaying triggers/fired notifications. Empty disables it.
	WebSocketAddr string `yaml:"webSocketAddr,omitempty" jsonschema:"description=Listen address for the /ws trigger relay"`
	// Isolation selects how the skill subprocess is launched: "process"
	// (default, a bare exec.Cmd) or "firecracker" (a microVM tier that
	// this build cannot attach to the skill's stdio, so spawning fails).
	Isolation string `yaml:"isolation,omitempty" jsonschema:"enum=process,enum=firecracker,description=Subprocess isolation tier"`
	// OTLPEndpoint is the collector address for trace export. Empty
	// disables tracing.
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty" jsonschema:"description=OTLP gRPC collector endpoint for trace export"`
	// ShutdownGrace bounds how long the host waits for the skill to
	// exit after skill/shutdown before it kills the process.
	ShutdownGrace time.Duration `yaml:"shutdownGrace,omitempty" jsonschema:"description=Grace period for skill process exit after shutdown"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		DataDir:       "./skillrt-data",
		SkillID:       "default",
		MetricsAddr:   ":9090",
		Isolation:     "process",
		ShutdownGrace: 5 * time.Second,
	}
}

// LoadConfig reads and parses a YAML host-config file, filling in
// DefaultConfig's values for anything left unset.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Skill == "" {
		return nil, fmt.Errorf("config %s: skill path is required", path)
	}
	return cfg, nil
}
