// Package optionstore holds a skill's typed, persisted option values and
// derives the set of tools they currently hide.
package optionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

const persistFile = "options.json"

// Persister is the subset of the reverse-RPC façade the store needs to
// load and save option values. Satisfied by internal/runtime's facade.
type Persister interface {
	ReadData(ctx context.Context, name string) (string, error)
	WriteData(ctx context.Context, name, content string) error
}

// Store holds the current value of every declared option.
type Store struct {
	mu      sync.Mutex
	defs    map[string]skillsdk.OptionDefinition
	order   []string
	values  map[string]any
}

// New builds a store from a skill's declared options, applying defaults.
func New(defs []skillsdk.OptionDefinition) *Store {
	s := &Store{
		defs:   make(map[string]skillsdk.OptionDefinition, len(defs)),
		values: make(map[string]any, len(defs)),
	}
	for _, d := range defs {
		s.defs[d.Name] = d
		s.order = append(s.order, d.Name)
		s.values[d.Name] = d.Default
	}
	return s
}

// Load reads options.json and merges any matching known keys over the
// defaults. Unknown keys in the persisted file are ignored. A missing
// or unreadable file is not an error — defaults remain in effect.
func (s *Store) Load(ctx context.Context, p Persister) error {
	raw, err := p.ReadData(ctx, persistFile)
	if err != nil || raw == "" {
		return nil
	}
	var persisted map[string]any
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, value := range persisted {
		if _, known := s.defs[name]; known {
			s.values[name] = value
		}
	}
	return nil
}

// Descriptor is the full wire representation of one option: its
// declaration plus its current value.
type Descriptor struct {
	skillsdk.OptionDefinition
	Value any `json:"value"`
}

// List returns every option's descriptor in declaration order.
func (s *Store) List() []Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Descriptor, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Descriptor{OptionDefinition: s.defs[name], Value: s.values[name]})
	}
	return out
}

// Snapshot returns a copy of the current name->value map.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Set validates and applies a new value for name, then persists. It
// returns an error for an unknown option name or a value that fails
// per-type validation.
func (s *Store) Set(ctx context.Context, p Persister, name string, value any) error {
	s.mu.Lock()
	def, ok := s.defs[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown option: %s", name)
	}
	validated, err := validate(def, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.values[name] = validated
	s.mu.Unlock()

	return s.persist(ctx, p)
}

// Reset restores every option to its declared default and persists.
// Calling Reset twice in a row is equivalent to once.
func (s *Store) Reset(ctx context.Context, p Persister) error {
	s.mu.Lock()
	for name, def := range s.defs {
		s.values[name] = def.Default
	}
	s.mu.Unlock()
	return s.persist(ctx, p)
}

func (s *Store) persist(ctx context.Context, p Persister) error {
	payload, err := json.Marshal(s.Snapshot())
	if err != nil {
		return err
	}
	return p.WriteData(ctx, persistFile, string(payload))
}

// VisibleTools returns the subset of allToolNames not hidden by any
// currently-false boolean option's ToolFilter.
func (s *Store) VisibleTools(allToolNames []string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	hidden := make(map[string]bool)
	for _, name := range s.order {
		def := s.defs[name]
		if def.Type != skillsdk.OptionBoolean {
			continue
		}
		if enabled, _ := s.values[name].(bool); enabled {
			continue
		}
		for _, tool := range def.ToolFilter {
			hidden[tool] = true
		}
	}

	visible := make(map[string]bool, len(allToolNames))
	for _, name := range allToolNames {
		if !hidden[name] {
			visible[name] = true
		}
	}
	return visible
}

func validate(def skillsdk.OptionDefinition, value any) (any, error) {
	switch def.Type {
	case skillsdk.OptionBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("option %s expects a boolean", def.Name)
		}
		return b, nil
	case skillsdk.OptionNumber:
		switch n := value.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		default:
			return nil, fmt.Errorf("option %s expects a number", def.Name)
		}
	case skillsdk.OptionText:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("option %s expects text", def.Name)
		}
		return str, nil
	case skillsdk.OptionSelect:
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("option %s expects one of its declared values", def.Name)
		}
		for _, allowed := range def.Options {
			if allowed == str {
				return str, nil
			}
		}
		return nil, fmt.Errorf("option %s: %q is not a declared value", def.Name, str)
	default:
		return nil, fmt.Errorf("option %s has unknown type %q", def.Name, def.Type)
	}
}
