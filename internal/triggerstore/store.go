// Package triggerstore is the in-memory trigger registry: CRUD,
// persistence, and rate-limited event matching.
package triggerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haasonsaas/skillrt/internal/condition"
	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

const persistFile = "triggers.json"

// Cooldown is the minimum interval between successive fires of the same
// trigger.
const Cooldown = 5 * time.Second

// Persister is the subset of the reverse-RPC façade the store needs.
type Persister interface {
	ReadData(ctx context.Context, name string) (string, error)
	WriteData(ctx context.Context, name, content string) error
}

// Logger receives warn-only diagnostics (unknown trigger type on load,
// unknown condition field on create/update).
type Logger interface {
	Log(message string)
}

// RegisterHook is invoked for every trigger that becomes registered,
// whether freshly created or rehydrated from persistence.
type RegisterHook func(ctx context.Context, t *skillsdk.TriggerInstance)

// RemoveHook is invoked for every deleted trigger.
type RemoveHook func(ctx context.Context, t *skillsdk.TriggerInstance)

// Store holds the full set of trigger instances for one skill process.
type Store struct {
	mu        sync.Mutex
	schema    *skillsdk.TriggerSchema
	triggers  map[string]*skillsdk.TriggerInstance
	lastFired map[string]time.Time

	OnRegister RegisterHook
	OnRemove   RemoveHook
}

// New builds an empty store for the given (optional) trigger schema.
func New(schema *skillsdk.TriggerSchema) *Store {
	return &Store{
		schema:    schema,
		triggers:  make(map[string]*skillsdk.TriggerInstance),
		lastFired: make(map[string]time.Time),
	}
}

func (s *Store) typeDef(typeName string) (skillsdk.TriggerTypeDefinition, bool) {
	if s.schema == nil {
		return skillsdk.TriggerTypeDefinition{}, false
	}
	for _, td := range s.schema.TriggerTypes {
		if td.Type == typeName {
			return td, true
		}
	}
	return skillsdk.TriggerTypeDefinition{}, false
}

func (s *Store) validFields(typeName string) map[string]bool {
	td, ok := s.typeDef(typeName)
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(td.ConditionFields))
	for _, f := range td.ConditionFields {
		out[f.Name] = true
	}
	return out
}

// CreateRequest carries the fields a caller may set when creating a
// trigger.
type CreateRequest struct {
	Type        string                `json:"type"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Conditions  []*skillsdk.Condition `json:"conditions"`
	Config      map[string]any        `json:"config,omitempty"`
	Enabled     *bool                 `json:"enabled,omitempty"`
	Metadata    map[string]any        `json:"metadata,omitempty"`
}

// Create validates and stores a new trigger, persists the registry, and
// invokes OnRegister.
func (s *Store) Create(ctx context.Context, p Persister, log Logger, req CreateRequest) (*skillsdk.TriggerInstance, error) {
	if req.Type == "" {
		return nil, fmt.Errorf("trigger type is required")
	}
	if req.Name == "" {
		return nil, fmt.Errorf("trigger name is required")
	}
	if len(req.Conditions) == 0 {
		return nil, fmt.Errorf("trigger conditions must not be empty")
	}
	if s.schema != nil {
		if _, ok := s.typeDef(req.Type); !ok {
			return nil, fmt.Errorf("unknown trigger type: %s", req.Type)
		}
	}
	if err := validateConditions(req.Conditions); err != nil {
		return nil, err
	}
	if log != nil {
		warnUnknownFields(log, req.Type, req.Conditions, s.validFields(req.Type))
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	t := &skillsdk.TriggerInstance{
		ID:          uuid.NewString(),
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		Conditions:  req.Conditions,
		Config:      req.Config,
		Enabled:     enabled,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    req.Metadata,
	}

	s.mu.Lock()
	s.triggers[t.ID] = t
	s.mu.Unlock()

	if err := s.persist(ctx, p); err != nil {
		return nil, err
	}
	if s.OnRegister != nil {
		s.OnRegister(ctx, t)
	}
	return t, nil
}

// UpdatePatch carries the optional fields a caller may change. A nil
// field leaves the existing value untouched.
type UpdatePatch struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Config      map[string]any        `json:"config,omitempty"`
	Enabled     *bool                 `json:"enabled,omitempty"`
	Metadata    map[string]any        `json:"metadata,omitempty"`
	Conditions  []*skillsdk.Condition `json:"conditions,omitempty"`
}

// Update merges patch onto the existing trigger id, re-validating
// conditions against the trigger's existing (immutable) type if
// supplied.
func (s *Store) Update(ctx context.Context, p Persister, log Logger, id string, patch UpdatePatch) (*skillsdk.TriggerInstance, error) {
	s.mu.Lock()
	existing, ok := s.triggers[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown trigger: %s", id)
	}

	conditions := existing.Conditions
	if patch.Conditions != nil {
		if len(patch.Conditions) == 0 {
			return nil, fmt.Errorf("trigger conditions must not be empty")
		}
		if err := validateConditions(patch.Conditions); err != nil {
			return nil, err
		}
		if log != nil {
			warnUnknownFields(log, existing.Type, patch.Conditions, s.validFields(existing.Type))
		}
		conditions = patch.Conditions
	}

	updated := &skillsdk.TriggerInstance{
		ID:          existing.ID,
		Type:        existing.Type,
		Name:        existing.Name,
		Description: existing.Description,
		Conditions:  conditions,
		Config:      existing.Config,
		Enabled:     existing.Enabled,
		CreatedAt:   existing.CreatedAt,
		Metadata:    existing.Metadata,
	}
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Config != nil {
		updated.Config = patch.Config
	}
	if patch.Enabled != nil {
		updated.Enabled = *patch.Enabled
	}
	if patch.Metadata != nil {
		updated.Metadata = patch.Metadata
	}

	s.mu.Lock()
	s.triggers[id] = updated
	s.mu.Unlock()

	if err := s.persist(ctx, p); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a trigger, persists, and invokes OnRemove. Deleting an
// already-deleted id fails with "unknown trigger".
func (s *Store) Delete(ctx context.Context, p Persister, id string) error {
	s.mu.Lock()
	t, ok := s.triggers[id]
	if ok {
		delete(s.triggers, id)
		delete(s.lastFired, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown trigger: %s", id)
	}
	if err := s.persist(ctx, p); err != nil {
		return err
	}
	if s.OnRemove != nil {
		s.OnRemove(ctx, t)
	}
	return nil
}

// Get returns one trigger by id.
func (s *Store) Get(id string) (*skillsdk.TriggerInstance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[id]
	return t, ok
}

// List returns every trigger instance, order unspecified.
func (s *Store) List() []*skillsdk.TriggerInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*skillsdk.TriggerInstance, 0, len(s.triggers))
	for _, t := range s.triggers {
		out = append(out, t)
	}
	return out
}

// Types returns the declared trigger types, or an empty slice if the
// skill declared no trigger schema.
func (s *Store) Types() []skillsdk.TriggerTypeDefinition {
	if s.schema == nil {
		return nil
	}
	return s.schema.TriggerTypes
}

// Clear empties the registry without persisting. Used on skill/unload.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers = make(map[string]*skillsdk.TriggerInstance)
	s.lastFired = make(map[string]time.Time)
}

func validateConditions(conds []*skillsdk.Condition) error {
	for _, c := range conds {
		if err := condition.ValidateDepth(c); err != nil {
			return err
		}
		if err := condition.ValidateRegex(c); err != nil {
			return err
		}
	}
	return nil
}

func warnUnknownFields(log Logger, typeName string, conds []*skillsdk.Condition, valid map[string]bool) {
	if len(valid) == 0 {
		return
	}
	for _, c := range conds {
		for _, field := range condition.CheckFields(c, valid) {
			log.Log(fmt.Sprintf("trigger type %s: condition references undeclared field %s", typeName, field))
		}
	}
}

func (s *Store) persist(ctx context.Context, p Persister) error {
	if p == nil {
		return nil
	}
	s.mu.Lock()
	records := make([]persistedTrigger, 0, len(s.triggers))
	for _, t := range s.triggers {
		records = append(records, toPersisted(t))
	}
	s.mu.Unlock()

	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return p.WriteData(ctx, persistFile, string(payload))
}

// Load reads triggers.json and rehydrates the registry. Entries whose
// type is no longer declared are still loaded, with a warning logged —
// soft-compat, matching the runtime's policy of never discarding
// persisted user data over a schema change.
func (s *Store) Load(ctx context.Context, p Persister, log Logger) error {
	if p == nil {
		return nil
	}
	raw, err := p.ReadData(ctx, persistFile)
	if err != nil || raw == "" {
		return nil
	}
	var records []persistedTrigger
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil
	}

	s.mu.Lock()
	for _, r := range records {
		t := fromPersisted(r)
		s.triggers[t.ID] = t
	}
	loaded := make([]*skillsdk.TriggerInstance, 0, len(records))
	for _, r := range records {
		loaded = append(loaded, s.triggers[r.ID])
	}
	s.mu.Unlock()

	for _, t := range loaded {
		if s.schema != nil {
			if _, ok := s.typeDef(t.Type); !ok && log != nil {
				log.Log(fmt.Sprintf("loaded trigger %s has undeclared type %s", t.ID, t.Type))
			}
		}
		if s.OnRegister != nil {
			s.OnRegister(ctx, t)
		}
	}
	return nil
}
