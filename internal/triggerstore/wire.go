package triggerstore

import "github.com/haasonsaas/skillrt/pkg/skillsdk"

// persistedTrigger is the on-disk shape of triggers.json: snake_case
// created_at. This differs deliberately from the wire shape below.
type persistedTrigger struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Conditions  []*skillsdk.Condition  `json:"conditions"`
	Config      map[string]any         `json:"config"`
	Enabled     bool                   `json:"enabled"`
	CreatedAt   string                 `json:"created_at"`
	Metadata    map[string]any         `json:"metadata"`
}

func toPersisted(t *skillsdk.TriggerInstance) persistedTrigger {
	return persistedTrigger{
		ID:          t.ID,
		Type:        t.Type,
		Name:        t.Name,
		Description: t.Description,
		Conditions:  t.Conditions,
		Config:      t.Config,
		Enabled:     t.Enabled,
		CreatedAt:   t.CreatedAt,
		Metadata:    t.Metadata,
	}
}

func fromPersisted(p persistedTrigger) *skillsdk.TriggerInstance {
	return &skillsdk.TriggerInstance{
		ID:          p.ID,
		Type:        p.Type,
		Name:        p.Name,
		Description: p.Description,
		Conditions:  p.Conditions,
		Config:      p.Config,
		Enabled:     p.Enabled,
		CreatedAt:   p.CreatedAt,
		Metadata:    p.Metadata,
	}
}

// WireTrigger is the JSON-RPC wire shape: camelCase createdAt.
type WireTrigger struct {
	ID          string                `json:"id"`
	Type        string                `json:"type"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Conditions  []*skillsdk.Condition `json:"conditions"`
	Config      map[string]any        `json:"config"`
	Enabled     bool                  `json:"enabled"`
	CreatedAt   string                `json:"createdAt"`
	Metadata    map[string]any        `json:"metadata"`
}

// ToWire converts a trigger instance to its wire representation.
func ToWire(t *skillsdk.TriggerInstance) WireTrigger {
	return WireTrigger{
		ID:          t.ID,
		Type:        t.Type,
		Name:        t.Name,
		Description: t.Description,
		Conditions:  t.Conditions,
		Config:      t.Config,
		Enabled:     t.Enabled,
		CreatedAt:   t.CreatedAt,
		Metadata:    t.Metadata,
	}
}
