// Package skillsdk defines the data model a skill is built from: tools,
// options, trigger schemas, and the lifecycle hooks the runtime invokes.
package skillsdk

import "context"

// Definition is the immutable description of a skill, supplied by the
// user's code at process start. It is never mutated after construction.
type Definition struct {
	Name         string
	Description  string
	Version      string
	Tools        []ToolDefinition
	TickInterval int // milliseconds, 0 means no periodic tick, else >=1000
	HasSetup     bool
	HasDisconnect bool
	Hooks        Hooks
	Options      []OptionDefinition
	TriggerSchema *TriggerSchema
}

// ToolDefinition describes one AI-callable tool.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON-Schema object, type: "object"
	Execute     ToolExecutor
}

// ToolExecutor runs a tool call and produces its result. c gives the
// tool the same façade access a hook gets (read_data/write_data,
// state, triggers, entities, memory).
type ToolExecutor func(ctx context.Context, c *Context, args map[string]any) (ToolResult, error)

// ToolResult is what a tool call returns to the language model.
type ToolResult struct {
	Content string
	IsError bool
}

// OptionType enumerates the supported option value kinds.
type OptionType string

const (
	OptionBoolean OptionType = "boolean"
	OptionNumber  OptionType = "number"
	OptionText    OptionType = "text"
	OptionSelect  OptionType = "select"
)

// OptionDefinition describes one user-configurable, persisted setting.
type OptionDefinition struct {
	Name        string     `json:"name"`
	Type        OptionType `json:"type"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	Default     any        `json:"default,omitempty"`
	Options     []string   `json:"options,omitempty"`    // only meaningful when Type == OptionSelect
	Group       string     `json:"group,omitempty"`
	ToolFilter  []string   `json:"toolFilter,omitempty"` // only meaningful on boolean options
}

// Hooks bundles the optional lifecycle handlers a skill may implement.
// A nil field means the skill does not implement that hook.
type Hooks struct {
	OnLoad          func(ctx context.Context, c *Context) error
	OnUnload        func(ctx context.Context, c *Context) error
	OnSessionStart  func(ctx context.Context, c *Context, sessionID string) error
	OnSessionEnd    func(ctx context.Context, c *Context, sessionID string) error
	OnBeforeMessage func(ctx context.Context, c *Context, message string) (*string, error)
	OnAfterResponse func(ctx context.Context, c *Context, response string) (*string, error)
	OnTick          func(ctx context.Context, c *Context) error
	OnStatus        func(ctx context.Context, c *Context) (map[string]any, error)
	OnDisconnect    func(ctx context.Context, c *Context) error
	OnOptionsChange func(ctx context.Context, c *Context, options map[string]any) error
	OnTriggerRegister func(ctx context.Context, c *Context, t *TriggerInstance) error
	OnTriggerRemove   func(ctx context.Context, c *Context, t *TriggerInstance) error
	OnSetupStart    func(ctx context.Context, c *Context) (*SetupStep, error)
	OnSetupSubmit   func(ctx context.Context, c *Context, stepID string, values map[string]any) (*SetupResult, error)
	OnSetupCancel   func(ctx context.Context, c *Context) error
}
