package skillsdk

// ConditionType enumerates the leaf and compound condition node kinds.
type ConditionType string

const (
	ConditionRegex     ConditionType = "regex"
	ConditionKeyword   ConditionType = "keyword"
	ConditionThreshold ConditionType = "threshold"
	ConditionAnd       ConditionType = "and"
	ConditionOr        ConditionType = "or"
	ConditionNot       ConditionType = "not"
)

// MatchMode controls how a keyword condition combines its keyword list.
type MatchMode string

const (
	MatchAny MatchMode = "any"
	MatchAll MatchMode = "all"
)

// ThresholdOp enumerates the numeric comparison operators.
type ThresholdOp string

const (
	OpGT  ThresholdOp = "gt"
	OpLT  ThresholdOp = "lt"
	OpEQ  ThresholdOp = "eq"
	OpGTE ThresholdOp = "gte"
	OpLTE ThresholdOp = "lte"
	OpNEQ ThresholdOp = "neq"
)

// Condition is a recursive sum type: a leaf (regex/keyword/threshold) or
// a compound node (and/or/not). All fields are optional; which ones are
// meaningful is determined by Type. This mirrors the shape the wire
// protocol uses — validate at the boundary, not via a tagged union,
// since Go has no sum types.
type Condition struct {
	Type ConditionType `json:"type"`

	// regex
	Field   string `json:"field,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Flags   string `json:"flags,omitempty"`

	// keyword (also uses Field above)
	Keywords  []string  `json:"keywords,omitempty"`
	MatchMode MatchMode `json:"matchMode,omitempty"`

	// threshold (also uses Field above)
	Operator ThresholdOp `json:"operator,omitempty"`
	Value    *float64    `json:"value,omitempty"`

	// and / or / not
	Conditions []*Condition `json:"conditions,omitempty"`
}

// TriggerFieldSchema documents one dotted-path field a trigger type's
// conditions may reference.
type TriggerFieldSchema struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// TriggerTypeDefinition declares one kind of trigger a skill supports.
type TriggerTypeDefinition struct {
	Type           string               `json:"type"`
	Label          string               `json:"label"`
	Description    string               `json:"description"`
	ConditionFields []TriggerFieldSchema `json:"conditionFields"`
	ConfigSchema   map[string]any       `json:"configSchema"`
}

// TriggerSchema is the full set of trigger types a skill declares.
type TriggerSchema struct {
	TriggerTypes []TriggerTypeDefinition
}

// TriggerInstance is a user-created trigger, persisted across restarts.
type TriggerInstance struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Conditions  []*Condition   `json:"conditions"`
	Config      map[string]any `json:"config"`
	Enabled     bool           `json:"enabled"`
	CreatedAt   string         `json:"created_at"`
	Metadata    map[string]any `json:"metadata"`
}
