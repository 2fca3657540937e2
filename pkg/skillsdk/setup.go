package skillsdk

// SetupFieldType enumerates the input kinds a setup field may use.
type SetupFieldType string

const (
	SetupText        SetupFieldType = "text"
	SetupPassword    SetupFieldType = "password"
	SetupNumber      SetupFieldType = "number"
	SetupBoolean     SetupFieldType = "boolean"
	SetupSelect      SetupFieldType = "select"
	SetupMultiselect SetupFieldType = "multiselect"
)

// SetupField describes one input on a setup step. The runtime never
// interprets field semantics beyond serializing and deserializing them.
type SetupField struct {
	Name        string         `json:"name"`
	Type        SetupFieldType `json:"type"`
	Label       string         `json:"label"`
	Description string         `json:"description,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Default     any            `json:"default,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []string       `json:"options,omitempty"`
}

// SetupStep is one page of the setup wizard.
type SetupStep struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Fields      []SetupField `json:"fields"`
}

// SetupStatus enumerates the outcomes of a setup/submit call.
type SetupStatus string

const (
	SetupNext     SetupStatus = "next"
	SetupComplete SetupStatus = "complete"
	SetupError    SetupStatus = "error"
)

// FieldError reports a validation failure for one submitted field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SetupResult is returned by setup/submit.
type SetupResult struct {
	Status  SetupStatus   `json:"status"`
	Next    *SetupStep    `json:"nextStep,omitempty"`
	Errors  []FieldError  `json:"errors,omitempty"`
	Message string        `json:"message,omitempty"`
}
