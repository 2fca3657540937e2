package skillsdk

import "context"

// Memory is the skill's flat key/value scratch namespace. In the
// runtime, Read and Write are routed to the host's data/* reverse RPC
// the same way read_data/write_data are; Search, List, and Delete make
// no host call and return empty results.
type Memory interface {
	Read(ctx context.Context, key string) (string, error)
	Write(ctx context.Context, key, value string) error
	Search(ctx context.Context, query string) ([]string, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// Facade is implemented by the runtime and backs every method Context
// exposes to skill code. Kept as an interface so pkg/skillsdk has no
// dependency on internal/runtime or internal/reverse.
type Facade interface {
	DataDir() string
	ReadData(ctx context.Context, name string) (string, error)
	WriteData(ctx context.Context, name, content string) error
	Log(message string)
	GetState(ctx context.Context) (map[string]any, error)
	SetState(ctx context.Context, partial map[string]any) error
	EmitEvent(ctx context.Context, name string, data map[string]any) error
	UpsertEntity(ctx context.Context, entity map[string]any) (map[string]any, error)
	UpsertRelationship(ctx context.Context, rel map[string]any) (map[string]any, error)
	SearchEntities(ctx context.Context, query map[string]any) ([]map[string]any, error)
	GetRelationships(ctx context.Context, query map[string]any) ([]map[string]any, error)
	GetOptions(ctx context.Context) map[string]any
	FireTrigger(ctx context.Context, triggerID string, matchedData map[string]any, extra map[string]any) error
	GetTriggers(ctx context.Context) []*TriggerInstance
	RequestSummarization(ctx context.Context, messages []map[string]any, chats []map[string]any, currentUser *string) (map[string]any, error)
	Memory() Memory
}

// Context is the object passed to every skill hook and tool executor.
type Context struct {
	facade Facade
}

// NewContext wraps a Facade implementation for skill-code consumption.
func NewContext(f Facade) *Context {
	return &Context{facade: f}
}

func (c *Context) DataDir() string { return c.facade.DataDir() }

func (c *Context) ReadData(ctx context.Context, name string) (string, error) {
	return c.facade.ReadData(ctx, name)
}

func (c *Context) WriteData(ctx context.Context, name, content string) error {
	return c.facade.WriteData(ctx, name, content)
}

func (c *Context) Log(message string) { c.facade.Log(message) }

func (c *Context) GetState(ctx context.Context) (map[string]any, error) {
	return c.facade.GetState(ctx)
}

func (c *Context) SetState(ctx context.Context, partial map[string]any) error {
	return c.facade.SetState(ctx, partial)
}

func (c *Context) EmitEvent(ctx context.Context, name string, data map[string]any) error {
	return c.facade.EmitEvent(ctx, name, data)
}

func (c *Context) UpsertEntity(ctx context.Context, entity map[string]any) (map[string]any, error) {
	return c.facade.UpsertEntity(ctx, entity)
}

func (c *Context) UpsertRelationship(ctx context.Context, rel map[string]any) (map[string]any, error) {
	return c.facade.UpsertRelationship(ctx, rel)
}

func (c *Context) SearchEntities(ctx context.Context, query map[string]any) ([]map[string]any, error) {
	return c.facade.SearchEntities(ctx, query)
}

func (c *Context) GetRelationships(ctx context.Context, query map[string]any) ([]map[string]any, error) {
	return c.facade.GetRelationships(ctx, query)
}

func (c *Context) GetOptions(ctx context.Context) map[string]any { return c.facade.GetOptions(ctx) }

func (c *Context) FireTrigger(ctx context.Context, triggerID string, matchedData, extra map[string]any) error {
	return c.facade.FireTrigger(ctx, triggerID, matchedData, extra)
}

func (c *Context) GetTriggers(ctx context.Context) []*TriggerInstance {
	return c.facade.GetTriggers(ctx)
}

func (c *Context) RequestSummarization(ctx context.Context, messages, chats []map[string]any, currentUser *string) (map[string]any, error) {
	return c.facade.RequestSummarization(ctx, messages, chats, currentUser)
}

func (c *Context) Memory() Memory { return c.facade.Memory() }
