package optionstore

import (
	"context"
	"testing"

	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

type memPersister struct {
	files map[string]string
}

func newMemPersister() *memPersister { return &memPersister{files: map[string]string{}} }

func (m *memPersister) ReadData(ctx context.Context, name string) (string, error) {
	return m.files[name], nil
}

func (m *memPersister) WriteData(ctx context.Context, name, content string) error {
	m.files[name] = content
	return nil
}

func defs() []skillsdk.OptionDefinition {
	return []skillsdk.OptionDefinition{
		{Name: "enable_read", Type: skillsdk.OptionBoolean, Default: true, ToolFilter: []string{"read"}},
		{Name: "mode", Type: skillsdk.OptionSelect, Default: "fast", Options: []string{"fast", "slow"}},
	}
}

func TestVisibleToolsDerivation(t *testing.T) {
	s := New(defs())
	p := newMemPersister()
	ctx := context.Background()

	visible := s.VisibleTools([]string{"send", "read"})
	if !visible["send"] || !visible["read"] {
		t.Fatalf("expected both tools visible by default, got %v", visible)
	}

	if err := s.Set(ctx, p, "enable_read", false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	visible = s.VisibleTools([]string{"send", "read"})
	if !visible["send"] {
		t.Fatal("send must remain visible")
	}
	if visible["read"] {
		t.Fatal("read must be hidden once enable_read is false")
	}
}

func TestSetRejectsWrongType(t *testing.T) {
	s := New(defs())
	if err := s.Set(context.Background(), newMemPersister(), "enable_read", "not a bool"); err == nil {
		t.Fatal("expected type validation error")
	}
}

func TestSetRejectsUndeclaredSelectValue(t *testing.T) {
	s := New(defs())
	if err := s.Set(context.Background(), newMemPersister(), "mode", "turbo"); err == nil {
		t.Fatal("expected rejection of undeclared select value")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	s := New(defs())
	p := newMemPersister()
	ctx := context.Background()
	_ = s.Set(ctx, p, "enable_read", false)
	_ = s.Reset(ctx, p)
	first := s.Snapshot()
	_ = s.Reset(ctx, p)
	second := s.Snapshot()
	if first["enable_read"] != second["enable_read"] {
		t.Fatal("reset twice should be equivalent to once")
	}
	if second["enable_read"] != true {
		t.Fatal("reset should restore the declared default")
	}
}

func TestLoadMergesOnlyKnownKeys(t *testing.T) {
	p := newMemPersister()
	p.files[persistFile] = `{"enable_read": false, "unknown_key": "x"}`
	s := New(defs())
	if err := s.Load(context.Background(), p); err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := s.Snapshot()
	if snap["enable_read"] != false {
		t.Fatalf("expected persisted value to win, got %v", snap["enable_read"])
	}
	if _, present := snap["unknown_key"]; present {
		t.Fatal("unknown persisted key must not appear")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	p := newMemPersister()
	ctx := context.Background()
	s := New(defs())
	if err := s.Set(ctx, p, "mode", "slow"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reloaded := New(defs())
	if err := reloaded.Load(ctx, p); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Snapshot()["mode"] != "slow" {
		t.Fatal("expected persisted value to survive a reload")
	}
}
