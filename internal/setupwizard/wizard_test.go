package setupwizard

import (
	"context"
	"testing"

	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

func TestHappyPath(t *testing.T) {
	w := New(Handlers{
		Start: func(ctx context.Context) (*skillsdk.SetupStep, error) {
			return &skillsdk.SetupStep{ID: "a", Fields: []skillsdk.SetupField{{Name: "x", Required: true}}}, nil
		},
		Submit: func(ctx context.Context, stepID string, values map[string]any) (*skillsdk.SetupResult, error) {
			if stepID != "a" || values["x"] != "v" {
				t.Fatalf("unexpected submit: %s %v", stepID, values)
			}
			return &skillsdk.SetupResult{Status: skillsdk.SetupComplete, Message: "ok"}, nil
		},
	})

	step, err := w.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if step.ID != "a" {
		t.Fatalf("unexpected step: %+v", step)
	}

	result, err := w.Submit(context.Background(), "a", map[string]any{"x": "v"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Status != skillsdk.SetupComplete {
		t.Fatalf("expected complete, got %s", result.Status)
	}

	if _, err := w.Submit(context.Background(), "a", nil); err == nil {
		t.Fatal("expected submit after completion to fail with no active session")
	}
}

func TestSecondStartResetsPriorSession(t *testing.T) {
	calls := 0
	w := New(Handlers{
		Start: func(ctx context.Context) (*skillsdk.SetupStep, error) {
			calls++
			return &skillsdk.SetupStep{ID: "a"}, nil
		},
		Submit: func(ctx context.Context, stepID string, values map[string]any) (*skillsdk.SetupResult, error) {
			return &skillsdk.SetupResult{Status: skillsdk.SetupNext, Next: &skillsdk.SetupStep{ID: "b"}}, nil
		},
	})

	if _, err := w.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := w.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected Start handler invoked twice, got %d", calls)
	}
	// Session from the second Start is still active.
	if _, err := w.Submit(context.Background(), "a", nil); err != nil {
		t.Fatalf("expected submit to succeed against the reset session: %v", err)
	}
}

func TestSubmitWithoutStartFails(t *testing.T) {
	w := New(Handlers{
		Start:  func(ctx context.Context) (*skillsdk.SetupStep, error) { return &skillsdk.SetupStep{}, nil },
		Submit: func(ctx context.Context, stepID string, values map[string]any) (*skillsdk.SetupResult, error) { return nil, nil },
	})
	if _, err := w.Submit(context.Background(), "a", nil); err == nil {
		t.Fatal("expected submit without a prior start to fail")
	}
}

func TestStartRequiresStartHandler(t *testing.T) {
	w := New(Handlers{})
	if _, err := w.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail when the skill has no setup handler")
	}
}
