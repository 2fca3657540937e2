// Package setupwizard implements the two-method setup protocol: one
// process-wide wizard session at a time, reset on every start.
package setupwizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/haasonsaas/skillrt/pkg/skillsdk"
)

// Handlers are the skill-supplied callbacks driving the wizard. Start
// and Submit must be present for the wizard to be usable; Cancel is
// optional. The runtime's setup/* handlers check HasSetup before
// calling in.
type Handlers struct {
	Start  func(ctx context.Context) (*skillsdk.SetupStep, error)
	Submit func(ctx context.Context, stepID string, values map[string]any) (*skillsdk.SetupResult, error)
	Cancel func(ctx context.Context) error
}

// Wizard tracks whether a setup session is currently open. There is at
// most one per process; Start always discards any prior session.
type Wizard struct {
	handlers Handlers

	mu     sync.Mutex
	active bool
}

// New builds a wizard around the skill's setup handlers.
func New(h Handlers) *Wizard {
	return &Wizard{handlers: h}
}

// Start begins a new session, unconditionally discarding any session
// already in progress — "wizard state is reset on every setup/start".
func (w *Wizard) Start(ctx context.Context) (*skillsdk.SetupStep, error) {
	if w.handlers.Start == nil {
		return nil, fmt.Errorf("skill does not implement setup")
	}
	w.mu.Lock()
	w.active = true
	w.mu.Unlock()

	step, err := w.handlers.Start(ctx)
	if err != nil {
		w.mu.Lock()
		w.active = false
		w.mu.Unlock()
		return nil, err
	}
	return step, nil
}

// Submit forwards a step's values to the skill. It fails if no session
// is open.
func (w *Wizard) Submit(ctx context.Context, stepID string, values map[string]any) (*skillsdk.SetupResult, error) {
	w.mu.Lock()
	active := w.active
	w.mu.Unlock()
	if !active {
		return nil, fmt.Errorf("no setup session in progress")
	}

	result, err := w.handlers.Submit(ctx, stepID, values)
	if err != nil {
		return nil, err
	}
	if result.Status != skillsdk.SetupNext {
		w.mu.Lock()
		w.active = false
		w.mu.Unlock()
	}
	return result, nil
}

// Cancel terminates the current session.
func (w *Wizard) Cancel(ctx context.Context) error {
	w.mu.Lock()
	active := w.active
	w.active = false
	w.mu.Unlock()
	if !active {
		return fmt.Errorf("no setup session in progress")
	}
	if w.handlers.Cancel != nil {
		return w.handlers.Cancel(ctx)
	}
	return nil
}
