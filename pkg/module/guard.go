package module

import (
	"context"
	"fmt"
	"sync"

	"github.com/polocloud/polocloud/pkg/fault"
)

type state int

const (
	stateLoaded state = iota
	stateEnabled
	stateFailed
	stateDisabled
)

func (s state) String() string {
	switch s {
	case stateEnabled:
		return "enabled"
	case stateFailed:
		return "failed"
	case stateDisabled:
		return "disabled"
	}
	return "loaded"
}

// Guard enforces the lifecycle order of a module: one Enable, then one
// Disable. Panics in either hook are returned as errors.
type Guard struct {
	id     string
	module Module

	mu    sync.Mutex
	state state
}

// NewGuard wraps m.
func NewGuard(id string, m Module) *Guard {
	return &Guard{id: id, module: m}
}

// Enable calls Enable on the module once.
func (g *Guard) Enable(ctx context.Context, env *Environment) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != stateLoaded {
		return fault.ContractViolation(fmt.Sprintf("module %s enabled twice", g.id)).WithOperation("enable")
	}
	err := protect(g.id, "enable", func() error { return g.module.Enable(ctx, env) })
	if err != nil {
		g.state = stateFailed
		return err
	}
	g.state = stateEnabled
	return nil
}

// Disable calls Disable on the module once, after Enable was attempted.
func (g *Guard) Disable(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case stateLoaded:
		return fault.ContractViolation(fmt.Sprintf("module %s disabled before enable", g.id)).WithOperation("disable")
	case stateDisabled:
		return fault.ContractViolation(fmt.Sprintf("module %s disabled twice", g.id)).WithOperation("disable")
	}
	g.state = stateDisabled
	return protect(g.id, "disable", func() error { return g.module.Disable(ctx) })
}

// Enabled reports whether Enable succeeded and Disable has not run.
func (g *Guard) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == stateEnabled
}

func protect(id, phase string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module %s panicked during %s: %v", id, phase, r)
		}
	}()
	return fn()
}
