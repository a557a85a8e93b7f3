package module

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/polocloud/polocloud/pkg/events"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

// Host admits modules, keeps them in admission order and unloads them.
type Host struct {
	bus       *events.Bus
	providers Providers
	tel       *telemetry.Telemetry
	logger    *telemetry.Logger

	mu        sync.Mutex
	factories map[string]Factory
	loaded    []*loaded
}

type loaded struct {
	meta  Metadata
	guard *Guard
	scope *events.Scope
}

// NewHost returns a host handing bus and providers to its modules. A nil tel
// falls back to telemetry.Nop and a nil bus to a private synchronous bus.
func NewHost(bus *events.Bus, providers Providers, tel *telemetry.Telemetry) *Host {
	if tel == nil {
		tel = telemetry.Nop()
	}
	if bus == nil {
		bus = events.NewBus(events.Config{}, tel)
	}
	return &Host{
		bus:       bus,
		providers: providers,
		tel:       tel,
		logger:    tel.Logger.NewComponentLogger("module"),
		factories: make(map[string]Factory),
	}
}

// Register makes factory available under the entry point main.
func (h *Host) Register(main string, factory Factory) error {
	if main == "" || factory == nil {
		return fault.ContractViolation("module factory needs an entry point and a constructor")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.factories[main]; exists {
		return fault.Conflict(fmt.Sprintf("entry point %s already registered", main)).WithEntity("module")
	}
	h.factories[main] = factory
	return nil
}

// Admit instantiates the module named by meta and enables it. When Enable
// fails the module is disabled again and its subscriptions are released.
func (h *Host) Admit(ctx context.Context, meta Metadata) (err error) {
	if err := meta.Validate(); err != nil {
		return err
	}

	ctx, span := h.tel.Tracer.StartModuleSpan(ctx, meta.ID, "enable")
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
		} else {
			telemetry.RecordSuccess(span)
		}
		span.End()
	}()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.indexOf(meta.ID) >= 0 {
		return fault.Conflict(fmt.Sprintf("module %s already admitted", meta.ID)).WithEntity("module")
	}
	factory, ok := h.factories[meta.Main]
	if !ok {
		return fault.NotFound(fmt.Sprintf("no module registered for entry point %s", meta.Main)).WithEntity("module")
	}
	m := factory()
	if m == nil {
		return fault.ContractViolation(fmt.Sprintf("factory for %s returned no module", meta.Main))
	}

	logger := h.logger.WithModule(meta.ID, meta.Main)
	entry := &loaded{
		meta:  meta,
		guard: NewGuard(meta.ID, m),
		scope: h.bus.NewScope(),
	}
	env := &Environment{
		Metadata:  meta,
		Events:    entry.scope,
		Providers: h.providers,
		Logger:    logger,
	}

	if err := entry.guard.Enable(ctx, env); err != nil {
		if derr := entry.guard.Disable(ctx); derr != nil {
			logger.WithError(derr).Warn("disable after failed enable returned an error")
		}
		entry.scope.Release()
		h.tel.Metrics.AddModules(stateFailed.String(), 1)
		logger.WithError(err).Error("module failed to enable")
		return fmt.Errorf("failed to enable module %s: %w", meta.ID, err)
	}

	h.loaded = append(h.loaded, entry)
	h.tel.Metrics.AddModules(stateEnabled.String(), 1)
	logger.WithField("subscriptions", entry.scope.Len()).Info("module enabled")
	return nil
}

// Unload disables the module with the given id and releases its
// subscriptions.
func (h *Host) Unload(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.indexOf(id)
	if i < 0 {
		return fault.NotFound(fmt.Sprintf("module %s is not admitted", id)).WithEntity("module")
	}
	entry := h.loaded[i]
	h.loaded = slices.Delete(h.loaded, i, i+1)
	return h.disable(ctx, entry)
}

// Shutdown unloads every module in reverse admission order.
func (h *Host) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for _, entry := range slices.Backward(h.loaded) {
		if err := h.disable(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	h.loaded = nil
	return errors.Join(errs...)
}

func (h *Host) disable(ctx context.Context, entry *loaded) (err error) {
	ctx, span := h.tel.Tracer.StartModuleSpan(ctx, entry.meta.ID, "disable")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	logger := h.logger.WithModule(entry.meta.ID, entry.meta.Main)
	err = entry.guard.Disable(ctx)
	entry.scope.Release()
	h.tel.Metrics.AddModules(stateEnabled.String(), -1)
	if err != nil {
		logger.WithError(err).Error("module failed to disable")
		return fmt.Errorf("failed to disable module %s: %w", entry.meta.ID, err)
	}
	logger.Info("module disabled")
	return nil
}

func (h *Host) indexOf(id string) int {
	return slices.IndexFunc(h.loaded, func(l *loaded) bool { return l.meta.ID == id })
}

// Modules returns the metadata of admitted modules in admission order.
func (h *Host) Modules() []Metadata {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Metadata, 0, len(h.loaded))
	for _, l := range h.loaded {
		out = append(out, l.meta)
	}
	return out
}

// AdmitAll admits every module found under dir except the ids in skip.
// Admission continues past failures; all errors are joined.
func (h *Host) AdmitAll(ctx context.Context, dir string, skip ...string) error {
	metas, err := ScanDirectory(dir)
	errs := []error{err}
	for _, m := range metas {
		if slices.Contains(skip, m.ID) {
			h.logger.WithModule(m.ID, m.Main).Info("module disabled by configuration")
			continue
		}
		errs = append(errs, h.Admit(ctx, *m))
	}
	return errors.Join(errs...)
}
