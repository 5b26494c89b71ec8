package host

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/avro-runtime/binding"
	"github.com/wippyai/avro-runtime/codec"
	"github.com/wippyai/avro-runtime/errors"
	"github.com/wippyai/avro-runtime/resource"
)

// ModuleName is the import module name guests use.
const ModuleName = "avro.legacy"

// Options configures a Module.
type Options struct {
	// Logger overrides the package logger when set.
	Logger *zap.Logger
}

// DefaultOptions returns default host module configuration.
func DefaultOptions() Options {
	return Options{}
}

// Module is the host side of "avro.legacy". Every guest call is serialized
// on the module's mutex, which is the only synchronization the underlying
// binding and codec packages get.
type Module struct {
	lib     *codec.Library
	bind    *binding.Module
	table   *resource.UnifiedTable
	logger  *zap.Logger
	lastErr error
	mu      sync.Mutex
}

// New creates a host module over lib.
func New(lib *codec.Library, opts Options) *Module {
	m := &Module{
		lib:    lib,
		bind:   binding.New(lib),
		table:  resource.NewTable(),
		logger: opts.Logger,
	}
	if m.logger == nil {
		m.logger = Logger()
	}
	m.table.Subscribe(resource.ObserverFunc(m.onResourceEvent))
	return m
}

// Library returns the codec library backing the module.
func (m *Module) Library() *codec.Library {
	return m.lib
}

// Binding returns the binding module used to create handles.
func (m *Module) Binding() *binding.Module {
	return m.bind
}

// Handles returns the number of live schema and value handles.
func (m *Module) Handles() (schemas, values int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.Count(resource.TypeSchema), m.table.Count(resource.TypeValue)
}

// LastError returns the most recent failure of a guest call, or nil.
func (m *Module) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Instantiate registers the host functions with rt under ModuleName.
func (m *Module) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(ModuleName)
	for _, e := range exports {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(m.wrap(e), e.params, e.results).
			WithName(e.name).
			Export(e.name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(errors.PhaseHost, ModuleName, "module", err)
	}
	m.logger.Debug("host module instantiated",
		zap.String("module", ModuleName),
		zap.Int("functions", len(exports)))
	return mod, nil
}

// Close releases every handle still held by guests, running each one's
// finalizer.
func (m *Module) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.lib.Stats()
	err := m.table.Close()
	m.logger.Debug("host module closed",
		zap.Int("live_schemas", stats.LiveSchemas),
		zap.Int("live_values", stats.LiveValues))
	return err
}

func (m *Module) wrap(e export) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		m.mu.Lock()
		defer m.mu.Unlock()

		if err := e.call(m, mod, stack); err != nil {
			copy(stack, e.onError)
			m.lastErr = err
			m.logger.Debug("host call failed",
				zap.String("func", e.name),
				zap.Error(err))
		}
	}
}

func (m *Module) onResourceEvent(e resource.Event) {
	switch e.Type {
	case resource.EventCreated:
		m.logger.Debug("handle created",
			zap.Uint32("handle", uint32(e.Handle)),
			zap.Stringer("kind", e.TypeID))
	case resource.EventDropped:
		m.logger.Debug("handle dropped",
			zap.Uint32("handle", uint32(e.Handle)),
			zap.Stringer("kind", e.TypeID))
	}
}

func (m *Module) insert(kind resource.TypeID, v resource.Dropper) (resource.Handle, error) {
	h := m.table.Insert(kind, v)
	if h == 0 {
		v.Drop()
		return 0, errors.Released(errors.PhaseHost, "handle table")
	}
	return h, nil
}

func (m *Module) schemaAt(h uint32) (*binding.SchemaHandle, error) {
	sh, ok := resource.Lookup[*binding.SchemaHandle](m.table, resource.Handle(h), resource.TypeSchema)
	if !ok {
		return nil, m.lookupFailed(h, resource.TypeSchema)
	}
	return sh, nil
}

func (m *Module) valueAt(h uint32) (*binding.ValueHandle, error) {
	vh, ok := resource.Lookup[*binding.ValueHandle](m.table, resource.Handle(h), resource.TypeValue)
	if !ok {
		return nil, m.lookupFailed(h, resource.TypeValue)
	}
	return vh, nil
}

func (m *Module) lookupFailed(h uint32, want resource.TypeID) error {
	if got, live := m.table.TypeOf(resource.Handle(h)); live {
		return errors.TypeMismatch(errors.PhaseHost, want.String()+" handle", got.String()+" handle")
	}
	return errors.NotFound(errors.PhaseHost, want.String()+" handle", h)
}
