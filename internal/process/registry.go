package process

import (
	"fmt"
	"log/slog"
	"sort"
)

// Factory builds a process from plain declarative config. Invalid config
// must produce a process in the failed state, not an error; the error return
// is reserved for structural problems (nil config maps and the like).
type Factory func(cfg Config) Process

// Module is implemented by each process package so the application can
// compile its simulation catalogue in one list.
type Module interface {
	Register(r *Registry)
}

// Registry maps process kinds to factories for lesson compilation.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// RegisterProcess installs a factory for kind. Double registration is a
// programmer error and panics.
func (r *Registry) RegisterProcess(kind string, f Factory) {
	if _, exists := r.factories[kind]; exists {
		panic(fmt.Sprintf("process kind %q already registered", kind))
	}
	slog.Debug("Registering process factory.", "kind", kind)
	r.factories[kind] = f
}

// New instantiates a process of the given kind. Unknown kinds are an error;
// invalid configuration is reported through the process's failed state.
func (r *Registry) New(kind string, cfg Config) (Process, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown process kind %q (registered: %v)", kind, r.Kinds())
	}
	return f(cfg), nil
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
