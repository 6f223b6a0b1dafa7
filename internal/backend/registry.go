package backend

import (
	"context"
	"fmt"
	"sort"

	"github.com/imishinist/mlflow-adsp/internal/config"
)

// Builder constructs a Runner from process configuration.
type Builder func(ctx context.Context, cfg *config.Config) (Runner, error)

// Registry maps backend names to their builders.
type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

func (r *Registry) Register(name string, b Builder) {
	r.builders[name] = b
}

// Build looks up name and constructs its Runner.
func (r *Registry) Build(ctx context.Context, name string, cfg *config.Config) (Runner, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, r.Names())
	}
	return b(ctx, cfg)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
