package validator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/config"
)

// Factory builds a validator from its configuration entry.
type Factory func(cfg config.ValidatorConfiguration, deps Dependencies) (Validator, error)

type registryKey struct {
	name     string
	dataType string
}

// Registry maps (name, data type) to a factory. It is populated by explicit
// Register calls at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[registryKey]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[registryKey]Factory),
	}
}

func (r *Registry) Register(name string, dataType string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("validator name is required")
	}
	if factory == nil {
		return fmt.Errorf("validator %s: factory is nil", name)
	}
	if dataType == "" {
		dataType = config.DataTypeString
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{name: name, dataType: dataType}
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("%w: %s (%s)", ErrDuplicateValidator, name, dataType)
	}
	r.factories[key] = factory
	return nil
}

// Build looks up the factory for the entry's registered type and data type.
func (r *Registry) Build(cfg config.ValidatorConfiguration, deps Dependencies) (Validator, error) {
	dataType := cfg.DataType
	if dataType == "" {
		dataType = config.DataTypeString
	}

	r.mu.RLock()
	factory, ok := r.factories[registryKey{name: cfg.RegisteredType(), dataType: dataType}]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnknownValidator, cfg.RegisteredType(), dataType)
	}

	v, err := factory(cfg, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to build validator %s: %w", cfg.Name, err)
	}
	return v, nil
}

// Names returns the registered validator names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	names := make([]string, 0, len(r.factories))
	for key := range r.factories {
		if !seen[key.name] {
			seen[key.name] = true
			names = append(names, key.name)
		}
	}
	sort.Strings(names)
	return names
}
