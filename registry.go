package lockman

import "sync"

// Registry is the process-wide, thread-safe map from StrategyId to a
// type-erased strategy handle (spec §4.F).
type Registry struct {
	mu         sync.RWMutex
	strategies map[StrategyId]DynStrategy
}

// NewRegistry creates an empty Registry. Orchestrators default to the
// package-wide DefaultRegistry unless constructed with WithRegistry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[StrategyId]DynStrategy)}
}

// Register adds s, failing if its StrategyId is already present.
func (r *Registry) Register(s DynStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := s.StrategyId()
	if _, exists := r.strategies[id]; exists {
		return &StrategyAlreadyRegisteredError{Id: id}
	}
	r.strategies[id] = s
	return nil
}

// Resolve returns the handle registered under id, or a
// StrategyNotRegisteredError.
func (r *Registry) Resolve(id StrategyId) (DynStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[id]
	if !ok {
		return nil, &StrategyNotRegisteredError{Id: id}
	}
	return s, nil
}

// ResolveTyped resolves id and additionally verifies the resolved
// strategy's concrete LockInfo type matches I, returning a
// StrategyTypeMismatchError on a downcast failure.
func ResolveTyped[I LockInfo](r *Registry, id StrategyId) (DynStrategy, error) {
	s, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}

	var zero I
	expected := typeName(zero)
	if actual := s.InfoTypeName(); actual != expected {
		return nil, &StrategyTypeMismatchError{Id: id, Expected: expected, Actual: actual}
	}
	return s, nil
}

// UnregisterAll discards every registration, for test isolation. Strategy
// state (locks already held) is untouched; callers that also want a clean
// slate of held locks should call ForEach and Cleanup each strategy first.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.strategies)
}

// ForEach invokes fn once per registered strategy, in unspecified order.
func (r *Registry) ForEach(fn func(DynStrategy)) {
	r.mu.RLock()
	snapshot := make([]DynStrategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	for _, s := range snapshot {
		fn(s)
	}
}

func typeName[I LockInfo](zero I) string {
	return dynStrategyAdapter[I]{}.InfoTypeName()
}

var (
	globalRegistryMu sync.RWMutex
	globalRegistry   = NewRegistry()
)

// DefaultRegistry returns the package-wide registry used by Orchestrators
// constructed without WithRegistry.
func DefaultRegistry() *Registry {
	globalRegistryMu.RLock()
	defer globalRegistryMu.RUnlock()
	return globalRegistry
}

// WithTestRegistry swaps the package-wide default registry for reg, for the
// duration of a test, and returns a function that restores the previous
// registry. Modeled on catrate's swappable package-level test vars.
//
//	restore := lockman.WithTestRegistry(lockman.NewRegistry())
//	defer restore()
func WithTestRegistry(reg *Registry) (restore func()) {
	globalRegistryMu.Lock()
	prev := globalRegistry
	globalRegistry = reg
	globalRegistryMu.Unlock()

	return func() {
		globalRegistryMu.Lock()
		globalRegistry = prev
		globalRegistryMu.Unlock()
	}
}
