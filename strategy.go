package lockman

import "fmt"

type (
	// Strategy is the uniform contract every conflict-resolution policy
	// implements (spec §4.D), generic over its own LockInfo variant I.
	Strategy[I LockInfo] interface {
		// StrategyId identifies this strategy instance for registration and
		// resolution.
		StrategyId() StrategyId

		// CanLock is a read-only inspection: it must never mutate state.
		CanLock(boundary BoundaryId, info I) AcquireResult

		// Lock unconditionally inserts info. Precondition: the caller has
		// just observed a success variant from CanLock and holds the
		// boundary gate.
		Lock(boundary BoundaryId, info I)

		// Unlock idempotently removes info.
		Unlock(boundary BoundaryId, info I)

		// Cleanup discards all state, across every boundary.
		Cleanup()

		// CleanupBoundary discards state for one boundary.
		CleanupBoundary(boundary BoundaryId)

		// CurrentLocks returns a by-value snapshot of every lock this
		// strategy currently holds, across all boundaries.
		CurrentLocks() []LockInfo
	}

	// DynStrategy is the type-erased handle the registry and orchestrator
	// operate on. Obtain one with Wrap.
	DynStrategy interface {
		StrategyId() StrategyId
		CanLock(boundary BoundaryId, info LockInfo) AcquireResult
		Lock(boundary BoundaryId, info LockInfo)
		Unlock(boundary BoundaryId, info LockInfo)
		Cleanup()
		CleanupBoundary(boundary BoundaryId)
		CurrentLocks() []LockInfo
		// InfoTypeName identifies the concrete LockInfo type this strategy
		// expects, for ResolveTyped's downcast check.
		InfoTypeName() string
		// State returns the *State backing this strategy, or nil for
		// strategies (the composite) that hold no state of their own and
		// delegate entirely to sub-strategies.
		State() *State
	}

	// hasState is satisfied by built-in strategy implementations that back
	// themselves with a *State, letting Wrap expose it through DynStrategy
	// without the composite strategy needing to fake one.
	hasState interface {
		State() *State
	}

	dynStrategyAdapter[I LockInfo] struct {
		s Strategy[I]
	}
)

// Wrap erases a generic Strategy[I] into a DynStrategy, the shape the
// Registry and Orchestrator store and dispatch through. A mismatched
// LockInfo concrete type passed to any method is a programmer error (the
// mismatch should have been caught at ResolveTyped) and panics, the
// same way microbatch panics on a nil processor rather than degrading
// silently.
func Wrap[I LockInfo](s Strategy[I]) DynStrategy {
	return dynStrategyAdapter[I]{s: s}
}

func (d dynStrategyAdapter[I]) StrategyId() StrategyId { return d.s.StrategyId() }

func (d dynStrategyAdapter[I]) CanLock(boundary BoundaryId, info LockInfo) AcquireResult {
	return d.s.CanLock(boundary, d.cast(info))
}

func (d dynStrategyAdapter[I]) Lock(boundary BoundaryId, info LockInfo) {
	d.s.Lock(boundary, d.cast(info))
}

func (d dynStrategyAdapter[I]) Unlock(boundary BoundaryId, info LockInfo) {
	d.s.Unlock(boundary, d.cast(info))
}

func (d dynStrategyAdapter[I]) Cleanup() { d.s.Cleanup() }

func (d dynStrategyAdapter[I]) CleanupBoundary(boundary BoundaryId) { d.s.CleanupBoundary(boundary) }

func (d dynStrategyAdapter[I]) CurrentLocks() []LockInfo { return d.s.CurrentLocks() }

func (d dynStrategyAdapter[I]) InfoTypeName() string {
	var zero I
	return fmt.Sprintf(`%T`, zero)
}

func (d dynStrategyAdapter[I]) State() *State {
	if ss, ok := any(d.s).(hasState); ok {
		return ss.State()
	}
	return nil
}

func (d dynStrategyAdapter[I]) cast(info LockInfo) I {
	typed, ok := info.(I)
	if !ok {
		panic(fmt.Errorf(`lockman: strategy %s: info type mismatch: expected %s, got %T`,
			d.s.StrategyId(), d.InfoTypeName(), info))
	}
	return typed
}
