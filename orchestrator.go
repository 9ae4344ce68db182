package lockman

import (
	"runtime"
	"sync"
	"time"
)

type (
	// CancellationOverride is a per-call override of how the orchestrator
	// treats a SuccessWithPrecedingCancellation outcome (spec §9, open
	// question 4). It is never strategy state — only the orchestrator
	// consults it, after a strategy's CanLock has already decided the
	// outcome.
	CancellationOverride int

	// AcquireOption configures a single Acquire call.
	AcquireOption func(*acquireConfig)

	acquireConfig struct {
		override CancellationOverride
	}

	// Orchestrator is the single externally-facing acquisition path (spec
	// §4.H): it serializes CanLock+Lock pairs per boundary via a gate,
	// eliminating the TOCTOU window between inspection and mutation.
	Orchestrator struct {
		registry        *Registry
		scheduler       Scheduler
		transitionDelay time.Duration
		loggingEnabled  bool
		loggingHook     LoggingHook
		issueReporter   IssueReporter

		gates sync.Map // BoundaryId -> *sync.Mutex
	}
)

const (
	// UseStrategyDefault leaves a SuccessWithPrecedingCancellation outcome
	// untouched: the caller still must cancel and unlock the victim.
	UseStrategyDefault CancellationOverride = iota
	// CancelExisting behaves identically to UseStrategyDefault; it exists
	// to let call sites be explicit about intent.
	CancelExisting
	// BlockNew converts a SuccessWithPrecedingCancellation outcome into a
	// Failure, refusing to preempt the existing holder even though the
	// strategy would have allowed it.
	BlockNew
)

// WithCancellationOverride sets how Acquire should treat a
// SuccessWithPrecedingCancellation outcome for this call only.
func WithCancellationOverride(o CancellationOverride) AcquireOption {
	return func(c *acquireConfig) { c.override = o }
}

// NewOrchestrator constructs an Orchestrator. By default it resolves
// strategies from DefaultRegistry, schedules deferred unlocks with
// RealScheduler, and uses a 300ms Transition delay.
func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:        DefaultRegistry(),
		scheduler:       RealScheduler{},
		transitionDelay: 300 * time.Millisecond,
		loggingHook:     DefaultLoggingHook,
		issueReporter:   DefaultIssueReporter,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IssueReporter returns the reporter this Orchestrator was configured
// with, for strategies constructed alongside it to share.
func (o *Orchestrator) IssueReporter() IssueReporter { return o.issueReporter }

func (o *Orchestrator) gateFor(boundary BoundaryId) *sync.Mutex {
	if v, ok := o.gates.Load(boundary); ok {
		return v.(*sync.Mutex)
	}
	actual, _ := o.gates.LoadOrStore(boundary, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Acquire resolves the strategy named by info's StrategyId, then evaluates
// and (on any success variant) commits info under boundary, all while
// holding boundary's gate — so no other Acquire on the same boundary can
// observe the window between inspection and mutation.
//
// On a success variant, the returned UnlockToken's Call method (or its
// owner dropping the token) must eventually run, exactly once per
// acquisition, to release the lock. On SuccessWithPrecedingCancellation,
// the caller must also cancel and Unlock the victim carried in the result.
func Acquire[I LockInfo](o *Orchestrator, boundary BoundaryId, info I, opts ...AcquireOption) (AcquireResult, *UnlockToken, error) {
	cfg := acquireConfig{override: UseStrategyDefault}
	for _, opt := range opts {
		opt(&cfg)
	}

	dyn, err := ResolveTyped[I](o.registry, info.StrategyId())
	if err != nil {
		return AcquireResult{}, nil, err
	}

	gate := o.gateFor(boundary)
	gate.Lock()
	defer gate.Unlock()

	result := dyn.CanLock(boundary, info)
	result = applyCancellationOverride(result, cfg.override)

	if o.loggingEnabled && o.loggingHook != nil {
		o.loggingHook(canLockEventFor(info, boundary, result))
	}

	if result.IsFailure() {
		return result, nil, nil
	}

	dyn.Lock(boundary, info)
	token := newUnlockToken(boundary, info, dyn, Immediate(), o.scheduler, o.transitionDelay)
	return result, token, nil
}

// AcquireWithOption behaves like Acquire, but the returned UnlockToken
// releases per option instead of immediately.
func AcquireWithOption[I LockInfo](o *Orchestrator, boundary BoundaryId, info I, option UnlockOption, opts ...AcquireOption) (AcquireResult, *UnlockToken, error) {
	result, token, err := Acquire(o, boundary, info, opts...)
	if err != nil || token == nil {
		return result, token, err
	}
	// The Immediate token is replaced, not returned: drop its finalizer so
	// it cannot release the lock when it is garbage collected.
	runtime.SetFinalizer(token, nil)
	token = newUnlockToken(token.boundary, token.info, token.strategy, option, o.scheduler, o.transitionDelay)
	return result, token, nil
}

func applyCancellationOverride(result AcquireResult, override CancellationOverride) AcquireResult {
	if override != BlockNew || result.Kind() != KindSuccessWithPrecedingCancellation {
		return result
	}
	cancellation, _ := result.Cancellation()
	return Failure(&PreemptionBlockedError{
		Boundary: cancellation.Boundary(),
		Victim:   cancellation.Victim(),
	})
}

func canLockEventFor(info LockInfo, boundary BoundaryId, result AcquireResult) CanLockEvent {
	ev := CanLockEvent{
		Strategy: info.StrategyId(),
		Boundary: boundary,
		Action:   info.ActionId(),
		Unique:   info.UniqueId(),
		Result:   result.Kind(),
	}
	switch result.Kind() {
	case KindFailure:
		if f, ok := result.FailureErr(); ok {
			ev.Reason = f.FailureReason()
		}
	case KindSuccessWithPrecedingCancellation:
		ev.Cancelled = true
		if c, ok := result.Cancellation(); ok {
			ev.Reason = c.Describe()
		}
	}
	return ev
}

// Cleanup discards all held locks, across every registered strategy and
// boundary.
func (o *Orchestrator) Cleanup() {
	o.registry.ForEach(func(s DynStrategy) { s.Cleanup() })
	o.gates.Range(func(key, _ any) bool {
		o.gates.Delete(key)
		return true
	})
}

// CleanupBoundary discards held locks for boundary, across every
// registered strategy.
func (o *Orchestrator) CleanupBoundary(boundary BoundaryId) {
	o.registry.ForEach(func(s DynStrategy) { s.CleanupBoundary(boundary) })
	o.gates.Delete(boundary)
}

// Snapshot returns a debug snapshot of every lock held by every registered
// strategy, grouped by boundary (spec §4.I). Strategies with no durable
// state of their own (the composite strategy, whose State returns nil) are
// omitted here; their sub-strategies are registered and snapshotted
// independently.
func (o *Orchestrator) Snapshot() Snapshot {
	snap := make(Snapshot)
	o.registry.ForEach(func(s DynStrategy) {
		st := s.State()
		if st == nil {
			return
		}
		for boundary, locks := range st.Snapshot() {
			snap[boundary] = append(snap[boundary], SnapshotEntry{Strategy: s.StrategyId(), Locks: locks})
		}
	})
	return snap
}
