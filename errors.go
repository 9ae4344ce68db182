package lockman

import "fmt"

type (
	// FailureError is satisfied by every error that can appear inside a
	// Failure outcome. The built-in implementations are the ones declared
	// here (registry/composite concerns) plus the strategy-specific ones in
	// package strategy; a dynamic-condition thunk may also return a
	// FailureError type of its own.
	FailureError interface {
		error
		// FailureReason is a short, stable, machine-friendly reason code.
		FailureReason() string
		// Describe is a single-line, human-readable description.
		Describe() string
		// HelpAnchor points at documentation for this failure kind.
		HelpAnchor() string
	}

	// CancellationError is satisfied by every error that can appear inside
	// a SuccessWithPrecedingCancellation outcome. It carries enough
	// information for the caller to cancel and unlock the victim.
	CancellationError interface {
		error
		// Victim is the prior lock the caller must cancel and unlock.
		Victim() LockInfo
		// Boundary is the boundary the victim was locked under.
		Boundary() BoundaryId
		Describe() string
	}

	// PrecedingActionCancelledError is the generic victim-carrying
	// cancellation error, used by any strategy that preempts a prior lock
	// (the priority-based strategy). The composite strategy reports its
	// victims through CompositeCancellationError, even when there is only
	// one.
	PrecedingActionCancelledError struct {
		BoundaryId BoundaryId
		VictimInfo LockInfo
	}

	// CompositeCancellationError aggregates the victims of every
	// sub-strategy that reported a preceding cancellation within one
	// composite evaluation.
	CompositeCancellationError struct {
		Bound   BoundaryId
		Victims []LockInfo
	}

	// StrategyNotRegisteredError is returned by the registry when resolving
	// an id that was never registered.
	StrategyNotRegisteredError struct {
		Id StrategyId
	}

	// StrategyAlreadyRegisteredError is returned when registering an id
	// that is already present.
	StrategyAlreadyRegisteredError struct {
		Id StrategyId
	}

	// StrategyTypeMismatchError is returned when a resolved strategy's
	// concrete LockInfo type does not match the type requested by the
	// caller (a downcast failure).
	StrategyTypeMismatchError struct {
		Id       StrategyId
		Expected string
		Actual   string
	}

	// StrategyFailedError wraps the Failure returned by one sub-strategy
	// of a composite evaluation, identified by its index.
	StrategyFailedError struct {
		Index int
		Inner FailureError
	}

	// PreemptionBlockedError is synthesized by the Orchestrator (not any
	// strategy) when a caller's AcquireOption requests BlockNew: it
	// converts what would have been a SuccessWithPrecedingCancellation into
	// a Failure, refusing to preempt Victim.
	PreemptionBlockedError struct {
		Boundary BoundaryId
		Victim   LockInfo
	}
)

func (e *PrecedingActionCancelledError) Error() string {
	return e.Describe()
}

func (e *PrecedingActionCancelledError) Victim() LockInfo { return e.VictimInfo }

func (e *PrecedingActionCancelledError) Boundary() BoundaryId { return e.BoundaryId }

func (e *PrecedingActionCancelledError) Describe() string {
	return fmt.Sprintf(`preceding action cancelled: %s`, e.VictimInfo.DebugDescription())
}

func (e *CompositeCancellationError) Error() string {
	return e.Describe()
}

// Victim returns the first victim, for callers that only handle the single
// CancellationError shape; Victims returns the full set.
func (e *CompositeCancellationError) Victim() LockInfo {
	if len(e.Victims) == 0 {
		return nil
	}
	return e.Victims[0]
}

func (e *CompositeCancellationError) Boundary() BoundaryId { return e.Bound }

func (e *CompositeCancellationError) Describe() string {
	return fmt.Sprintf(`composite: %d preceding action(s) cancelled`, len(e.Victims))
}

func (e *StrategyNotRegisteredError) Error() string {
	return e.Describe()
}

func (e *StrategyNotRegisteredError) FailureReason() string { return `strategy_not_registered` }

func (e *StrategyNotRegisteredError) Describe() string {
	return fmt.Sprintf(`strategy not registered: %s`, e.Id)
}

func (e *StrategyNotRegisteredError) HelpAnchor() string {
	return `lockman/errors#strategy-not-registered`
}

func (e *StrategyAlreadyRegisteredError) Error() string {
	return e.Describe()
}

func (e *StrategyAlreadyRegisteredError) FailureReason() string { return `strategy_already_registered` }

func (e *StrategyAlreadyRegisteredError) Describe() string {
	return fmt.Sprintf(`strategy already registered: %s`, e.Id)
}

func (e *StrategyAlreadyRegisteredError) HelpAnchor() string {
	return `lockman/errors#strategy-already-registered`
}

func (e *StrategyTypeMismatchError) Error() string {
	return e.Describe()
}

func (e *StrategyTypeMismatchError) FailureReason() string { return `strategy_type_mismatch` }

func (e *StrategyTypeMismatchError) Describe() string {
	return fmt.Sprintf(`strategy %s: expected info type %s, got %s`, e.Id, e.Expected, e.Actual)
}

func (e *StrategyTypeMismatchError) HelpAnchor() string {
	return `lockman/errors#strategy-type-mismatch`
}

func (e *StrategyFailedError) Error() string {
	return e.Describe()
}

func (e *StrategyFailedError) FailureReason() string { return `composite_strategy_failed` }

func (e *StrategyFailedError) Describe() string {
	return fmt.Sprintf(`composite: sub-strategy %d failed: %s`, e.Index, e.Inner.Describe())
}

func (e *StrategyFailedError) HelpAnchor() string {
	return `lockman/errors#composite-strategy-failed`
}

func (e *StrategyFailedError) Unwrap() error { return e.Inner }

func (e *PreemptionBlockedError) Error() string {
	return e.Describe()
}

func (e *PreemptionBlockedError) FailureReason() string { return `preemption_blocked` }

func (e *PreemptionBlockedError) Describe() string {
	return fmt.Sprintf(`preemption blocked by caller override: %s`, e.Victim.DebugDescription())
}

func (e *PreemptionBlockedError) HelpAnchor() string {
	return `lockman/errors#preemption-blocked`
}
