// Package strategy implements the built-in conflict-resolution strategies
// (spec §4.E): Single-Execution, Priority-Based, Group-Coordination,
// Concurrency-Limited, Dynamic-Condition, and their Composite.
package strategy

import (
	"fmt"

	"github.com/lockman-go/lockman"
)

// SingleExecutionMode selects a SingleExecutionInfo's conflict semantics.
type SingleExecutionMode int

const (
	// ModeNone disables conflict checking entirely: always Success.
	ModeNone SingleExecutionMode = iota
	// ModeBoundary rejects the request unless the boundary holds no locks.
	ModeBoundary
	// ModeAction rejects the request unless no lock shares its ActionId.
	ModeAction
)

func (m SingleExecutionMode) String() string {
	switch m {
	case ModeNone:
		return `none`
	case ModeBoundary:
		return `boundary`
	case ModeAction:
		return `action`
	default:
		return `unknown`
	}
}

type (
	// SingleExecutionInfo is the LockInfo for SingleExecutionStrategy.
	SingleExecutionInfo struct {
		lockman.Header
		Mode SingleExecutionMode
	}

	// SingleExecutionStrategy implements spec §4.E1: at most one lock per
	// boundary (ModeBoundary) or per action (ModeAction), or no
	// restriction at all (ModeNone).
	SingleExecutionStrategy struct {
		id    lockman.StrategyId
		state *lockman.State
	}

	// BoundaryAlreadyLockedError rejects a ModeBoundary request because the
	// boundary already holds a lock.
	BoundaryAlreadyLockedError struct {
		Existing lockman.LockInfo
	}

	// ActionAlreadyRunningError rejects a ModeAction request because the
	// same ActionId is already locked within the boundary.
	ActionAlreadyRunningError struct {
		Existing lockman.LockInfo
	}
)

// NewSingleExecutionInfo builds a SingleExecutionInfo for actionId under
// mode.
func NewSingleExecutionInfo(strategyId lockman.StrategyId, actionId lockman.ActionId, mode SingleExecutionMode, opts ...lockman.HeaderOption) SingleExecutionInfo {
	return SingleExecutionInfo{
		Header: lockman.NewHeader(strategyId, actionId, opts...),
		Mode:   mode,
	}
}

func (i SingleExecutionInfo) DebugDescription() string {
	return lockman.FormatDebug(`SingleExecutionInfo`, i.ActionId(), i.UniqueId(), `mode=`+i.Mode.String())
}

// NewSingleExecutionStrategy constructs a strategy registered under id.
func NewSingleExecutionStrategy(id lockman.StrategyId, reporter lockman.IssueReporter) *SingleExecutionStrategy {
	return &SingleExecutionStrategy{id: id, state: lockman.NewState(reporter)}
}

func (s *SingleExecutionStrategy) StrategyId() lockman.StrategyId { return s.id }

func (s *SingleExecutionStrategy) State() *lockman.State { return s.state }

func (s *SingleExecutionStrategy) CanLock(boundary lockman.BoundaryId, info SingleExecutionInfo) lockman.AcquireResult {
	switch info.Mode {
	case ModeNone:
		return lockman.Success()

	case ModeBoundary:
		locks := s.state.Locks(boundary)
		if len(locks) == 0 {
			return lockman.Success()
		}
		return lockman.Failure(&BoundaryAlreadyLockedError{Existing: locks[0]})

	case ModeAction:
		if !s.state.Contains(boundary, info.ActionId()) {
			return lockman.Success()
		}
		existing := s.state.LocksForAction(boundary, info.ActionId())[0]
		return lockman.Failure(&ActionAlreadyRunningError{Existing: existing})

	default:
		return lockman.Success()
	}
}

func (s *SingleExecutionStrategy) Lock(boundary lockman.BoundaryId, info SingleExecutionInfo) {
	s.state.Add(boundary, info)
}

func (s *SingleExecutionStrategy) Unlock(boundary lockman.BoundaryId, info SingleExecutionInfo) {
	s.state.Remove(boundary, info)
}

func (s *SingleExecutionStrategy) Cleanup() { s.state.Cleanup() }

func (s *SingleExecutionStrategy) CleanupBoundary(boundary lockman.BoundaryId) {
	s.state.CleanupBoundary(boundary)
}

func (s *SingleExecutionStrategy) CurrentLocks() []lockman.LockInfo {
	var out []lockman.LockInfo
	for _, locks := range s.state.Snapshot() {
		out = append(out, locks...)
	}
	return out
}

func (e *BoundaryAlreadyLockedError) Error() string { return e.Describe() }

func (e *BoundaryAlreadyLockedError) FailureReason() string { return `boundary_already_locked` }

func (e *BoundaryAlreadyLockedError) Describe() string {
	return fmt.Sprintf(`boundary already locked by %s`, e.Existing.DebugDescription())
}

func (e *BoundaryAlreadyLockedError) HelpAnchor() string {
	return `lockman/strategy#boundary-already-locked`
}

func (e *ActionAlreadyRunningError) Error() string { return e.Describe() }

func (e *ActionAlreadyRunningError) FailureReason() string { return `action_already_running` }

func (e *ActionAlreadyRunningError) Describe() string {
	return fmt.Sprintf(`action already running: %s`, e.Existing.DebugDescription())
}

func (e *ActionAlreadyRunningError) HelpAnchor() string {
	return `lockman/strategy#action-already-running`
}
