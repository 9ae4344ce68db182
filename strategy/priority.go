package strategy

import (
	"fmt"

	"github.com/lockman-go/lockman"
)

type (
	// PriorityLevel orders PriorityInfo requests; High > Low > None,
	// independent of Behavior.
	PriorityLevel int

	// Behavior governs what happens when two locks land at the same
	// PriorityLevel: the existing lock's Behavior decides, not the
	// challenger's (spec §4.E, E2 rationale).
	Behavior int
)

const (
	PriorityNone PriorityLevel = iota
	PriorityLow
	PriorityHigh
)

const (
	Exclusive Behavior = iota
	Replaceable
)

func (p PriorityLevel) String() string {
	switch p {
	case PriorityNone:
		return `none`
	case PriorityLow:
		return `low`
	case PriorityHigh:
		return `high`
	default:
		return `unknown`
	}
}

func (b Behavior) String() string {
	switch b {
	case Exclusive:
		return `exclusive`
	case Replaceable:
		return `replaceable`
	default:
		return `unknown`
	}
}

type (
	// PriorityInfo is the LockInfo for PriorityStrategy.
	PriorityInfo struct {
		lockman.Header
		Priority         PriorityLevel
		Behavior         Behavior
		BlocksSameAction bool
	}

	// PriorityStrategy implements spec §4.E2: a newly requested lock
	// preempts the current highest-priority lock if it outranks it, is
	// rejected if it is outranked, and at equal priority defers entirely
	// to the held lock's own declared Behavior.
	PriorityStrategy struct {
		id    lockman.StrategyId
		state *lockman.State
	}

	// HigherPriorityExistsError rejects a request outranked by the
	// boundary's current highest-priority lock.
	HigherPriorityExistsError struct {
		Requested      PriorityLevel
		CurrentHighest PriorityLevel
	}

	// SamePriorityExclusiveConflictError rejects a same-priority request
	// because the held lock declared itself Exclusive.
	SamePriorityExclusiveConflictError struct {
		Priority PriorityLevel
	}

	// BlockedBySameActionError rejects a request because either it or an
	// existing same-ActionId lock declared BlocksSameAction.
	BlockedBySameActionError struct {
		ActionId lockman.ActionId
	}
)

// NewPriorityInfo builds a PriorityInfo.
func NewPriorityInfo(strategyId lockman.StrategyId, actionId lockman.ActionId, priority PriorityLevel, behavior Behavior, blocksSameAction bool, opts ...lockman.HeaderOption) PriorityInfo {
	return PriorityInfo{
		Header:           lockman.NewHeader(strategyId, actionId, opts...),
		Priority:         priority,
		Behavior:         behavior,
		BlocksSameAction: blocksSameAction,
	}
}

func (i PriorityInfo) DebugDescription() string {
	return lockman.FormatDebug(`PriorityInfo`, i.ActionId(), i.UniqueId(),
		fmt.Sprintf(`priority=%s`, i.Priority), fmt.Sprintf(`behavior=%s`, i.Behavior))
}

// NewPriorityStrategy constructs a strategy registered under id.
func NewPriorityStrategy(id lockman.StrategyId, reporter lockman.IssueReporter) *PriorityStrategy {
	return &PriorityStrategy{id: id, state: lockman.NewState(reporter)}
}

func (s *PriorityStrategy) StrategyId() lockman.StrategyId { return s.id }

func (s *PriorityStrategy) State() *lockman.State { return s.state }

func (s *PriorityStrategy) CanLock(boundary lockman.BoundaryId, info PriorityInfo) lockman.AcquireResult {
	if info.Priority == PriorityNone {
		return lockman.Success()
	}

	locks := s.state.Locks(boundary)

	if info.BlocksSameAction {
		if s.state.Contains(boundary, info.ActionId()) {
			return lockman.Failure(&BlockedBySameActionError{ActionId: info.ActionId()})
		}
	} else {
		for _, l := range locks {
			p := l.(PriorityInfo)
			if p.ActionId() == info.ActionId() && p.BlocksSameAction {
				return lockman.Failure(&BlockedBySameActionError{ActionId: info.ActionId()})
			}
		}
	}

	current, ok := currentHighest(locks)
	if !ok {
		return lockman.Success()
	}

	switch {
	case current.Priority > info.Priority:
		return lockman.Failure(&HigherPriorityExistsError{Requested: info.Priority, CurrentHighest: current.Priority})

	case current.Priority < info.Priority:
		return lockman.SuccessWithPrecedingCancellation(&lockman.PrecedingActionCancelledError{
			BoundaryId: boundary,
			VictimInfo: current,
		})

	default: // equal priority: the held lock's own Behavior decides
		if current.Behavior == Exclusive {
			return lockman.Failure(&SamePriorityExclusiveConflictError{Priority: current.Priority})
		}
		return lockman.SuccessWithPrecedingCancellation(&lockman.PrecedingActionCancelledError{
			BoundaryId: boundary,
			VictimInfo: current,
		})
	}
}

// currentHighest returns the most recently inserted lock with a non-None
// priority that is eligible to be a preemption victim, i.e. the last such
// element in insertion order whose IsCancellationTarget is true. Locks built
// with lockman.ExemptFromCancellation are skipped entirely: an exempt action
// never blocks via HigherPriorityExists and never surfaces as the victim of
// a SuccessWithPrecedingCancellation (spec §3: IsCancellationTarget "reports
// whether this lock may be the victim of a preceding-cancellation outcome").
func currentHighest(locks []lockman.LockInfo) (PriorityInfo, bool) {
	for i := len(locks) - 1; i >= 0; i-- {
		p := locks[i].(PriorityInfo)
		if p.Priority != PriorityNone && p.IsCancellationTarget() {
			return p, true
		}
	}
	return PriorityInfo{}, false
}

func (s *PriorityStrategy) Lock(boundary lockman.BoundaryId, info PriorityInfo) {
	s.state.Add(boundary, info)
}

func (s *PriorityStrategy) Unlock(boundary lockman.BoundaryId, info PriorityInfo) {
	s.state.Remove(boundary, info)
}

func (s *PriorityStrategy) Cleanup() { s.state.Cleanup() }

func (s *PriorityStrategy) CleanupBoundary(boundary lockman.BoundaryId) {
	s.state.CleanupBoundary(boundary)
}

func (s *PriorityStrategy) CurrentLocks() []lockman.LockInfo {
	var out []lockman.LockInfo
	for _, locks := range s.state.Snapshot() {
		out = append(out, locks...)
	}
	return out
}

func (e *HigherPriorityExistsError) Error() string        { return e.Describe() }
func (e *HigherPriorityExistsError) FailureReason() string { return `higher_priority_exists` }
func (e *HigherPriorityExistsError) Describe() string {
	return fmt.Sprintf(`higher priority exists: requested=%s current=%s`, e.Requested, e.CurrentHighest)
}
func (e *HigherPriorityExistsError) HelpAnchor() string {
	return `lockman/strategy#higher-priority-exists`
}

func (e *SamePriorityExclusiveConflictError) Error() string { return e.Describe() }
func (e *SamePriorityExclusiveConflictError) FailureReason() string {
	return `same_priority_exclusive_conflict`
}
func (e *SamePriorityExclusiveConflictError) Describe() string {
	return fmt.Sprintf(`same priority exclusive conflict: %s`, e.Priority)
}
func (e *SamePriorityExclusiveConflictError) HelpAnchor() string {
	return `lockman/strategy#same-priority-exclusive-conflict`
}

func (e *BlockedBySameActionError) Error() string         { return e.Describe() }
func (e *BlockedBySameActionError) FailureReason() string { return `blocked_by_same_action` }
func (e *BlockedBySameActionError) Describe() string {
	return fmt.Sprintf(`blocked by same action: %s`, e.ActionId)
}
func (e *BlockedBySameActionError) HelpAnchor() string {
	return `lockman/strategy#blocked-by-same-action`
}
