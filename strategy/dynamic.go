package strategy

import (
	"fmt"

	"github.com/lockman-go/lockman"
)

type (
	// ConditionFunc is evaluated exactly once per CanLock call.
	ConditionFunc func() lockman.AcquireResult

	// DynamicInfo is the LockInfo for DynamicStrategy. Condition supplies
	// arbitrary caller-defined acceptance logic.
	DynamicInfo struct {
		lockman.Header
		Condition ConditionFunc
	}

	// DynamicStrategy implements spec §4.E5: the caller's own ConditionFunc
	// decides CanLock. Unlocking removes every lock sharing the unlocked
	// ActionId, not just the one UniqueId (spec §9 open question 2): this
	// strategy's Lock entries are a single logical hold that may have been
	// observed under more than one UniqueId if the caller re-evaluated the
	// same action concurrently.
	DynamicStrategy struct {
		id    lockman.StrategyId
		state *lockman.State
	}

	// ConditionNotMetError is the built-in, generic rejection shape a
	// ConditionFunc may return (spec §4.B: "ConditionNotMet(actionId,
	// hint?)"), with an optional human-readable Hint. A ConditionFunc is
	// equally free to return any other FailureError of its own; CanLock
	// never rewraps either shape (spec §4.E5: "returns its result
	// verbatim").
	ConditionNotMetError struct {
		ActionId lockman.ActionId
		Hint     string
	}
)

// NewConditionNotMetError builds the built-in ConditionNotMetError a
// ConditionFunc returns for a generic rejection. hint may be empty.
func NewConditionNotMetError(actionId lockman.ActionId, hint string) *ConditionNotMetError {
	return &ConditionNotMetError{ActionId: actionId, Hint: hint}
}

// NewDynamicInfo builds a DynamicInfo. condition must not be nil.
func NewDynamicInfo(strategyId lockman.StrategyId, actionId lockman.ActionId, condition ConditionFunc, opts ...lockman.HeaderOption) DynamicInfo {
	if condition == nil {
		panic(`lockman/strategy: DynamicInfo requires a non-nil Condition`)
	}
	return DynamicInfo{
		Header:    lockman.NewHeader(strategyId, actionId, opts...),
		Condition: condition,
	}
}

func (i DynamicInfo) DebugDescription() string {
	return lockman.FormatDebug(`DynamicInfo`, i.ActionId(), i.UniqueId())
}

// NewDynamicStrategy constructs a strategy registered under id.
func NewDynamicStrategy(id lockman.StrategyId, reporter lockman.IssueReporter) *DynamicStrategy {
	return &DynamicStrategy{id: id, state: lockman.NewState(reporter)}
}

func (s *DynamicStrategy) StrategyId() lockman.StrategyId { return s.id }

func (s *DynamicStrategy) State() *lockman.State { return s.state }

// CanLock evaluates info.Condition exactly once and returns its result
// verbatim (spec §4.E5): whatever FailureError or CancellationError the
// thunk produced reaches the caller unchanged, with no wrapping.
func (s *DynamicStrategy) CanLock(_ lockman.BoundaryId, info DynamicInfo) lockman.AcquireResult {
	return info.Condition()
}

func (s *DynamicStrategy) Lock(boundary lockman.BoundaryId, info DynamicInfo) {
	s.state.Add(boundary, info)
}

// Unlock releases every lock sharing info's ActionId within boundary, not
// only the entry carrying info's own UniqueId.
func (s *DynamicStrategy) Unlock(boundary lockman.BoundaryId, info DynamicInfo) {
	s.state.RemoveByActionId(boundary, info.ActionId())
}

func (s *DynamicStrategy) Cleanup() { s.state.Cleanup() }

func (s *DynamicStrategy) CleanupBoundary(boundary lockman.BoundaryId) {
	s.state.CleanupBoundary(boundary)
}

func (s *DynamicStrategy) CurrentLocks() []lockman.LockInfo {
	var out []lockman.LockInfo
	for _, locks := range s.state.Snapshot() {
		out = append(out, locks...)
	}
	return out
}

func (e *ConditionNotMetError) Error() string { return e.Describe() }

func (e *ConditionNotMetError) FailureReason() string { return `condition_not_met` }

func (e *ConditionNotMetError) Describe() string {
	if e.Hint != `` {
		return fmt.Sprintf(`condition not met for %s: %s`, e.ActionId, e.Hint)
	}
	return fmt.Sprintf(`condition not met for %s`, e.ActionId)
}

func (e *ConditionNotMetError) HelpAnchor() string {
	return `lockman/strategy#condition-not-met`
}
