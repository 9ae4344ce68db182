package strategy

import (
	"github.com/lockman-go/lockman"
)

const (
	minCompositeSubStrategies = 2
	maxCompositeSubStrategies = 5
)

type (
	// CompositeInfo is the LockInfo for CompositeStrategy. SubInfos must
	// line up positionally with the sub-strategies passed to
	// NewCompositeStrategy.
	CompositeInfo struct {
		lockman.Header
		SubInfos []lockman.LockInfo
	}

	// CompositeStrategy implements spec §4.E6: it evaluates 2-5
	// sub-strategies left to right as a single atomic unit. CanLock fails
	// fast on the first sub-strategy Failure, discarding any earlier
	// successes (no Lock call has happened yet, so there is nothing to
	// unwind). Every SuccessWithPrecedingCancellation encountered along the
	// way contributes its victim to one CompositeCancellationError.
	// Atomicity across the whole evaluation is guaranteed by the
	// Orchestrator's per-boundary gate, which is already held for the
	// duration of one Acquire call; CompositeStrategy itself does no
	// locking of its own.
	CompositeStrategy struct {
		id   lockman.StrategyId
		subs []lockman.DynStrategy
	}
)

// NewCompositeInfo builds a CompositeInfo. subInfos must contain between 2
// and 5 entries, positionally matching the sub-strategies of the
// CompositeStrategy it will be submitted to.
func NewCompositeInfo(strategyId lockman.StrategyId, actionId lockman.ActionId, subInfos []lockman.LockInfo, opts ...lockman.HeaderOption) CompositeInfo {
	if len(subInfos) < minCompositeSubStrategies || len(subInfos) > maxCompositeSubStrategies {
		panic(`lockman/strategy: CompositeInfo requires between 2 and 5 sub-infos`)
	}
	return CompositeInfo{
		Header:   lockman.NewHeader(strategyId, actionId, opts...),
		SubInfos: subInfos,
	}
}

func (i CompositeInfo) DebugDescription() string {
	return lockman.FormatDebug(`CompositeInfo`, i.ActionId(), i.UniqueId())
}

// NewCompositeStrategy constructs a strategy registered under id, composing
// subs (2-5 of them) in the given order.
func NewCompositeStrategy(id lockman.StrategyId, subs ...lockman.DynStrategy) *CompositeStrategy {
	if len(subs) < minCompositeSubStrategies || len(subs) > maxCompositeSubStrategies {
		panic(`lockman/strategy: CompositeStrategy requires between 2 and 5 sub-strategies`)
	}
	return &CompositeStrategy{id: id, subs: subs}
}

func (s *CompositeStrategy) StrategyId() lockman.StrategyId { return s.id }

func (s *CompositeStrategy) CanLock(boundary lockman.BoundaryId, info CompositeInfo) lockman.AcquireResult {
	if len(info.SubInfos) != len(s.subs) {
		panic(`lockman/strategy: CompositeInfo.SubInfos length does not match CompositeStrategy's sub-strategy count`)
	}

	var victims []lockman.LockInfo
	for idx, sub := range s.subs {
		result := sub.CanLock(boundary, info.SubInfos[idx])
		if inner, ok := result.FailureErr(); ok {
			return lockman.Failure(&lockman.StrategyFailedError{Index: idx, Inner: inner})
		}
		if cancellation, ok := result.Cancellation(); ok {
			victims = append(victims, cancellation.Victim())
		}
	}

	if len(victims) == 0 {
		return lockman.Success()
	}
	return lockman.SuccessWithPrecedingCancellation(&lockman.CompositeCancellationError{
		Bound:   boundary,
		Victims: victims,
	})
}

func (s *CompositeStrategy) Lock(boundary lockman.BoundaryId, info CompositeInfo) {
	for idx, sub := range s.subs {
		sub.Lock(boundary, info.SubInfos[idx])
	}
}

func (s *CompositeStrategy) Unlock(boundary lockman.BoundaryId, info CompositeInfo) {
	for idx := len(s.subs) - 1; idx >= 0; idx-- {
		s.subs[idx].Unlock(boundary, info.SubInfos[idx])
	}
}

func (s *CompositeStrategy) Cleanup() {
	for _, sub := range s.subs {
		sub.Cleanup()
	}
}

func (s *CompositeStrategy) CleanupBoundary(boundary lockman.BoundaryId) {
	for _, sub := range s.subs {
		sub.CleanupBoundary(boundary)
	}
}

func (s *CompositeStrategy) CurrentLocks() []lockman.LockInfo {
	var out []lockman.LockInfo
	for _, sub := range s.subs {
		out = append(out, sub.CurrentLocks()...)
	}
	return out
}
