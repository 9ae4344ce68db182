package strategy

import (
	"fmt"

	"github.com/lockman-go/lockman"
)

type (
	// ConcurrencyLimit caps how many locks may share a ConcurrencyInfo's
	// key at once. The zero value, as returned by Unlimited, means no cap.
	ConcurrencyLimit struct {
		n int // 0 means unlimited
	}

	// ConcurrencyInfo is the LockInfo for ConcurrencyStrategy.
	ConcurrencyInfo struct {
		lockman.Header
		ConcurrencyId string // if empty, the ActionId is used as the key
		Limit         ConcurrencyLimit
	}

	// ConcurrencyStrategy implements spec §4.E4: at most Limit concurrent
	// locks may share a key, where the key is ConcurrencyId or, if unset,
	// the ActionId.
	ConcurrencyStrategy struct {
		id    lockman.StrategyId
		state *lockman.State
	}

	// ConcurrencyLimitReachedError rejects a request because its key
	// already holds Limit concurrent locks. Current is the count observed
	// at rejection time (spec §4.B: ConcurrencyLimitReached(id, limit,
	// current)).
	ConcurrencyLimitReachedError struct {
		Key     string
		Limit   int
		Current int
	}
)

// Unlimited returns a ConcurrencyLimit with no cap.
func Unlimited() ConcurrencyLimit { return ConcurrencyLimit{n: 0} }

// Limited returns a ConcurrencyLimit capping concurrent holders at n, which
// must be >= 1.
func Limited(n int) ConcurrencyLimit {
	if n < 1 {
		panic(`lockman/strategy: Limited requires n >= 1`)
	}
	return ConcurrencyLimit{n: n}
}

func (l ConcurrencyLimit) isUnlimited() bool { return l.n == 0 }

func (l ConcurrencyLimit) String() string {
	if l.isUnlimited() {
		return `unlimited`
	}
	return fmt.Sprintf(`limited(%d)`, l.n)
}

// NewConcurrencyInfo builds a ConcurrencyInfo. An empty concurrencyId falls
// back to actionId as the grouping key.
func NewConcurrencyInfo(strategyId lockman.StrategyId, actionId lockman.ActionId, concurrencyId string, limit ConcurrencyLimit, opts ...lockman.HeaderOption) ConcurrencyInfo {
	return ConcurrencyInfo{
		Header:        lockman.NewHeader(strategyId, actionId, opts...),
		ConcurrencyId: concurrencyId,
		Limit:         limit,
	}
}

func (i ConcurrencyInfo) key() string {
	if i.ConcurrencyId != `` {
		return i.ConcurrencyId
	}
	return string(i.ActionId())
}

func (i ConcurrencyInfo) DebugDescription() string {
	return lockman.FormatDebug(`ConcurrencyInfo`, i.ActionId(), i.UniqueId(),
		`key=`+i.key(), `limit=`+i.Limit.String())
}

// NewConcurrencyStrategy constructs a strategy registered under id.
func NewConcurrencyStrategy(id lockman.StrategyId, reporter lockman.IssueReporter) *ConcurrencyStrategy {
	return &ConcurrencyStrategy{id: id, state: lockman.NewState(reporter)}
}

func (s *ConcurrencyStrategy) StrategyId() lockman.StrategyId { return s.id }

func (s *ConcurrencyStrategy) State() *lockman.State { return s.state }

func (s *ConcurrencyStrategy) CanLock(boundary lockman.BoundaryId, info ConcurrencyInfo) lockman.AcquireResult {
	if info.Limit.isUnlimited() {
		return lockman.Success()
	}

	key := info.key()
	count := 0
	for _, l := range s.state.Locks(boundary) {
		if l.(ConcurrencyInfo).key() == key {
			count++
		}
	}
	if count >= info.Limit.n {
		return lockman.Failure(&ConcurrencyLimitReachedError{Key: key, Limit: info.Limit.n, Current: count})
	}
	return lockman.Success()
}

func (s *ConcurrencyStrategy) Lock(boundary lockman.BoundaryId, info ConcurrencyInfo) {
	s.state.Add(boundary, info)
}

func (s *ConcurrencyStrategy) Unlock(boundary lockman.BoundaryId, info ConcurrencyInfo) {
	s.state.Remove(boundary, info)
}

func (s *ConcurrencyStrategy) Cleanup() { s.state.Cleanup() }

func (s *ConcurrencyStrategy) CleanupBoundary(boundary lockman.BoundaryId) {
	s.state.CleanupBoundary(boundary)
}

func (s *ConcurrencyStrategy) CurrentLocks() []lockman.LockInfo {
	var out []lockman.LockInfo
	for _, locks := range s.state.Snapshot() {
		out = append(out, locks...)
	}
	return out
}

func (e *ConcurrencyLimitReachedError) Error() string         { return e.Describe() }
func (e *ConcurrencyLimitReachedError) FailureReason() string { return `concurrency_limit_reached` }
func (e *ConcurrencyLimitReachedError) Describe() string {
	return fmt.Sprintf(`concurrency limit reached for %q: limit=%d current=%d`, e.Key, e.Limit, e.Current)
}
func (e *ConcurrencyLimitReachedError) HelpAnchor() string {
	return `lockman/strategy#concurrency-limit-reached`
}
