package lockman

import (
	"runtime"
	"sync"
	"time"
)

type (
	unlockOptionKind int

	// UnlockOption selects when an UnlockToken's release actually runs
	// (spec §4.G).
	UnlockOption struct {
		kind  unlockOptionKind
		delay time.Duration
	}

	// Scheduler is the small abstraction over the host's task loop the
	// engine posts deferred releases through; it must never be hard-coded
	// to a specific runtime (spec §9). RealScheduler is the package's
	// production default.
	Scheduler interface {
		// Schedule runs f after d, or as soon as possible if d <= 0.
		Schedule(d time.Duration, f func())
	}

	// UnlockToken is the movable handle returned by a successful Acquire.
	// Calling it (directly, or implicitly via finalization if the caller
	// drops it without calling it) releases the lock per its UnlockOption.
	UnlockToken struct {
		boundary        BoundaryId
		info            LockInfo
		strategy        DynStrategy
		option          UnlockOption
		scheduler       Scheduler
		transitionDelay time.Duration
		once            sync.Once
	}
)

const (
	optKindImmediate unlockOptionKind = iota
	optKindNextMainTick
	optKindTransition
	optKindDelayed
)

// Immediate releases the lock synchronously, inline with the call to Call.
func Immediate() UnlockOption { return UnlockOption{kind: optKindImmediate} }

// NextMainTick defers the release to the next iteration of the host's main
// task loop, via the configured Scheduler.
func NextMainTick() UnlockOption { return UnlockOption{kind: optKindNextMainTick} }

// Transition defers the release by the host's platform-appropriate UI
// transition duration (spec §4.G: ~0.25-0.40s), configured on the
// Orchestrator via WithTransitionDelay.
func Transition() UnlockOption { return UnlockOption{kind: optKindTransition} }

// Delayed defers the release by a caller-specified duration.
func Delayed(d time.Duration) UnlockOption {
	return UnlockOption{kind: optKindDelayed, delay: d}
}

// RealScheduler is the default Scheduler: durations <= 0 run on a fresh
// goroutine immediately, positive durations use time.AfterFunc. Hosts with
// their own main-loop (UI frameworks, event loops) should supply their own
// Scheduler implementation instead.
type RealScheduler struct{}

func (RealScheduler) Schedule(d time.Duration, f func()) {
	if d <= 0 {
		go f()
		return
	}
	time.AfterFunc(d, f)
}

func newUnlockToken(boundary BoundaryId, info LockInfo, strategy DynStrategy, option UnlockOption, scheduler Scheduler, transitionDelay time.Duration) *UnlockToken {
	t := &UnlockToken{
		boundary:        boundary,
		info:            info,
		strategy:        strategy,
		option:          option,
		scheduler:       scheduler,
		transitionDelay: transitionDelay,
	}
	runtime.SetFinalizer(t, finalizeUnlockToken)
	return t
}

func finalizeUnlockToken(t *UnlockToken) {
	t.Call()
}

// Call schedules the release per the token's UnlockOption. It is idempotent
// and safe to invoke more than once, and safe to invoke from multiple
// goroutines: only the first call schedules anything.
func (t *UnlockToken) Call() {
	t.once.Do(func() {
		runtime.SetFinalizer(t, nil)
		switch t.option.kind {
		case optKindImmediate:
			t.release()
		case optKindNextMainTick:
			t.scheduler.Schedule(0, t.release)
		case optKindTransition:
			t.scheduler.Schedule(t.transitionDelay, t.release)
		case optKindDelayed:
			t.scheduler.Schedule(t.option.delay, t.release)
		}
	})
}

// Boundary returns the boundary this token releases.
func (t *UnlockToken) Boundary() BoundaryId { return t.boundary }

// Info returns the LockInfo this token releases.
func (t *UnlockToken) Info() LockInfo { return t.info }

func (t *UnlockToken) release() {
	t.strategy.Unlock(t.boundary, t.info)
}
