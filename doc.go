// Package lockman implements an in-process action coordination engine: a
// thread-safe registry of logical locks, indexed by a caller-defined
// boundary and inspected by pluggable strategies.
//
// Before launching a potentially conflicting asynchronous operation,
// application code asks the engine, via an [Orchestrator], whether it may
// proceed. The answer is one of three outcomes (see [AcquireResult]):
// proceed, proceed-but-preempt-a-running-peer, or reject, plus (on the
// first two) an [UnlockToken] the caller uses to release the lock once its
// operation finishes.
//
// The engine is synchronous at its API surface and assumes a multi-threaded
// host; it contains no task runtime or persistence of its own. Deferred
// releases go through a [Scheduler]; the default, [RealScheduler], uses
// goroutines and time.AfterFunc, and hosts may supply their own.
// Cross-process coordination, fairness/queuing of rejected requests,
// priority inheritance, and distributed consensus are explicitly out of
// scope.
package lockman
