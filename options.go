package lockman

import "time"

// OrchestratorOption configures an Orchestrator at construction time.
type OrchestratorOption func(*Orchestrator)

// WithRegistry overrides the registry an Orchestrator resolves strategies
// from. Defaults to DefaultRegistry().
func WithRegistry(reg *Registry) OrchestratorOption {
	return func(o *Orchestrator) { o.registry = reg }
}

// WithScheduler overrides the Scheduler used for NextMainTick, Transition,
// and Delayed unlock options. Defaults to RealScheduler{}.
func WithScheduler(s Scheduler) OrchestratorOption {
	return func(o *Orchestrator) { o.scheduler = s }
}

// WithTransitionDelay configures the duration Transition-option unlock
// tokens wait before releasing, mapping the engine's concept of a
// platform-appropriate UI transition to a concrete value (spec §4.G,
// §6 transition_delay_for_platform). Defaults to 300ms.
func WithTransitionDelay(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.transitionDelay = d }
}

// WithLogging enables structured logging, via hook, of the CanLock
// evaluation made by every Acquire call.
// If hook is nil, DefaultLoggingHook is used.
func WithLogging(enabled bool, hook LoggingHook) OrchestratorOption {
	return func(o *Orchestrator) {
		o.loggingEnabled = enabled
		if hook != nil {
			o.loggingHook = hook
		}
	}
}

// WithIssueReporter overrides the IssueReporter the Orchestrator exposes
// through its IssueReporter method. The Orchestrator does not report
// through it itself, and it does not change the reporter of any existing
// State: a strategy uses it only if it is passed to that strategy's
// constructor (and from there to NewState).
func WithIssueReporter(reporter IssueReporter) OrchestratorOption {
	return func(o *Orchestrator) {
		if reporter != nil {
			o.issueReporter = reporter
		}
	}
}
