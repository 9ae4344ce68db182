package lockman

import (
	"os"

	"github.com/rs/zerolog"
)

type (
	// IssueKind classifies a non-fatal diagnostic reported by the engine
	// (spec §7: invariant violations are never silently swallowed).
	IssueKind string

	// IssueReporter receives non-fatal diagnostics: broken invariants,
	// programmer errors that the engine can recover from by leaving state
	// unchanged. The default, installed by NewState when nil is passed,
	// logs via zerolog at warn level, mirroring the teacher's
	// debug-build-prints default (spec §6 issue_reporter).
	IssueReporter func(kind IssueKind, message string)

	// CanLockEvent is the structured record emitted once per Acquire call,
	// for its CanLock evaluation, when logging is enabled on the
	// Orchestrator (spec §4.I, §6 logging_enabled). Strategy.CanLock called
	// directly emits nothing.
	CanLockEvent struct {
		Strategy  StrategyId
		Boundary  BoundaryId
		Action    ActionId
		Unique    UniqueId
		Result    ResultKind
		Reason    string
		Cancelled bool
	}

	// LoggingHook is invoked with every CanLockEvent when logging is
	// enabled on the Orchestrator.
	LoggingHook func(CanLockEvent)
)

const (
	IssueDuplicateUniqueId IssueKind = `duplicate_unique_id`
	IssueBrokenInvariant   IssueKind = `broken_invariant`
	IssueConditionPanic    IssueKind = `condition_panic`
)

// defaultLogger is the package-wide zerolog sink used by the default
// IssueReporter and the default LoggingHook, matching logiface-zerolog's
// console-writer default for unconfigured debug builds.
var defaultLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func noopIssueReporter(IssueKind, string) {}

// DefaultIssueReporter logs kind/message at warn level via the package's
// default zerolog logger.
func DefaultIssueReporter(kind IssueKind, message string) {
	defaultLogger.Warn().Str(`issue`, string(kind)).Msg(message)
}

// DefaultLoggingHook logs a CanLockEvent via the package's default zerolog
// logger, one structured line per event.
func DefaultLoggingHook(ev CanLockEvent) {
	e := defaultLogger.Info().
		Str(`strategy`, string(ev.Strategy)).
		Interface(`boundary`, ev.Boundary).
		Str(`action`, string(ev.Action)).
		Str(`unique_id`, ev.Unique.String()).
		Str(`result`, ev.Result.String()).
		Bool(`cancelled`, ev.Cancelled)
	if ev.Reason != `` {
		e = e.Str(`reason`, ev.Reason)
	}
	e.Msg(`lockman: can_lock`)
}

// SetDefaultLogWriter swaps the writer the package's default zerolog logger
// writes to; intended for tests that want to capture log output.
func SetDefaultLogWriter(w zerolog.ConsoleWriter) {
	defaultLogger = zerolog.New(w).With().Timestamp().Logger()
}
