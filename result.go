package lockman

// ResultKind enumerates the three possible outcomes of an acquisition
// attempt (spec §4.B).
type ResultKind int

const (
	// KindSuccess means the request does not conflict with any held lock.
	KindSuccess ResultKind = iota
	// KindSuccessWithPrecedingCancellation means the request may proceed,
	// but the caller must cancel and unlock the victim carried in the
	// result's CancellationError.
	KindSuccessWithPrecedingCancellation
	// KindFailure means the request is rejected; the caller must not
	// proceed.
	KindFailure
)

func (k ResultKind) String() string {
	switch k {
	case KindSuccess:
		return `Success`
	case KindSuccessWithPrecedingCancellation:
		return `SuccessWithPrecedingCancellation`
	case KindFailure:
		return `Failure`
	default:
		return `Unknown`
	}
}

// AcquireResult is the three-valued outcome returned by Strategy.CanLock and
// Orchestrator.Acquire.
type AcquireResult struct {
	kind         ResultKind
	cancellation CancellationError
	failure      FailureError
}

// Success builds a Success outcome.
func Success() AcquireResult {
	return AcquireResult{kind: KindSuccess}
}

// SuccessWithPrecedingCancellation builds a success outcome that requires
// the caller to cancel and unlock err's victim before proceeding.
func SuccessWithPrecedingCancellation(err CancellationError) AcquireResult {
	if err == nil {
		panic(`lockman: nil CancellationError`)
	}
	return AcquireResult{kind: KindSuccessWithPrecedingCancellation, cancellation: err}
}

// Failure builds a rejected outcome.
func Failure(err FailureError) AcquireResult {
	if err == nil {
		panic(`lockman: nil FailureError`)
	}
	return AcquireResult{kind: KindFailure, failure: err}
}

// Kind reports which of the three variants r is.
func (r AcquireResult) Kind() ResultKind { return r.kind }

// IsSuccess reports whether r is Success or SuccessWithPrecedingCancellation
// — i.e. whether the caller may proceed.
func (r AcquireResult) IsSuccess() bool {
	return r.kind == KindSuccess || r.kind == KindSuccessWithPrecedingCancellation
}

// IsFailure reports whether r is Failure.
func (r AcquireResult) IsFailure() bool { return r.kind == KindFailure }

// Cancellation returns the cancellation payload and true, if r is
// KindSuccessWithPrecedingCancellation.
func (r AcquireResult) Cancellation() (CancellationError, bool) {
	if r.kind != KindSuccessWithPrecedingCancellation {
		return nil, false
	}
	return r.cancellation, true
}

// FailureErr returns the failure payload and true, if r is KindFailure.
func (r AcquireResult) FailureErr() (FailureError, bool) {
	if r.kind != KindFailure {
		return nil, false
	}
	return r.failure, true
}

// Describe renders a single-line summary of r, delegating to the payload's
// Describe method where one exists.
func (r AcquireResult) Describe() string {
	switch r.kind {
	case KindSuccess:
		return `Success`
	case KindSuccessWithPrecedingCancellation:
		return `SuccessWithPrecedingCancellation: ` + r.cancellation.Describe()
	case KindFailure:
		return `Failure: ` + r.failure.Describe()
	default:
		return `Unknown`
	}
}
