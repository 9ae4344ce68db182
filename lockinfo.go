package lockman

import "strings"

type (
	// LockInfo is the shared contract every strategy-specific lock info
	// value must satisfy. Equality of two LockInfo values is defined solely
	// by their UniqueId.
	LockInfo interface {
		StrategyId() StrategyId
		ActionId() ActionId
		UniqueId() UniqueId
		// IsCancellationTarget reports whether this lock may be the victim
		// of a preceding-cancellation outcome. True unless the action was
		// explicitly created exempt.
		IsCancellationTarget() bool
		// DebugDescription renders a single-line, human-readable summary:
		// TypeName(actionId, uniqueId, ...strategy-specific fields...).
		DebugDescription() string
	}

	// Header is the common envelope every concrete LockInfo embeds. It is
	// immutable once constructed.
	Header struct {
		strategyId           StrategyId
		actionId             ActionId
		uniqueId             UniqueId
		isCancellationTarget bool
	}

	// HeaderOption configures a Header at construction time.
	HeaderOption func(*Header)
)

// ExemptFromCancellation marks the action as never eligible to be the
// victim of a preceding-cancellation outcome.
func ExemptFromCancellation() HeaderOption {
	return func(h *Header) { h.isCancellationTarget = false }
}

// NewHeader builds a Header with a freshly generated UniqueId.
func NewHeader(strategyId StrategyId, actionId ActionId, opts ...HeaderOption) Header {
	h := Header{
		strategyId:           strategyId,
		actionId:             actionId,
		uniqueId:             NewUniqueId(),
		isCancellationTarget: true,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func (h Header) StrategyId() StrategyId     { return h.strategyId }
func (h Header) ActionId() ActionId         { return h.actionId }
func (h Header) UniqueId() UniqueId         { return h.uniqueId }
func (h Header) IsCancellationTarget() bool { return h.isCancellationTarget }

// DebugDescription renders the header-only fields; concrete LockInfo
// implementations should call FormatDebug with their type name and any
// strategy-specific fields instead of relying on this directly.
func (h Header) DebugDescription() string {
	return FormatDebug("LockInfo", h.actionId, h.uniqueId)
}

// FormatDebug renders the standard "TypeName(actionId, uniqueId, extra...)"
// debug format shared by every built-in LockInfo.
func FormatDebug(typeName string, actionId ActionId, uniqueId UniqueId, extra ...string) string {
	var b strings.Builder
	b.WriteString(typeName)
	b.WriteByte('(')
	b.WriteString(string(actionId))
	b.WriteString(", ")
	b.WriteString(uniqueId.String())
	for _, e := range extra {
		b.WriteString(", ")
		b.WriteString(e)
	}
	b.WriteByte(')')
	return b.String()
}
