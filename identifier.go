package lockman

import (
	"fmt"

	"github.com/google/uuid"
)

type (
	// BoundaryId is an opaque, caller-supplied scope identity (a screen, a
	// feature, a session). The engine never inspects it beyond equality and
	// use as a map key — the underlying value must be comparable, or any
	// operation that indexes by boundary will panic, same as indexing a Go
	// map with an uncomparable key.
	BoundaryId any

	// ActionId names a kind of action, e.g. "fetchUser". It is not unique:
	// many concurrent lock instances may share one.
	ActionId string

	// StrategyId identifies a registered strategy implementation. It may
	// encode configuration, e.g. "ConcurrencyLimited:api".
	StrategyId string

	// UniqueId is a freshly generated identifier attached to a single
	// LockInfo instance. Two infos are equal iff their UniqueId is equal.
	UniqueId struct {
		id uuid.UUID
	}
)

// for testing purposes
var newUUID = uuid.NewRandom

// NewUniqueId generates a fresh UniqueId. Panics if the underlying random
// source is exhausted (practically unreachable).
func NewUniqueId() UniqueId {
	id, err := newUUID()
	if err != nil {
		panic(fmt.Errorf(`lockman: failed to generate unique id: %w`, err))
	}
	return UniqueId{id: id}
}

// String renders the UniqueId in canonical UUID form.
func (x UniqueId) String() string {
	return x.id.String()
}

// IsZero reports whether x is the zero value (never produced by NewUniqueId).
func (x UniqueId) IsZero() bool {
	return x.id == uuid.Nil
}
