package lockman

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testInfo struct {
	Header
}

func newTestInfo(actionId ActionId) testInfo {
	return testInfo{Header: NewHeader(`test`, actionId)}
}

func TestState_AddContainsRemove(t *testing.T) {
	s := NewState(nil)
	boundary := `B1`

	info := newTestInfo(`fetch`)
	require.False(t, s.Contains(boundary, `fetch`))

	s.Add(boundary, info)
	assert.True(t, s.Contains(boundary, `fetch`))
	assert.Equal(t, 1, s.Count(boundary, `fetch`))

	s.Remove(boundary, info)
	assert.False(t, s.Contains(boundary, `fetch`))
	assert.Equal(t, 0, s.Count(boundary, `fetch`))
}

func TestState_RemoveIsIdempotent(t *testing.T) {
	s := NewState(nil)
	info := newTestInfo(`fetch`)
	s.Add(`B1`, info)
	s.Remove(`B1`, info)

	before := s.Locks(`B1`)
	s.Remove(`B1`, info)
	after := s.Locks(`B1`)
	assert.Equal(t, before, after)
	assert.Empty(t, after)
}

func TestState_OrderedObservability(t *testing.T) {
	s := NewState(nil)
	a := newTestInfo(`a`)
	b := newTestInfo(`b`)
	c := newTestInfo(`c`)

	s.Add(`B1`, a)
	s.Add(`B1`, b)
	s.Add(`B1`, c)

	locks := s.Locks(`B1`)
	require.Len(t, locks, 3)
	assert.Equal(t, a.UniqueId(), locks[0].UniqueId())
	assert.Equal(t, b.UniqueId(), locks[1].UniqueId())
	assert.Equal(t, c.UniqueId(), locks[2].UniqueId())
}

func TestState_ActionIndexSharedAcrossInstances(t *testing.T) {
	s := NewState(nil)
	a1 := newTestInfo(`dup`)
	a2 := newTestInfo(`dup`)

	s.Add(`B1`, a1)
	s.Add(`B1`, a2)

	assert.Equal(t, 2, s.Count(`B1`, `dup`))
	locks := s.LocksForAction(`B1`, `dup`)
	require.Len(t, locks, 2)
	assert.Equal(t, a1.UniqueId(), locks[0].UniqueId())
	assert.Equal(t, a2.UniqueId(), locks[1].UniqueId())

	s.Remove(`B1`, a1)
	assert.Equal(t, 1, s.Count(`B1`, `dup`))
	assert.True(t, s.Contains(`B1`, `dup`))

	s.Remove(`B1`, a2)
	assert.False(t, s.Contains(`B1`, `dup`))
}

func TestState_CleanupBoundary(t *testing.T) {
	s := NewState(nil)
	s.Add(`B1`, newTestInfo(`a`))
	s.Add(`B2`, newTestInfo(`b`))

	s.CleanupBoundary(`B1`)
	assert.Empty(t, s.Locks(`B1`))
	assert.NotEmpty(t, s.Locks(`B2`))

	s.Cleanup()
	assert.Empty(t, s.Locks(`B2`))
}

func TestState_Snapshot(t *testing.T) {
	s := NewState(nil)
	s.Add(`B1`, newTestInfo(`a`))
	s.Add(`B2`, newTestInfo(`b`))

	snap := s.Snapshot()
	assert.Len(t, snap, 2)
	assert.Len(t, snap[`B1`], 1)
	assert.Len(t, snap[`B2`], 1)
}

func TestState_DuplicateInsertReportsIssueAndLeavesStateUnchanged(t *testing.T) {
	var reported []IssueKind
	s := NewState(func(kind IssueKind, message string) {
		reported = append(reported, kind)
	})

	info := newTestInfo(`a`)
	s.Add(`B1`, info)
	before := s.Locks(`B1`)

	s.Add(`B1`, info) // duplicate UniqueId

	assert.Equal(t, before, s.Locks(`B1`))
	require.Len(t, reported, 1)
	assert.Equal(t, IssueDuplicateUniqueId, reported[0])
}

func TestState_NoCrossBoundaryLeakage(t *testing.T) {
	s := NewState(nil)
	s.Add(`B1`, newTestInfo(`a`))
	assert.False(t, s.Contains(`B2`, `a`))
	assert.Empty(t, s.Locks(`B2`))
}
