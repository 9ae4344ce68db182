package strategy

import (
	"testing"

	"github.com/lockman-go/lockman"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleExecutionStrategy_ModeNone_AlwaysSucceeds(t *testing.T) {
	s := NewSingleExecutionStrategy(`se`, nil)
	boundary := lockman.BoundaryId(`b1`)

	a := NewSingleExecutionInfo(`se`, `fetch`, ModeNone)
	require.True(t, s.CanLock(boundary, a).IsSuccess())
	s.Lock(boundary, a)

	b := NewSingleExecutionInfo(`se`, `fetch`, ModeNone)
	assert.True(t, s.CanLock(boundary, b).IsSuccess())
}

func TestSingleExecutionStrategy_ModeBoundary_RejectsSecond(t *testing.T) {
	s := NewSingleExecutionStrategy(`se`, nil)
	boundary := lockman.BoundaryId(`b1`)

	a := NewSingleExecutionInfo(`se`, `fetch`, ModeBoundary)
	require.True(t, s.CanLock(boundary, a).IsSuccess())
	s.Lock(boundary, a)

	b := NewSingleExecutionInfo(`se`, `other`, ModeBoundary)
	result := s.CanLock(boundary, b)
	require.True(t, result.IsFailure())
	failure, ok := result.FailureErr()
	require.True(t, ok)
	var target *BoundaryAlreadyLockedError
	assert.ErrorAs(t, failure, &target)
}

func TestSingleExecutionStrategy_ModeBoundary_AllowsAfterUnlock(t *testing.T) {
	s := NewSingleExecutionStrategy(`se`, nil)
	boundary := lockman.BoundaryId(`b1`)

	a := NewSingleExecutionInfo(`se`, `fetch`, ModeBoundary)
	s.Lock(boundary, a)
	s.Unlock(boundary, a)

	b := NewSingleExecutionInfo(`se`, `other`, ModeBoundary)
	assert.True(t, s.CanLock(boundary, b).IsSuccess())
}

func TestSingleExecutionStrategy_ModeAction_RejectsSameAction(t *testing.T) {
	s := NewSingleExecutionStrategy(`se`, nil)
	boundary := lockman.BoundaryId(`b1`)

	a := NewSingleExecutionInfo(`se`, `fetch`, ModeAction)
	s.Lock(boundary, a)

	sameAction := NewSingleExecutionInfo(`se`, `fetch`, ModeAction)
	result := s.CanLock(boundary, sameAction)
	require.True(t, result.IsFailure())

	otherAction := NewSingleExecutionInfo(`se`, `other`, ModeAction)
	assert.True(t, s.CanLock(boundary, otherAction).IsSuccess())
}

func TestSingleExecutionStrategy_CleanupBoundary(t *testing.T) {
	s := NewSingleExecutionStrategy(`se`, nil)
	boundary := lockman.BoundaryId(`b1`)

	a := NewSingleExecutionInfo(`se`, `fetch`, ModeBoundary)
	s.Lock(boundary, a)
	s.CleanupBoundary(boundary)

	assert.Empty(t, s.CurrentLocks())
}
