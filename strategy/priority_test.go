package strategy

import (
	"testing"

	"github.com/lockman-go/lockman"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityStrategy_HigherPriorityPreemptsLower(t *testing.T) {
	s := NewPriorityStrategy(`pr`, nil)
	boundary := lockman.BoundaryId(`b1`)

	low := NewPriorityInfo(`pr`, `low-task`, PriorityLow, Exclusive, false)
	require.True(t, s.CanLock(boundary, low).IsSuccess())
	s.Lock(boundary, low)

	high := NewPriorityInfo(`pr`, `high-task`, PriorityHigh, Exclusive, false)
	result := s.CanLock(boundary, high)
	require.Equal(t, lockman.KindSuccessWithPrecedingCancellation, result.Kind())
	cancellation, ok := result.Cancellation()
	require.True(t, ok)
	assert.Equal(t, lockman.ActionId(`low-task`), cancellation.Victim().ActionId())
}

func TestPriorityStrategy_LowerPriorityRejected(t *testing.T) {
	s := NewPriorityStrategy(`pr`, nil)
	boundary := lockman.BoundaryId(`b1`)

	high := NewPriorityInfo(`pr`, `high-task`, PriorityHigh, Exclusive, false)
	s.Lock(boundary, high)

	low := NewPriorityInfo(`pr`, `low-task`, PriorityLow, Exclusive, false)
	result := s.CanLock(boundary, low)
	require.True(t, result.IsFailure())
	failure, _ := result.FailureErr()
	var target *HigherPriorityExistsError
	assert.ErrorAs(t, failure, &target)
}

func TestPriorityStrategy_SamePriorityExclusiveRejected(t *testing.T) {
	s := NewPriorityStrategy(`pr`, nil)
	boundary := lockman.BoundaryId(`b1`)

	held := NewPriorityInfo(`pr`, `first`, PriorityHigh, Exclusive, false)
	s.Lock(boundary, held)

	challenger := NewPriorityInfo(`pr`, `second`, PriorityHigh, Replaceable, false)
	result := s.CanLock(boundary, challenger)
	require.True(t, result.IsFailure())
	failure, _ := result.FailureErr()
	var target *SamePriorityExclusiveConflictError
	assert.ErrorAs(t, failure, &target)
}

func TestPriorityStrategy_SamePriorityReplaceableYields(t *testing.T) {
	s := NewPriorityStrategy(`pr`, nil)
	boundary := lockman.BoundaryId(`b1`)

	held := NewPriorityInfo(`pr`, `first`, PriorityHigh, Replaceable, false)
	s.Lock(boundary, held)

	challenger := NewPriorityInfo(`pr`, `second`, PriorityHigh, Exclusive, false)
	result := s.CanLock(boundary, challenger)
	require.Equal(t, lockman.KindSuccessWithPrecedingCancellation, result.Kind())
}

func TestPriorityStrategy_BlocksSameAction(t *testing.T) {
	s := NewPriorityStrategy(`pr`, nil)
	boundary := lockman.BoundaryId(`b1`)

	first := NewPriorityInfo(`pr`, `task`, PriorityLow, Replaceable, true)
	s.Lock(boundary, first)

	second := NewPriorityInfo(`pr`, `task`, PriorityHigh, Replaceable, false)
	result := s.CanLock(boundary, second)
	require.True(t, result.IsFailure())
	failure, _ := result.FailureErr()
	var target *BlockedBySameActionError
	assert.ErrorAs(t, failure, &target)
}

func TestPriorityStrategy_PriorityNoneAlwaysSucceeds(t *testing.T) {
	s := NewPriorityStrategy(`pr`, nil)
	boundary := lockman.BoundaryId(`b1`)

	held := NewPriorityInfo(`pr`, `first`, PriorityHigh, Exclusive, false)
	s.Lock(boundary, held)

	none := NewPriorityInfo(`pr`, `second`, PriorityNone, Exclusive, false)
	assert.True(t, s.CanLock(boundary, none).IsSuccess())
}

func TestPriorityStrategy_ExemptLockNeverSelectedAsVictim(t *testing.T) {
	s := NewPriorityStrategy(`pr`, nil)
	boundary := lockman.BoundaryId(`b1`)

	exempt := NewPriorityInfo(`pr`, `exempt-task`, PriorityLow, Replaceable, false, lockman.ExemptFromCancellation())
	s.Lock(boundary, exempt)

	high := NewPriorityInfo(`pr`, `high-task`, PriorityHigh, Exclusive, false)
	result := s.CanLock(boundary, high)

	// The only held lock is exempt, so there is no eligible victim: the
	// request succeeds outright rather than preempting it.
	require.Equal(t, lockman.KindSuccess, result.Kind())
}

func TestPriorityStrategy_ExemptLockSkippedInFavorOfEligibleOne(t *testing.T) {
	s := NewPriorityStrategy(`pr`, nil)
	boundary := lockman.BoundaryId(`b1`)

	eligible := NewPriorityInfo(`pr`, `low-task`, PriorityLow, Replaceable, false)
	s.Lock(boundary, eligible)

	exempt := NewPriorityInfo(`pr`, `exempt-task`, PriorityLow, Replaceable, false, lockman.ExemptFromCancellation())
	s.Lock(boundary, exempt)

	high := NewPriorityInfo(`pr`, `high-task`, PriorityHigh, Exclusive, false)
	result := s.CanLock(boundary, high)

	require.Equal(t, lockman.KindSuccessWithPrecedingCancellation, result.Kind())
	cancellation, ok := result.Cancellation()
	require.True(t, ok)
	assert.Equal(t, lockman.ActionId(`low-task`), cancellation.Victim().ActionId())
}
