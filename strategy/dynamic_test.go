package strategy

import (
	"testing"

	"github.com/lockman-go/lockman"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicStrategy_ConditionSuccessGranted(t *testing.T) {
	s := NewDynamicStrategy(`dyn`, nil)
	boundary := lockman.BoundaryId(`b1`)

	info := NewDynamicInfo(`dyn`, `fetch`, func() lockman.AcquireResult { return lockman.Success() })
	assert.True(t, s.CanLock(boundary, info).IsSuccess())
}

func TestDynamicStrategy_ConditionFailurePassedThroughVerbatim(t *testing.T) {
	s := NewDynamicStrategy(`dyn`, nil)
	boundary := lockman.BoundaryId(`b1`)

	inner := &testConditionError{}
	info := NewDynamicInfo(`dyn`, `fetch`, func() lockman.AcquireResult { return lockman.Failure(inner) })
	result := s.CanLock(boundary, info)
	require.True(t, result.IsFailure())
	failure, _ := result.FailureErr()
	assert.Same(t, inner, failure)
}

func TestDynamicStrategy_BuiltInConditionNotMetError(t *testing.T) {
	s := NewDynamicStrategy(`dyn`, nil)
	boundary := lockman.BoundaryId(`b1`)

	info := NewDynamicInfo(`dyn`, `fetch`, func() lockman.AcquireResult {
		return lockman.Failure(NewConditionNotMetError(`fetch`, `rate limited`))
	})
	result := s.CanLock(boundary, info)
	require.True(t, result.IsFailure())
	failure, _ := result.FailureErr()
	var target *ConditionNotMetError
	require.ErrorAs(t, failure, &target)
	assert.Equal(t, lockman.ActionId(`fetch`), target.ActionId)
	assert.Equal(t, `rate limited`, target.Hint)
}

func TestDynamicStrategy_ConditionEvaluatedOncePerCall(t *testing.T) {
	s := NewDynamicStrategy(`dyn`, nil)
	boundary := lockman.BoundaryId(`b1`)

	calls := 0
	info := NewDynamicInfo(`dyn`, `fetch`, func() lockman.AcquireResult {
		calls++
		return lockman.Success()
	})
	s.CanLock(boundary, info)
	assert.Equal(t, 1, calls)
}

func TestDynamicStrategy_UnlockRemovesEveryLockSharingActionId(t *testing.T) {
	s := NewDynamicStrategy(`dyn`, nil)
	boundary := lockman.BoundaryId(`b1`)

	first := NewDynamicInfo(`dyn`, `fetch`, func() lockman.AcquireResult { return lockman.Success() })
	second := NewDynamicInfo(`dyn`, `fetch`, func() lockman.AcquireResult { return lockman.Success() })
	s.Lock(boundary, first)
	s.Lock(boundary, second)
	require.Len(t, s.CurrentLocks(), 2)

	s.Unlock(boundary, first)
	assert.Empty(t, s.CurrentLocks())
}

func TestNewDynamicInfo_PanicsOnNilCondition(t *testing.T) {
	assert.Panics(t, func() { NewDynamicInfo(`dyn`, `fetch`, nil) })
}

type testConditionError struct{}

func (e *testConditionError) Error() string         { return `condition failed` }
func (e *testConditionError) FailureReason() string { return `test_condition_failed` }
func (e *testConditionError) Describe() string      { return `condition failed` }
func (e *testConditionError) HelpAnchor() string    { return `` }
