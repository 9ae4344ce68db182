package lockman

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireResult_Success(t *testing.T) {
	r := Success()
	assert.True(t, r.IsSuccess())
	assert.False(t, r.IsFailure())
	assert.Equal(t, KindSuccess, r.Kind())
}

func TestAcquireResult_Failure(t *testing.T) {
	err := &StrategyNotRegisteredError{Id: `x`}
	r := Failure(err)
	assert.False(t, r.IsSuccess())
	assert.True(t, r.IsFailure())

	got, ok := r.FailureErr()
	require.True(t, ok)
	assert.Same(t, err, got)

	_, ok = r.Cancellation()
	assert.False(t, ok)
}

func TestAcquireResult_SuccessWithPrecedingCancellation(t *testing.T) {
	victim := newTestInfo(`victim`)
	err := &PrecedingActionCancelledError{BoundaryId: `B1`, VictimInfo: victim}
	r := SuccessWithPrecedingCancellation(err)

	assert.True(t, r.IsSuccess())
	c, ok := r.Cancellation()
	require.True(t, ok)
	assert.Equal(t, victim.UniqueId(), c.Victim().UniqueId())
	assert.Equal(t, BoundaryId(`B1`), c.Boundary())
}

func TestAcquireResult_PanicsOnNilPayload(t *testing.T) {
	assert.Panics(t, func() { Failure(nil) })
	assert.Panics(t, func() { SuccessWithPrecedingCancellation(nil) })
}
