package strategy

import (
	"testing"

	"github.com/lockman-go/lockman"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrencyStrategy_Unlimited_AlwaysSucceeds(t *testing.T) {
	s := NewConcurrencyStrategy(`cc`, nil)
	boundary := lockman.BoundaryId(`b1`)

	for i := 0; i < 10; i++ {
		info := NewConcurrencyInfo(`cc`, `fetch`, `pool`, Unlimited())
		require.True(t, s.CanLock(boundary, info).IsSuccess())
		s.Lock(boundary, info)
	}
}

func TestConcurrencyStrategy_LimitReached(t *testing.T) {
	s := NewConcurrencyStrategy(`cc`, nil)
	boundary := lockman.BoundaryId(`b1`)
	limit := Limited(2)

	a := NewConcurrencyInfo(`cc`, `fetch-a`, `pool`, limit)
	require.True(t, s.CanLock(boundary, a).IsSuccess())
	s.Lock(boundary, a)

	b := NewConcurrencyInfo(`cc`, `fetch-b`, `pool`, limit)
	require.True(t, s.CanLock(boundary, b).IsSuccess())
	s.Lock(boundary, b)

	c := NewConcurrencyInfo(`cc`, `fetch-c`, `pool`, limit)
	result := s.CanLock(boundary, c)
	require.True(t, result.IsFailure())
	failure, _ := result.FailureErr()
	var target *ConcurrencyLimitReachedError
	require.ErrorAs(t, failure, &target)
	assert.Equal(t, `pool`, target.Key)
	assert.Equal(t, 2, target.Limit)
	assert.Equal(t, 2, target.Current)
}

func TestConcurrencyStrategy_FallsBackToActionId(t *testing.T) {
	s := NewConcurrencyStrategy(`cc`, nil)
	boundary := lockman.BoundaryId(`b1`)
	limit := Limited(1)

	a := NewConcurrencyInfo(`cc`, `fetch`, ``, limit)
	s.Lock(boundary, a)

	sameAction := NewConcurrencyInfo(`cc`, `fetch`, ``, limit)
	result := s.CanLock(boundary, sameAction)
	require.True(t, result.IsFailure())

	otherAction := NewConcurrencyInfo(`cc`, `other`, ``, limit)
	assert.True(t, s.CanLock(boundary, otherAction).IsSuccess())
}

func TestConcurrencyStrategy_SlotFreedAfterUnlock(t *testing.T) {
	s := NewConcurrencyStrategy(`cc`, nil)
	boundary := lockman.BoundaryId(`b1`)
	limit := Limited(1)

	a := NewConcurrencyInfo(`cc`, `fetch-a`, `pool`, limit)
	s.Lock(boundary, a)
	s.Unlock(boundary, a)

	b := NewConcurrencyInfo(`cc`, `fetch-b`, `pool`, limit)
	assert.True(t, s.CanLock(boundary, b).IsSuccess())
}

func TestLimited_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { Limited(0) })
}
