package countdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTick_DecrementsAndFiresDoneOnce(t *testing.T) {
	var ticks []int
	done := 0
	c := New(time.Hour, func(r int) { ticks = append(ticks, r) }, func() { done++ })

	c.Start(3)
	defer c.Stop()
	require.True(t, c.Active())

	assert.Equal(t, 2, c.Tick())
	assert.Equal(t, 1, c.Tick())
	assert.Equal(t, 0, c.Tick())
	assert.Equal(t, 0, c.Tick())

	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.Equal(t, 1, done)
	assert.False(t, c.Active())
}

func TestStop_MakesCallbacksNoOps(t *testing.T) {
	called := false
	c := New(time.Hour, func(int) { called = true }, func() { called = true })

	c.Start(5)
	c.Stop()

	assert.Equal(t, 0, c.Tick())
	assert.False(t, called)
	assert.False(t, c.Active())
	assert.Equal(t, 0, c.Remaining())
}

func TestStart_RestartsFromNewValue(t *testing.T) {
	c := New(time.Hour, nil, nil)
	c.Start(60)
	c.Tick()
	c.Start(60)
	defer c.Stop()

	assert.Equal(t, 60, c.Remaining())
}

func TestStart_ZeroIsInactive(t *testing.T) {
	c := New(time.Hour, nil, nil)
	c.Start(0)
	assert.False(t, c.Active())
}

func TestBackgroundLoop_ReachesZero(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	c := New(time.Millisecond, nil, wg.Done)

	c.Start(3)
	wg.Wait()

	assert.Equal(t, 0, c.Remaining())
	assert.False(t, c.Active())
}

func TestTicks(t *testing.T) {
	tests := []struct {
		in       time.Duration
		n        int
		interval time.Duration
	}{
		{3 * time.Second, 3, time.Second},
		{1500 * time.Millisecond, 2, time.Second},
		{60 * time.Second, 60, time.Second},
		{200 * time.Millisecond, 1, 200 * time.Millisecond},
		{0, 1, time.Millisecond},
	}
	for _, tt := range tests {
		n, interval := Ticks(tt.in)
		assert.Equal(t, tt.n, n, tt.in.String())
		assert.Equal(t, tt.interval, interval, tt.in.String())
	}
}
