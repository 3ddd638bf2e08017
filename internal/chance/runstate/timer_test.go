package runstate_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/chance/internal/chance/runstate"
)

func TestTimer_FiresUnderLock(t *testing.T) {
	var mu sync.Mutex
	clock := runstate.NewManualClock()
	timer := runstate.NewTimer(&mu, clock)

	fired := 0
	mu.Lock()
	timer.Schedule(100*time.Millisecond, func() { fired++ })
	assert.True(t, timer.Armed())
	mu.Unlock()

	clock.Advance(99 * time.Millisecond)
	assert.Equal(t, 0, fired)
	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)

	mu.Lock()
	assert.False(t, timer.Armed())
	mu.Unlock()
}

func TestTimer_ScheduleSupersedesPending(t *testing.T) {
	var mu sync.Mutex
	clock := runstate.NewManualClock()
	timer := runstate.NewTimer(&mu, clock)

	var got []string
	mu.Lock()
	timer.Schedule(50*time.Millisecond, func() { got = append(got, "first") })
	timer.Schedule(80*time.Millisecond, func() { got = append(got, "second") })
	mu.Unlock()

	clock.Advance(time.Second)
	assert.Equal(t, []string{"second"}, got)
}

func TestTimer_CancelAndClose(t *testing.T) {
	var mu sync.Mutex
	clock := runstate.NewManualClock()
	timer := runstate.NewTimer(&mu, clock)

	fired := 0
	mu.Lock()
	timer.Schedule(10*time.Millisecond, func() { fired++ })
	timer.Cancel()
	mu.Unlock()
	clock.Advance(time.Second)
	assert.Equal(t, 0, fired)

	mu.Lock()
	require.True(t, timer.Schedule(10*time.Millisecond, func() { fired++ }))
	timer.Close()
	assert.False(t, timer.Schedule(10*time.Millisecond, func() { fired++ }), "closed timer refuses")
	mu.Unlock()
	clock.Advance(time.Second)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 0, clock.Pending())
}

func TestTimer_ChainedCallbacksRunInOrder(t *testing.T) {
	var mu sync.Mutex
	clock := runstate.NewManualClock()
	timer := runstate.NewTimer(&mu, clock)

	var stamps []time.Duration
	start := clock.Now()
	var step func()
	step = func() {
		stamps = append(stamps, clock.Now().Sub(start))
		if len(stamps) < 4 {
			timer.Schedule(30*time.Millisecond, step)
		}
	}
	mu.Lock()
	timer.Schedule(30*time.Millisecond, step)
	mu.Unlock()

	clock.Advance(time.Second)
	assert.Equal(t, []time.Duration{
		30 * time.Millisecond, 60 * time.Millisecond, 90 * time.Millisecond, 120 * time.Millisecond,
	}, stamps)
}

// A callback already fired on the real clock but blocked on the owner's lock
// must not run once Close has been called under that lock.
func TestTimer_RealScheduler_CloseBeatsBlockedCallback(t *testing.T) {
	var mu sync.Mutex
	timer := runstate.NewTimer(&mu, runstate.RealScheduler{})

	var called atomic.Int32
	mu.Lock()
	timer.Schedule(5*time.Millisecond, func() { called.Add(1) })
	time.Sleep(30 * time.Millisecond) // callback fires and blocks on mu
	timer.Close()
	mu.Unlock()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), called.Load())
}

func TestTimer_RealScheduler_Fires(t *testing.T) {
	var mu sync.Mutex
	timer := runstate.NewTimer(&mu, runstate.RealScheduler{})

	done := make(chan struct{})
	mu.Lock()
	timer.Schedule(10*time.Millisecond, func() { close(done) })
	mu.Unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}
