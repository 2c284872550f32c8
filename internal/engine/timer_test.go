package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerWarningFiresAfter25Minutes(t *testing.T) {
	var tm Timer
	tm.Start(30)

	for i := 1; i < 1500; i++ {
		ev, ok := tm.Tick()
		require.False(t, ok, "unexpected %s event at tick %d", ev.Kind, i)
	}

	ev, ok := tm.Tick()
	require.True(t, ok)
	assert.Equal(t, TimerEventWarning, ev.Kind)
	assert.Equal(t, 300, ev.RemainingSeconds)
}

func TestTimerCriticalAtOneMinute(t *testing.T) {
	var tm Timer
	tm.Start(2)

	var events []TimerEvent
	for i := 0; i < 60; i++ {
		if ev, ok := tm.Tick(); ok {
			events = append(events, ev)
		}
	}

	require.Len(t, events, 1)
	assert.Equal(t, TimerEventCritical, events[0].Kind)
	assert.Equal(t, 60, events[0].RemainingSeconds)
}

func TestTimerMonotonicAndSingleTimeUp(t *testing.T) {
	var tm Timer
	tm.Start(6)

	prev := tm.Remaining()
	timeUps := 0
	kinds := map[TimerEventKind]int{}

	for i := 0; i < 6*60+500; i++ {
		ev, ok := tm.Tick()
		if ok {
			kinds[ev.Kind]++
			if ev.Kind == TimerEventTimeUp {
				timeUps++
			}
		}
		require.LessOrEqual(t, tm.Remaining(), prev)
		require.GreaterOrEqual(t, tm.Remaining(), 0)
		prev = tm.Remaining()
	}

	assert.Equal(t, 1, timeUps)
	assert.Equal(t, 1, kinds[TimerEventWarning])
	assert.Equal(t, 1, kinds[TimerEventCritical])
	assert.False(t, tm.Active())
	assert.True(t, tm.Expired())
	assert.Equal(t, 0, tm.Remaining())
}

func TestTimerPausedTicksDoNotDecrement(t *testing.T) {
	var tm Timer
	tm.Start(1)
	tm.Tick()
	require.Equal(t, 59, tm.Remaining())

	tm.Pause()
	for i := 0; i < 10; i++ {
		_, ok := tm.Tick()
		assert.False(t, ok)
	}
	assert.Equal(t, 59, tm.Remaining())

	tm.Resume()
	tm.Tick()
	assert.Equal(t, 58, tm.Remaining())
}

func TestTimerResumeAfterExpiryStaysStopped(t *testing.T) {
	var tm Timer
	tm.Start(0)

	ev, ok := tm.Tick()
	require.True(t, ok)
	assert.Equal(t, TimerEventTimeUp, ev.Kind)

	tm.Resume()
	assert.False(t, tm.Active())
	_, ok = tm.Tick()
	assert.False(t, ok)
}

func TestTimerProgressAndDisplay(t *testing.T) {
	var tm Timer
	tm.Start(10)

	assert.Equal(t, 0.0, tm.Progress())
	assert.Equal(t, WarningLevelNone, tm.Display().WarningLevel)

	for i := 0; i < 300; i++ {
		tm.Tick()
	}
	assert.InDelta(t, 0.5, tm.Progress(), 1e-9)
	assert.Equal(t, WarningLevelWarning, tm.Display().WarningLevel)
	assert.Equal(t, 300, tm.Display().RemainingSeconds)

	for i := 0; i < 240; i++ {
		tm.Tick()
	}
	assert.Equal(t, WarningLevelCritical, tm.Display().WarningLevel)

	for i := 0; i < 100; i++ {
		tm.Tick()
	}
	assert.Equal(t, 1.0, tm.Progress())
}

func TestTimerRestoreClamps(t *testing.T) {
	var tm Timer
	tm.Start(5)

	tm.Restore(10_000)
	assert.Equal(t, 300, tm.Remaining())

	tm.Restore(-4)
	assert.Equal(t, 0, tm.Remaining())

	ev, ok := tm.Tick()
	require.True(t, ok)
	assert.Equal(t, TimerEventTimeUp, ev.Kind)
}
