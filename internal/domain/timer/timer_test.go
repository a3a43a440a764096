package timer_test

import (
	"testing"

	"github.com/rpggio/turnkeeper/internal/domain/timer"
	"github.com/stretchr/testify/require"
)

func defaultOptions(mode timer.Mode) timer.Options {
	return timer.Options{
		Mode:           mode,
		AllowPause:     true,
		AllowReset:     true,
		WarningSeconds: 120,
	}
}

func tickN(tm *timer.Timer, n int) []timer.Event {
	var events []timer.Event
	for i := 0; i < n; i++ {
		events = append(events, tm.Tick()...)
	}
	return events
}

func TestFormatClock(t *testing.T) {
	cases := map[int]string{
		0:    "0:00",
		5:    "0:05",
		65:   "1:05",
		600:  "10:00",
		3599: "59:59",
		-20:  "-0:20",
		-125: "-2:05",
	}
	for in, want := range cases {
		require.Equal(t, want, timer.FormatClock(in), "seconds=%d", in)
	}
}

func TestCountdown_RunsIntoOvertime(t *testing.T) {
	tm := timer.New(defaultOptions(timer.ModeCountdown))
	require.NoError(t, tm.LoadEntry(60))
	require.Equal(t, 60, tm.Values().Counter)
	require.NoError(t, tm.Start())

	tickN(tm, 60)
	require.Equal(t, 0, tm.Values().Counter)
	require.Equal(t, 0, tm.TimeRemaining())
	require.False(t, tm.IsOvertime())

	tickN(tm, 20)
	require.Equal(t, -20, tm.Values().Counter)
	require.True(t, tm.IsOvertime())
	require.Equal(t, 20, tm.Overtime())
	require.Equal(t, 80, tm.Elapsed())
	require.Equal(t, 100, tm.ProgressPercent())

	snap := tm.Snapshot()
	require.Equal(t, "-0:20", snap.Display)
	require.Equal(t, "+0:20", snap.RemainingLabel)
}

func TestCountUp_RunsIntoOvertime(t *testing.T) {
	tm := timer.New(defaultOptions(timer.ModeCountUp))
	require.NoError(t, tm.LoadEntry(60))
	require.Equal(t, 0, tm.Values().Counter)
	require.NoError(t, tm.Start())

	tickN(tm, 30)
	require.Equal(t, 30, tm.TimeRemaining())
	require.Equal(t, 50, tm.ProgressPercent())

	tickN(tm, 45)
	require.Equal(t, 75, tm.Values().Counter)
	require.Equal(t, 15, tm.Overtime())
	require.Equal(t, 75, tm.Elapsed())
	require.True(t, tm.IsOvertime())
}

func TestEarlyFinishHasNegativeOvertime(t *testing.T) {
	tm := timer.New(defaultOptions(timer.ModeCountdown))
	require.NoError(t, tm.LoadEntry(300))
	require.NoError(t, tm.Start())
	tickN(tm, 100)

	tm.Stop()
	require.Equal(t, timer.StateIdle, tm.State())
	require.Equal(t, -200, tm.Overtime())
	require.Equal(t, 100, tm.Elapsed())
}

func TestTick_IgnoredUnlessRunning(t *testing.T) {
	tm := timer.New(defaultOptions(timer.ModeCountdown))
	require.NoError(t, tm.LoadEntry(60))

	tickN(tm, 5)
	require.Equal(t, 60, tm.Values().Counter)

	require.NoError(t, tm.Start())
	tickN(tm, 5)
	require.NoError(t, tm.Pause())
	require.Equal(t, timer.StatePaused, tm.State())
	tickN(tm, 5)
	require.Equal(t, 55, tm.Values().Counter)

	require.NoError(t, tm.Resume())
	tickN(tm, 5)
	require.Equal(t, 50, tm.Values().Counter)
}

func TestPauseDisabled(t *testing.T) {
	opts := defaultOptions(timer.ModeCountdown)
	opts.AllowPause = false
	tm := timer.New(opts)
	require.NoError(t, tm.LoadEntry(60))
	require.NoError(t, tm.Start())

	require.ErrorIs(t, tm.Pause(), timer.ErrPauseDisabled)
	require.Equal(t, timer.StateRunning, tm.State())
}

func TestReset(t *testing.T) {
	tm := timer.New(defaultOptions(timer.ModeCountdown))
	require.NoError(t, tm.LoadEntry(60))
	require.NoError(t, tm.Start())
	tickN(tm, 70)

	require.NoError(t, tm.Reset())
	require.Equal(t, timer.StateIdle, tm.State())
	require.Equal(t, 60, tm.Values().Counter)
	require.False(t, tm.Values().ExpiryFired)

	opts := defaultOptions(timer.ModeCountdown)
	opts.AllowReset = false
	tm.Configure(opts)
	require.ErrorIs(t, tm.Reset(), timer.ErrResetDisabled)
}

func TestStartRequiresLoadedTurn(t *testing.T) {
	tm := timer.New(defaultOptions(timer.ModeCountdown))
	require.ErrorIs(t, tm.Start(), timer.ErrNotLoaded)
	require.Error(t, tm.LoadEntry(0))
}

func TestThresholdEvents_FireOncePerApproach(t *testing.T) {
	tm := timer.New(defaultOptions(timer.ModeCountdown))
	require.NoError(t, tm.LoadEntry(130))
	require.NoError(t, tm.Start())

	events := tickN(tm, 9)
	require.Empty(t, events)

	events = tickN(tm, 1)
	require.Equal(t, []timer.Event{{Type: timer.EventWarning, TimeRemaining: 120}}, events)

	events = tickN(tm, 119)
	require.Empty(t, events)

	events = tickN(tm, 1)
	require.Equal(t, []timer.Event{{Type: timer.EventExpired, TimeRemaining: 0}}, events)

	events = tickN(tm, 30)
	require.Empty(t, events)
}

func TestThresholdEvents_RearmAfterReset(t *testing.T) {
	tm := timer.New(defaultOptions(timer.ModeCountdown))
	require.NoError(t, tm.LoadEntry(122))
	require.NoError(t, tm.Start())

	events := tickN(tm, 2)
	require.Len(t, events, 1)

	require.NoError(t, tm.Reset())
	require.NoError(t, tm.Start())
	events = tickN(tm, 2)
	require.Len(t, events, 1)
	require.Equal(t, timer.EventWarning, events[0].Type)
}

func TestWarningSkippedWhenTurnShorterThanWindow(t *testing.T) {
	tm := timer.New(defaultOptions(timer.ModeCountdown))
	require.NoError(t, tm.LoadEntry(60))
	require.NoError(t, tm.Start())

	events := tickN(tm, 60)
	require.Equal(t, []timer.Event{{Type: timer.EventExpired, TimeRemaining: 0}}, events)
}

func TestRestore(t *testing.T) {
	tm, err := timer.Restore(defaultOptions(timer.ModeCountdown), timer.Values{
		Counter:      42,
		TotalSeconds: 60,
		Mode:         timer.ModeCountUp,
		State:        timer.StateRunning,
	})
	require.NoError(t, err)
	require.Equal(t, timer.ModeCountUp, tm.Values().Mode)
	require.Equal(t, 18, tm.TimeRemaining())

	tm.Tick()
	require.Equal(t, 43, tm.Values().Counter)

	_, err = timer.Restore(defaultOptions(timer.ModeCountdown), timer.Values{TotalSeconds: 0})
	require.Error(t, err)
}
