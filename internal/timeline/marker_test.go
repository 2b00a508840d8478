package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRuntime_MarkerAutoPauseHaltsExactlyOnce(t *testing.T) {
	t.Parallel()

	rt, clock, rec := newTestRuntime(t, Config{
		Duration: 10,
		AutoPause: AutoPause{
			Enabled:           true,
			PauseDuration:     500 * time.Millisecond,
			SkipInitialMarker: true,
		},
	})
	rt.AddMarker(Marker{Time: 5, Label: "checkpoint"})

	rt.Play()
	pausedAt := []float64{}
	for i := 0; i < 200 && rt.State() != StateIdle; i++ {
		clock.Advance(100 * time.Millisecond)
		if rt.State() == StatePaused {
			pausedAt = append(pausedAt, rt.CurrentTime())
		}
	}

	require.Equal(t, StateIdle, rt.State(), "playback runs to completion")
	require.NotEmpty(t, pausedAt, "playback halted at the marker")
	for _, at := range pausedAt {
		require.InDelta(t, 5.0, at, 1e-9, "time commits at the marker, not past it")
	}

	// Exactly one pause/resume cycle around the marker.
	require.Equal(t, []PlayState{StatePlaying, StatePaused, StatePlaying, StateIdle}, rec.states())
}

func TestRuntime_MarkerAtZeroNeverPausesWithSkipInitial(t *testing.T) {
	t.Parallel()

	rt, clock, rec := newTestRuntime(t, Config{
		Duration: 1,
		AutoPause: AutoPause{
			Enabled:           true,
			PauseDuration:     time.Second,
			SkipInitialMarker: true,
		},
	})
	rt.AddMarker(Marker{Time: 0, Label: "load"})

	rt.Play()
	for i := 0; i < 20; i++ {
		clock.Advance(100 * time.Millisecond)
	}

	require.Equal(t, StateIdle, rt.State())
	for _, st := range rec.states() {
		require.NotEqual(t, StatePaused, st, "marker at t=0 must not pause on load")
	}
}

func TestRuntime_AutoResumeAfterDelay(t *testing.T) {
	t.Parallel()

	rt, clock, _ := newTestRuntime(t, Config{
		Duration: 10,
		AutoPause: AutoPause{
			Enabled:       true,
			PauseDuration: 2 * time.Second,
		},
	})
	rt.AddMarker(Marker{Time: 1, Label: "m"})

	rt.Play()
	clock.Advance(1500 * time.Millisecond)
	require.Equal(t, StatePaused, rt.State())
	require.InDelta(t, 1.0, rt.CurrentTime(), 1e-9)

	// Virtual time stands still during the pause delay.
	clock.Advance(1 * time.Second)
	require.Equal(t, StatePaused, rt.State())

	// The delay elapses, playback resumes on its own.
	clock.Advance(1 * time.Second)
	require.Equal(t, StatePlaying, rt.State())
}

func TestRuntime_ZeroPauseDurationResumesOnNextDelivery(t *testing.T) {
	t.Parallel()

	// Auto-pause with no configured delay must not wedge playback at the
	// marker: the timer arms at zero and resumes on the next clock delivery.
	rt, clock, _ := newTestRuntime(t, Config{
		Duration:  3,
		AutoPause: AutoPause{Enabled: true},
	})
	rt.AddMarker(Marker{Time: 1, Label: "m"})

	rt.Play()
	clock.Advance(1500 * time.Millisecond)
	require.Equal(t, StatePaused, rt.State())
	require.InDelta(t, 1.0, rt.CurrentTime(), 1e-9)

	clock.Advance(100 * time.Millisecond)
	require.Equal(t, StatePlaying, rt.State())

	for i := 0; i < 50 && rt.State() != StateIdle; i++ {
		clock.Advance(100 * time.Millisecond)
	}
	require.Equal(t, StateIdle, rt.State(), "playback runs past the marker to completion")
}

func TestRuntime_ManualResumeCancelsPendingTimer(t *testing.T) {
	t.Parallel()

	rt, clock, rec := newTestRuntime(t, Config{
		Duration: 10,
		AutoPause: AutoPause{
			Enabled:       true,
			PauseDuration: 2 * time.Second,
		},
	})
	rt.AddMarker(Marker{Time: 1, Label: "m"})

	rt.Play()
	clock.Advance(1200 * time.Millisecond)
	require.Equal(t, StatePaused, rt.State())

	// Manual resume during the delay; the stale timer must not fire a
	// second transition later.
	rt.Play()
	require.Equal(t, StatePlaying, rt.State())
	clock.Advance(3 * time.Second)

	var playingCount int
	for _, st := range rec.states() {
		if st == StatePlaying {
			playingCount++
		}
	}
	require.Equal(t, 2, playingCount, "initial play + manual resume, no timer double-fire")
}

func TestRuntime_StaleResumeTimerAfterSeekIsNoOp(t *testing.T) {
	t.Parallel()

	rt, clock, _ := newTestRuntime(t, Config{
		Duration: 10,
		AutoPause: AutoPause{
			Enabled:       true,
			PauseDuration: time.Second,
		},
	})
	rt.AddMarker(Marker{Time: 1, Label: "m"})

	rt.Play()
	clock.Advance(1500 * time.Millisecond)
	require.Equal(t, StatePaused, rt.State())

	// Seek away from the marker while paused. The armed timer re-validates
	// "still paused at exactly this marker time" and does nothing.
	rt.Seek(7)
	clock.Advance(2 * time.Second)
	require.Equal(t, StatePaused, rt.State())
	require.InDelta(t, 7.0, rt.CurrentTime(), 1e-9)
}

func TestRuntime_ResumedMarkerDoesNotRehalt(t *testing.T) {
	t.Parallel()

	rt, clock, _ := newTestRuntime(t, Config{
		Duration: 10,
		AutoPause: AutoPause{
			Enabled:       true,
			PauseDuration: 100 * time.Millisecond,
		},
	})
	rt.AddMarker(Marker{Time: 5, Label: "m"})

	rt.Play()
	var pauses int
	for i := 0; i < 300 && rt.State() != StateIdle; i++ {
		before := rt.State()
		clock.Advance(100 * time.Millisecond)
		if before != StatePaused && rt.State() == StatePaused {
			pauses++
		}
	}
	require.Equal(t, StateIdle, rt.State())
	require.Equal(t, 1, pauses, "a consumed marker does not pause again this pass")
}

func TestRuntime_AutoPauseDisabledIgnoresMarkers(t *testing.T) {
	t.Parallel()

	rt, clock, rec := newTestRuntime(t, Config{Duration: 2})
	rt.AddMarker(Marker{Time: 1, Label: "m"})

	rt.Play()
	for i := 0; i < 30; i++ {
		clock.Advance(100 * time.Millisecond)
	}
	require.Equal(t, StateIdle, rt.State())
	for _, st := range rec.states() {
		require.NotEqual(t, StatePaused, st)
	}
}
