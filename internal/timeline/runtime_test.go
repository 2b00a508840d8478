package timeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kangezhang/learngraphics/internal/track"
)

// recorder collects notifications for assertions.
type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) record(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

func (r *recorder) events() []track.Event {
	var out []track.Event
	for _, n := range r.all() {
		if n.Kind == NoteEvent {
			out = append(out, *n.Event)
		}
	}
	return out
}

func (r *recorder) states() []PlayState {
	var out []PlayState
	for _, n := range r.all() {
		if n.Kind == NoteStateChange {
			out = append(out, n.State)
		}
	}
	return out
}

func newTestRuntime(t *testing.T, cfg Config) (*Runtime, *ManualClock, *recorder) {
	t.Helper()
	clock := NewManualClock()
	cfg.Clock = clock
	rt, err := New(cfg)
	require.NoError(t, err)
	rec := &recorder{}
	rt.Subscribe(rec.record)
	t.Cleanup(rt.Dispose)
	return rt, clock, rec
}

func TestRuntime_PlayAdvancesAndFinalizes(t *testing.T) {
	t.Parallel()

	rt, clock, rec := newTestRuntime(t, Config{Duration: 1})
	rt.Play()
	require.Equal(t, StatePlaying, rt.State())

	clock.Advance(400 * time.Millisecond)
	require.InDelta(t, 0.4, rt.CurrentTime(), 1e-9)
	require.Equal(t, StatePlaying, rt.State())

	clock.Advance(400 * time.Millisecond)
	clock.Advance(400 * time.Millisecond) // overshoots, clamps to duration

	require.Equal(t, StateIdle, rt.State())
	require.InDelta(t, 1.0, rt.CurrentTime(), 1e-9)

	notes := rec.all()
	require.Equal(t, NoteEnd, notes[len(notes)-1].Kind, "end fires last")
	require.Equal(t, []PlayState{StatePlaying, StateIdle}, rec.states())
}

func TestRuntime_PlayIsNoOpWhilePlaying(t *testing.T) {
	t.Parallel()

	rt, clock, rec := newTestRuntime(t, Config{Duration: 10})
	rt.Play()
	rt.Play()
	clock.Advance(100 * time.Millisecond)

	require.Equal(t, []PlayState{StatePlaying}, rec.states())
	require.Equal(t, 1, clock.PendingFrames(), "exactly one frame callback scheduled")
}

func TestRuntime_PlayAfterEndRewindsFirst(t *testing.T) {
	t.Parallel()

	rt, clock, _ := newTestRuntime(t, Config{Duration: 0.1})
	rt.Play()
	clock.Advance(200 * time.Millisecond)
	require.Equal(t, StateIdle, rt.State())
	require.InDelta(t, 0.1, rt.CurrentTime(), 1e-9)

	rt.Play()
	require.Equal(t, StatePlaying, rt.State())
	clock.Advance(50 * time.Millisecond)
	require.InDelta(t, 0.05, rt.CurrentTime(), 1e-9)
}

func TestRuntime_PauseAndResumePreserveTime(t *testing.T) {
	t.Parallel()

	rt, clock, _ := newTestRuntime(t, Config{Duration: 10})
	rt.Play()
	clock.Advance(1 * time.Second)
	rt.Pause()
	require.Equal(t, StatePaused, rt.State())

	// Time does not move while paused.
	clock.Advance(5 * time.Second)
	require.InDelta(t, 1.0, rt.CurrentTime(), 1e-9)

	rt.Play()
	clock.Advance(1 * time.Second)
	require.InDelta(t, 2.0, rt.CurrentTime(), 1e-9)
}

func TestRuntime_PauseOnlyValidFromPlaying(t *testing.T) {
	t.Parallel()

	rt, _, rec := newTestRuntime(t, Config{Duration: 10})
	rt.Pause()
	require.Equal(t, StateIdle, rt.State())
	require.Empty(t, rec.states())
}

func TestRuntime_StopRewindsToIdle(t *testing.T) {
	t.Parallel()

	rt, clock, _ := newTestRuntime(t, Config{Duration: 10})
	rt.Play()
	clock.Advance(3 * time.Second)
	rt.Stop()

	require.Equal(t, StateIdle, rt.State())
	require.Zero(t, rt.CurrentTime())

	// No leaked frame callback keeps advancing time.
	clock.Advance(1 * time.Second)
	require.Zero(t, rt.CurrentTime())
}

func TestRuntime_SpeedMultiplier(t *testing.T) {
	t.Parallel()

	rt, clock, _ := newTestRuntime(t, Config{Duration: 10, Speed: 2})
	rt.Play()
	clock.Advance(1 * time.Second)
	require.InDelta(t, 2.0, rt.CurrentTime(), 1e-9)
}

func TestRuntime_SeekEmitsTickSynchronously(t *testing.T) {
	t.Parallel()

	rt, _, rec := newTestRuntime(t, Config{Duration: 10})
	rt.Seek(4)

	notes := rec.all()
	require.NotEmpty(t, notes)
	require.Equal(t, NoteTick, notes[0].Kind)
	require.InDelta(t, 4.0, notes[0].Time, 1e-9)
	require.NotNil(t, notes[0].Snapshot)
}

func TestRuntime_SeekClampsToBounds(t *testing.T) {
	t.Parallel()

	rt, _, _ := newTestRuntime(t, Config{Duration: 10})
	rt.Seek(-5)
	require.Zero(t, rt.CurrentTime())
	rt.Seek(50)
	require.InDelta(t, 10.0, rt.CurrentTime(), 1e-9)
}

func TestRuntime_EventsFireExactlyOncePerPass(t *testing.T) {
	t.Parallel()

	rt, clock, rec := newTestRuntime(t, Config{Duration: 5})
	cues := track.NewEventTrack("cues")
	cues.AddKeyframe(track.EventKeyframe{Time: 1, Action: "one"})
	cues.AddKeyframe(track.EventKeyframe{Time: 2, Action: "two"})
	cues.AddKeyframe(track.EventKeyframe{Time: 3, Action: "three"})
	require.NoError(t, rt.AddTrack(cues))

	rt.Play()
	for i := 0; i < 60; i++ {
		clock.Advance(100 * time.Millisecond)
	}
	require.Equal(t, StateIdle, rt.State())

	var actions []string
	for _, e := range rec.events() {
		actions = append(actions, e.Action)
	}
	require.Equal(t, []string{"one", "two", "three"}, actions)

	// Seeking back to 0 and playing again re-fires all three exactly once.
	rt.Seek(0)
	rt.Play()
	for i := 0; i < 60; i++ {
		clock.Advance(100 * time.Millisecond)
	}
	actions = nil
	for _, e := range rec.events() {
		actions = append(actions, e.Action)
	}
	require.Equal(t, []string{"one", "two", "three", "one", "two", "three"}, actions)
}

func TestRuntime_MultipleEventsWithinOneDelta(t *testing.T) {
	t.Parallel()

	rt, clock, rec := newTestRuntime(t, Config{Duration: 5})
	cues := track.NewEventTrack("cues")
	cues.AddKeyframe(track.EventKeyframe{Time: 1, Action: "a"})
	cues.AddKeyframe(track.EventKeyframe{Time: 1.5, Action: "b"})
	cues.AddKeyframe(track.EventKeyframe{Time: 2, Action: "c"})
	require.NoError(t, rt.AddTrack(cues))

	rt.Play()
	// One big frame crosses all three cue times.
	clock.Advance(3 * time.Second)

	require.Len(t, rec.events(), 3, "all cues crossed in a single advance fire")
}

func TestRuntime_CrossTrackDrainOrderIsGlobalTimeSort(t *testing.T) {
	t.Parallel()

	rt, clock, rec := newTestRuntime(t, Config{Duration: 5})
	// Registration order is deliberately opposed to time order.
	zTrack := track.NewEventTrack("z-cues")
	zTrack.AddKeyframe(track.EventKeyframe{Time: 1, Action: "first"})
	zTrack.AddKeyframe(track.EventKeyframe{Time: 3, Action: "fourth"})
	aTrack := track.NewEventTrack("a-cues")
	aTrack.AddKeyframe(track.EventKeyframe{Time: 2, Action: "second"})
	aTrack.AddKeyframe(track.EventKeyframe{Time: 3, Action: "third"})
	require.NoError(t, rt.AddTrack(zTrack))
	require.NoError(t, rt.AddTrack(aTrack))

	rt.Play()
	clock.Advance(4 * time.Second)

	var actions []string
	for _, e := range rec.events() {
		actions = append(actions, e.Action)
	}
	// Equal times tie-break on track id: "a-cues" before "z-cues".
	require.Equal(t, []string{"first", "second", "third", "fourth"}, actions)
}

func TestRuntime_StepNavigation(t *testing.T) {
	t.Parallel()

	rt, _, _ := newTestRuntime(t, Config{Duration: 12})
	steps := track.NewStepTrack("walk")
	for i, at := range []float64{0, 3, 6, 9} {
		steps.AddKeyframe(track.StepKeyframe{Time: at, Index: i})
	}
	require.NoError(t, rt.AddTrack(steps))

	rt.Seek(2.5)
	require.True(t, rt.StepForward())
	require.InDelta(t, 3.0, rt.CurrentTime(), 1e-9)

	require.True(t, rt.StepBackward())
	require.InDelta(t, 0.0, rt.CurrentTime(), 1e-9)

	// No keyframe strictly before 0.
	require.False(t, rt.StepBackward())

	rt.Seek(9)
	require.False(t, rt.StepForward(), "no keyframe strictly after the last")
}

func TestRuntime_LoopRestartsFromZero(t *testing.T) {
	t.Parallel()

	rt, clock, rec := newTestRuntime(t, Config{Duration: 1, Loop: true})
	cues := track.NewEventTrack("cues")
	cues.AddKeyframe(track.EventKeyframe{Time: 0.5, Action: "mid"})
	require.NoError(t, rt.AddTrack(cues))

	rt.Play()
	for i := 0; i < 25; i++ {
		clock.Advance(100 * time.Millisecond)
	}

	require.Equal(t, StatePlaying, rt.State(), "looping playback never finalizes")
	require.GreaterOrEqual(t, len(rec.events()), 2, "cue re-fires every pass")
	for _, n := range rec.all() {
		require.NotEqual(t, NoteEnd, n.Kind, "looping playback emits no end")
	}
}

func TestRuntime_EvaluateAtIsIdempotentAndPure(t *testing.T) {
	t.Parallel()

	rt, _, _ := newTestRuntime(t, Config{Duration: 10})
	prop := track.NewPropertyTrack("cam-x", "camera", "x")
	prop.AddKeyframe(track.PropertyKeyframe{Time: 0, Value: track.NumberValue(0)})
	prop.AddKeyframe(track.PropertyKeyframe{Time: 10, Value: track.NumberValue(100)})
	cues := track.NewEventTrack("cues")
	cues.AddKeyframe(track.EventKeyframe{Time: 1, Action: "x"})
	require.NoError(t, rt.AddTrack(prop))
	require.NoError(t, rt.AddTrack(cues))

	first := rt.EvaluateAt(5)
	second := rt.EvaluateAt(5)
	require.Equal(t, first, second)
	require.InDelta(t, 50.0, first.Properties[0].Value.Number, 1e-6)

	// The pure read path must not have consumed the cue.
	rt.Seek(2)
	var fired bool
	rt.Subscribe(func(n Notification) {
		if n.Kind == NoteEvent {
			fired = true
		}
	})
	rt.Seek(0)
	rt.Seek(2)
	require.True(t, fired)
}

func TestRuntime_AddTrackRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	rt, _, _ := newTestRuntime(t, Config{Duration: 10})
	require.NoError(t, rt.AddTrack(track.NewEventTrack("dup")))
	require.Error(t, rt.AddTrack(track.NewStepTrack("dup")))
}

func TestRuntime_DisposeCancelsScheduling(t *testing.T) {
	t.Parallel()

	clock := NewManualClock()
	rt, err := New(Config{Duration: 10, Clock: clock})
	require.NoError(t, err)
	rt.Play()
	require.Equal(t, 1, clock.PendingFrames())

	rt.Dispose()
	require.Zero(t, clock.PendingFrames(), "dispose cancels the frame callback")
	clock.Advance(1 * time.Second)
	require.Zero(t, rt.CurrentTime())
}

func TestRuntime_BackwardSeekReconsumesMarkers(t *testing.T) {
	t.Parallel()

	rt, clock, _ := newTestRuntime(t, Config{
		Duration: 10,
		AutoPause: AutoPause{
			Enabled:           true,
			SkipInitialMarker: true,
		},
	})
	rt.AddMarker(Marker{Time: 5, Label: "mid"})

	rt.Play()
	for rt.State() == StatePlaying {
		clock.Advance(time.Second)
	}
	require.Equal(t, StatePaused, rt.State())
	require.InDelta(t, 5.0, rt.CurrentTime(), 1e-9)

	// Seek behind the marker: it becomes eligible to pause again.
	rt.Seek(0)
	rt.Play()
	for rt.State() == StatePlaying {
		clock.Advance(time.Second)
	}
	require.Equal(t, StatePaused, rt.State())
	require.InDelta(t, 5.0, rt.CurrentTime(), 1e-9)
}
