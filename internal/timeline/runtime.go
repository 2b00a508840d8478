package timeline

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/kangezhang/learngraphics/internal/track"
)

// PlayState is the runtime's playback state.
type PlayState string

const (
	StateIdle    PlayState = "idle"
	StatePlaying PlayState = "playing"
	StatePaused  PlayState = "paused"
)

// Marker is a named timeline checkpoint used for narrative pausing. It is a
// playback-control annotation, not a track.
type Marker struct {
	Time        float64
	Label       string
	Description string
	Color       string
}

// AutoPause configures marker-triggered pausing. The runtime resumes on its
// own after PauseDuration; a zero or negative delay resumes on the next
// clock delivery. A manual Play, Seek or Stop during the delay cancels the
// pending resume.
type AutoPause struct {
	Enabled           bool
	PauseDuration     time.Duration
	SkipInitialMarker bool
}

// initialMarkerEpsilon bounds "a marker at time ≈ 0" for the skip-initial
// policy, preventing an immediate pause on load.
const initialMarkerEpsilon = 1e-9

// NotificationKind tags the messages published to subscribers.
type NotificationKind string

const (
	NoteTick        NotificationKind = "tick"
	NoteEvent       NotificationKind = "event"
	NoteStateChange NotificationKind = "stateChange"
	NoteEnd         NotificationKind = "end"
)

// Notification is one published message. Snapshot is set for ticks, Event
// for cues, State for state changes.
type Notification struct {
	Kind     NotificationKind
	Time     float64
	Snapshot *track.Snapshot
	Event    *track.Event
	State    PlayState
}

// Config assembles a Runtime. Zero values get sensible defaults: speed 1,
// the production frame clock, and the process-global logger.
type Config struct {
	Duration  float64
	Speed     float64
	Loop      bool
	AutoPause AutoPause
	Clock     Clock
	Logger    *slog.Logger
}

// Runtime is the playback state machine over a set of tracks and markers.
type Runtime struct {
	mu     sync.Mutex
	logger *slog.Logger
	clock  Clock

	duration  float64
	speed     float64
	loop      bool
	autoPause AutoPause

	tracks  []track.Track
	byID    map[string]track.Track
	markers []Marker

	current       float64
	state         PlayState
	lastTimestamp time.Time
	consumed      map[int]struct{} // marker indices consumed this pass

	cancelFrame  func()
	cancelResume func()
	disposed     bool

	subscribers map[int]func(Notification)
	nextSubID   int
}

// New creates an idle runtime at time zero.
func New(cfg Config) (*Runtime, error) {
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("timeline duration must be positive, got %v", cfg.Duration)
	}
	if cfg.Speed == 0 {
		cfg.Speed = 1
	}
	if cfg.Speed < 0 {
		return nil, fmt.Errorf("timeline speed must be positive, got %v", cfg.Speed)
	}
	if cfg.Clock == nil {
		cfg.Clock = NewFrameClock(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runtime{
		logger:      cfg.Logger,
		clock:       cfg.Clock,
		duration:    cfg.Duration,
		speed:       cfg.Speed,
		loop:        cfg.Loop,
		autoPause:   cfg.AutoPause,
		byID:        make(map[string]track.Track),
		state:       StateIdle,
		consumed:    make(map[int]struct{}),
		subscribers: make(map[int]func(Notification)),
	}, nil
}

// AddTrack registers a track. IDs must be unique within the runtime.
func (rt *Runtime) AddTrack(tr track.Track) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, exists := rt.byID[tr.ID()]; exists {
		return fmt.Errorf("track %q already exists", tr.ID())
	}
	rt.byID[tr.ID()] = tr
	rt.tracks = append(rt.tracks, tr)
	return nil
}

// RemoveTrack drops the track with the given id, if present.
func (rt *Runtime) RemoveTrack(id string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, exists := rt.byID[id]; !exists {
		return
	}
	delete(rt.byID, id)
	kept := rt.tracks[:0]
	for _, tr := range rt.tracks {
		if tr.ID() != id {
			kept = append(kept, tr)
		}
	}
	rt.tracks = kept
}

// Track looks a track up by id.
func (rt *Runtime) Track(id string) (track.Track, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	tr, ok := rt.byID[id]
	return tr, ok
}

// Tracks returns the track list in registration order.
func (rt *Runtime) Tracks() []track.Track {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.tracksLocked()
}

func (rt *Runtime) tracksLocked() []track.Track {
	out := make([]track.Track, len(rt.tracks))
	copy(out, rt.tracks)
	return out
}

// AddMarker inserts a marker, keeping markers sorted by time.
func (rt *Runtime) AddMarker(m Marker) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.markers = append(rt.markers, m)
	sort.SliceStable(rt.markers, func(i, j int) bool { return rt.markers[i].Time < rt.markers[j].Time })
}

// Markers returns a copy of the marker list.
func (rt *Runtime) Markers() []Marker {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]Marker, len(rt.markers))
	copy(out, rt.markers)
	return out
}

// Duration reports the timeline length in virtual seconds.
func (rt *Runtime) Duration() float64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.duration
}

// CurrentTime reports the playhead position.
func (rt *Runtime) CurrentTime() float64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.current
}

// State reports the playback state.
func (rt *Runtime) State() PlayState {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state
}

// Speed reports the playback speed multiplier.
func (rt *Runtime) Speed() float64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.speed
}

// SetSpeed changes the playback speed multiplier. Non-positive values are
// ignored.
func (rt *Runtime) SetSpeed(speed float64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if speed > 0 {
		rt.speed = speed
	}
}

// Loop reports whether playback wraps at the end.
func (rt *Runtime) Loop() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.loop
}

// SetLoop toggles looping.
func (rt *Runtime) SetLoop(loop bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.loop = loop
}

// Subscribe registers fn for every published Notification and returns an
// unsubscribe function. Subscribers are invoked synchronously, outside the
// runtime lock, in registration order.
func (rt *Runtime) Subscribe(fn func(Notification)) (unsubscribe func()) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	id := rt.nextSubID
	rt.nextSubID++
	rt.subscribers[id] = fn
	return func() {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		delete(rt.subscribers, id)
	}
}

// EvaluateAt is the pure read path: it batch-evaluates property, step and
// state tracks at t without advancing time or touching event fired-state.
func (rt *Runtime) EvaluateAt(t float64) track.Snapshot {
	rt.mu.Lock()
	tracks := rt.tracksLocked()
	rt.mu.Unlock()
	return track.Evaluate(tracks, t)
}

// Play starts or resumes playback. It is a no-op while already playing; a
// playhead at or past the end rewinds to zero first. Any pending marker
// auto-resume timer is cancelled so a manual resume always wins.
func (rt *Runtime) Play() {
	rt.mu.Lock()
	if rt.disposed || rt.state == StatePlaying {
		rt.mu.Unlock()
		return
	}
	rt.cancelResumeLocked()
	var ns []Notification
	if rt.current >= rt.duration {
		ns = rt.seekLocked(0)
	}
	ns = append(ns, rt.startPlayingLocked()...)
	rt.mu.Unlock()
	rt.dispatch(ns)
}

// Pause suspends playback, preserving the playhead. Valid only from the
// playing state.
func (rt *Runtime) Pause() {
	rt.mu.Lock()
	if rt.disposed || rt.state != StatePlaying {
		rt.mu.Unlock()
		return
	}
	rt.cancelFrameLocked()
	rt.state = StatePaused
	rt.logger.Debug("Playback paused.", "time", rt.current)
	ns := []Notification{{Kind: NoteStateChange, Time: rt.current, State: StatePaused}}
	rt.mu.Unlock()
	rt.dispatch(ns)
}

// Stop cancels all scheduling, rewinds to zero and returns to idle.
func (rt *Runtime) Stop() {
	rt.mu.Lock()
	if rt.disposed {
		rt.mu.Unlock()
		return
	}
	rt.cancelFrameLocked()
	rt.cancelResumeLocked()
	rt.current = 0
	rt.state = StateIdle
	rt.consumed = make(map[int]struct{})
	for _, tr := range rt.tracks {
		if et, ok := tr.(*track.EventTrack); ok {
			et.Reset(0)
		}
	}
	rt.logger.Debug("Playback stopped.")
	ns := []Notification{{Kind: NoteStateChange, Time: 0, State: StateIdle}}
	rt.mu.Unlock()
	rt.dispatch(ns)
}

// Seek moves the playhead to t (clamped to [0, duration]), re-arms event
// tracks and emits a tick synchronously so observers reflect the jump
// immediately. The play state is unchanged.
func (rt *Runtime) Seek(t float64) {
	rt.mu.Lock()
	if rt.disposed {
		rt.mu.Unlock()
		return
	}
	ns := rt.seekLocked(t)
	rt.mu.Unlock()
	rt.dispatch(ns)
}

// StepForward seeks to the nearest step-track keyframe strictly after the
// playhead, across all step tracks. It reports whether one existed.
func (rt *Runtime) StepForward() bool {
	rt.mu.Lock()
	if rt.disposed {
		rt.mu.Unlock()
		return false
	}
	target := math.Inf(1)
	for _, tr := range rt.tracks {
		st, ok := tr.(*track.StepTrack)
		if !ok {
			continue
		}
		for _, at := range st.Times() {
			if at > rt.current && at < target {
				target = at
			}
		}
	}
	if math.IsInf(target, 1) {
		rt.mu.Unlock()
		return false
	}
	ns := rt.seekLocked(target)
	rt.mu.Unlock()
	rt.dispatch(ns)
	return true
}

// StepBackward seeks to the nearest step-track keyframe strictly before the
// playhead, across all step tracks. It reports whether one existed.
func (rt *Runtime) StepBackward() bool {
	rt.mu.Lock()
	if rt.disposed {
		rt.mu.Unlock()
		return false
	}
	target := math.Inf(-1)
	for _, tr := range rt.tracks {
		st, ok := tr.(*track.StepTrack)
		if !ok {
			continue
		}
		for _, at := range st.Times() {
			if at < rt.current && at > target {
				target = at
			}
		}
	}
	if math.IsInf(target, -1) {
		rt.mu.Unlock()
		return false
	}
	ns := rt.seekLocked(target)
	rt.mu.Unlock()
	rt.dispatch(ns)
	return true
}

// Dispose cancels the frame callback and any pending resume timer and
// detaches all subscribers. The runtime is unusable afterwards.
func (rt *Runtime) Dispose() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.cancelFrameLocked()
	rt.cancelResumeLocked()
	rt.state = StateIdle
	rt.subscribers = nil
	rt.disposed = true
}

// --- internals (all require rt.mu held) ---

func (rt *Runtime) startPlayingLocked() []Notification {
	rt.state = StatePlaying
	rt.lastTimestamp = rt.clock.Now()
	rt.scheduleFrameLocked()
	rt.logger.Debug("Playback started.", "time", rt.current, "speed", rt.speed)
	return []Notification{{Kind: NoteStateChange, Time: rt.current, State: StatePlaying}}
}

func (rt *Runtime) scheduleFrameLocked() {
	rt.cancelFrameLocked()
	rt.cancelFrame = rt.clock.Schedule(rt.onFrame)
}

func (rt *Runtime) cancelFrameLocked() {
	if rt.cancelFrame != nil {
		rt.cancelFrame()
		rt.cancelFrame = nil
	}
}

func (rt *Runtime) cancelResumeLocked() {
	if rt.cancelResume != nil {
		rt.cancelResume()
		rt.cancelResume = nil
	}
}

// seekLocked clamps and commits the playhead, recomputes the consumed marker
// set on backward jumps, re-arms every event track, and produces the
// synchronous tick plus any cues due at the new time.
func (rt *Runtime) seekLocked(t float64) []Notification {
	t = clamp(t, 0, rt.duration)
	if t < rt.current {
		// Backward seek: everything at or before the new time counts as
		// consumed, everything ahead of it may pause again.
		rt.consumed = make(map[int]struct{})
		for i, m := range rt.markers {
			if m.Time <= t {
				rt.consumed[i] = struct{}{}
			}
		}
	}
	rt.current = t
	rt.lastTimestamp = rt.clock.Now()
	for _, tr := range rt.tracks {
		if et, ok := tr.(*track.EventTrack); ok {
			et.Reset(t)
		}
	}
	rt.logger.Debug("Seeked.", "time", t)
	return rt.commitNotificationsLocked()
}

// commitNotificationsLocked builds the tick for the current playhead and
// drains due cues from every event track, globally sorted by
// (time, track id, keyframe index).
func (rt *Runtime) commitNotificationsLocked() []Notification {
	snap := track.Evaluate(rt.tracks, rt.current)
	ns := []Notification{{Kind: NoteTick, Time: rt.current, Snapshot: &snap}}
	var due []track.Event
	for _, tr := range rt.tracks {
		if et, ok := tr.(*track.EventTrack); ok {
			due = append(due, et.Drain(rt.current)...)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.TrackID != b.TrackID {
			return a.TrackID < b.TrackID
		}
		return a.Index < b.Index
	})
	for i := range due {
		evt := due[i]
		ns = append(ns, Notification{Kind: NoteEvent, Time: evt.Time, Event: &evt})
	}
	return ns
}

// dispatch delivers notifications outside the runtime lock so subscribers
// may call back into the runtime.
func (rt *Runtime) dispatch(ns []Notification) {
	if len(ns) == 0 {
		return
	}
	rt.mu.Lock()
	ids := make([]int, 0, len(rt.subscribers))
	for id := range rt.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Notification), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, rt.subscribers[id])
	}
	rt.mu.Unlock()

	for _, n := range ns {
		for _, fn := range subs {
			fn(n)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
