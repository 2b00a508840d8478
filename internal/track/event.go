package track

// EventKeyframe schedules a one-shot cue.
type EventKeyframe struct {
	Time   float64
	Action string
	Params map[string]any
}

// Event is a fired cue as delivered to timeline subscribers. Index is the
// keyframe's ordinal within its equal-time group, so two cues sharing a
// timestamp stay distinguishable.
type Event struct {
	TrackID string
	Time    float64
	Index   int
	Action  string
	Params  map[string]any
}

// firedKey identifies a keyframe for exactly-once accounting. Time alone is
// not enough because several keyframes may share a timestamp.
type firedKey struct {
	time  float64
	index int
}

// EventTrack fires each keyframe's cue exactly once as time advances past
// it. Unlike the other track types its read path is stateful: Drain marks
// cues as fired, and Reset re-arms them around a seek. The owning runtime
// must Reset on every seek before draining again, or cues double-fire or
// get stuck.
type EventTrack struct {
	id    string
	kfs   []EventKeyframe
	fired map[firedKey]struct{}
}

// NewEventTrack creates an empty event track.
func NewEventTrack(id string) *EventTrack {
	return &EventTrack{id: id, fired: make(map[firedKey]struct{})}
}

func (tr *EventTrack) ID() string { return tr.id }
func (tr *EventTrack) Kind() Kind { return KindEvent }
func (tr *EventTrack) Len() int   { return len(tr.kfs) }

// Times returns the keyframe times in ascending order.
func (tr *EventTrack) Times() []float64 {
	return timesOf(tr.kfs, func(k EventKeyframe) float64 { return k.Time })
}

// Keyframes returns a copy of the keyframe list.
func (tr *EventTrack) Keyframes() []EventKeyframe {
	out := make([]EventKeyframe, len(tr.kfs))
	copy(out, tr.kfs)
	return out
}

// AddKeyframe inserts kf and restores time order.
func (tr *EventTrack) AddKeyframe(kf EventKeyframe) {
	tr.kfs = append(tr.kfs, kf)
	sortByTime(tr.kfs, func(k EventKeyframe) float64 { return k.Time })
}

// RemoveKeyframe drops every keyframe at exactly t and forgets its fired
// accounting.
func (tr *EventTrack) RemoveKeyframe(t float64) {
	tr.kfs = removeAtTime(tr.kfs, t, func(k EventKeyframe) float64 { return k.Time })
	for key := range tr.fired {
		if key.time == t {
			delete(tr.fired, key)
		}
	}
}

// Drain returns every not-yet-fired cue with time at or before upTo, in
// (time, tie-group index) order, and marks each as fired. A second call
// without further forward progress returns nothing.
func (tr *EventTrack) Drain(upTo float64) []Event {
	var out []Event
	tieIdx := 0
	for i, kf := range tr.kfs {
		if i > 0 && tr.kfs[i-1].Time == kf.Time {
			tieIdx++
		} else {
			tieIdx = 0
		}
		if kf.Time > upTo {
			break
		}
		key := firedKey{time: kf.Time, index: tieIdx}
		if _, done := tr.fired[key]; done {
			continue
		}
		tr.fired[key] = struct{}{}
		out = append(out, Event{
			TrackID: tr.id,
			Time:    kf.Time,
			Index:   tieIdx,
			Action:  kf.Action,
			Params:  kf.Params,
		})
	}
	return out
}

// Reset clears all fired accounting, then re-marks every keyframe strictly
// before upTo as already fired. Seeking to time T therefore re-arms every
// cue at or after T and suppresses re-firing of cues already passed.
func (tr *EventTrack) Reset(upTo float64) {
	tr.fired = make(map[firedKey]struct{}, len(tr.kfs))
	tieIdx := 0
	for i, kf := range tr.kfs {
		if i > 0 && tr.kfs[i-1].Time == kf.Time {
			tieIdx++
		} else {
			tieIdx = 0
		}
		if kf.Time < upTo {
			tr.fired[firedKey{time: kf.Time, index: tieIdx}] = struct{}{}
		}
	}
}
