package track

// StepKeyframe marks a discrete stage boundary. Payload is free-form data
// carried through to renderers and process bindings; this package never
// inspects it.
type StepKeyframe struct {
	Time     float64
	Index    int
	Label    string
	Duration float64
	Payload  map[string]any
}

// StepTrack tracks discrete stage progression with "latest stage at or
// before t" semantics and index-based navigation.
type StepTrack struct {
	id  string
	kfs []StepKeyframe
}

// NewStepTrack creates an empty step track.
func NewStepTrack(id string) *StepTrack {
	return &StepTrack{id: id}
}

func (tr *StepTrack) ID() string { return tr.id }
func (tr *StepTrack) Kind() Kind { return KindStep }
func (tr *StepTrack) Len() int   { return len(tr.kfs) }

// Times returns the keyframe times in ascending order.
func (tr *StepTrack) Times() []float64 {
	return timesOf(tr.kfs, func(k StepKeyframe) float64 { return k.Time })
}

// Keyframes returns a copy of the keyframe list.
func (tr *StepTrack) Keyframes() []StepKeyframe {
	out := make([]StepKeyframe, len(tr.kfs))
	copy(out, tr.kfs)
	return out
}

// AddKeyframe inserts kf and restores time order.
func (tr *StepTrack) AddKeyframe(kf StepKeyframe) {
	tr.kfs = append(tr.kfs, kf)
	sortByTime(tr.kfs, func(k StepKeyframe) float64 { return k.Time })
}

// RemoveKeyframe drops every keyframe at exactly t.
func (tr *StepTrack) RemoveKeyframe(t float64) {
	tr.kfs = removeAtTime(tr.kfs, t, func(k StepKeyframe) float64 { return k.Time })
}

// StepCount reports the number of stages on the track.
func (tr *StepTrack) StepCount() int { return len(tr.kfs) }

// TimeOfStep returns the time of the i-th keyframe in time order.
func (tr *StepTrack) TimeOfStep(i int) (float64, bool) {
	if i < 0 || i >= len(tr.kfs) {
		return 0, false
	}
	return tr.kfs[i].Time, true
}

// FindSurrounding returns the latest keyframe at or before t and the
// earliest keyframe after t. Either may be nil.
func (tr *StepTrack) FindSurrounding(t float64) (prev, next *StepKeyframe) {
	p, n := surrounding(tr.Times(), t)
	if p >= 0 {
		prev = &tr.kfs[p]
	}
	if n < len(tr.kfs) {
		next = &tr.kfs[n]
	}
	return prev, next
}

// Evaluate returns the active stage at t: the latest keyframe at or before
// t, clamped to the first keyframe for queries before it.
func (tr *StepTrack) Evaluate(t float64) (StepKeyframe, bool) {
	if len(tr.kfs) == 0 {
		return StepKeyframe{}, false
	}
	prev, _ := tr.FindSurrounding(t)
	if prev == nil {
		return tr.kfs[0], true
	}
	return *prev, true
}

// Completed returns every keyframe with time at or before t in time order,
// reconstructing cumulative progress (e.g. all graph nodes visited so far).
func (tr *StepTrack) Completed(t float64) []StepKeyframe {
	p, _ := surrounding(tr.Times(), t)
	out := make([]StepKeyframe, p+1)
	copy(out, tr.kfs[:p+1])
	return out
}
