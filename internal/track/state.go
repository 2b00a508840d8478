package track

// StateKeyframe records a named state becoming active at a point in time.
type StateKeyframe struct {
	Time    float64
	State   string
	Trigger string
	Payload map[string]any
}

// StateTrack holds named scene states with "latest state at or before t"
// semantics and no blending.
type StateTrack struct {
	id  string
	kfs []StateKeyframe
}

// NewStateTrack creates an empty state track.
func NewStateTrack(id string) *StateTrack {
	return &StateTrack{id: id}
}

func (tr *StateTrack) ID() string { return tr.id }
func (tr *StateTrack) Kind() Kind { return KindState }
func (tr *StateTrack) Len() int   { return len(tr.kfs) }

// Times returns the keyframe times in ascending order.
func (tr *StateTrack) Times() []float64 {
	return timesOf(tr.kfs, func(k StateKeyframe) float64 { return k.Time })
}

// Keyframes returns a copy of the keyframe list.
func (tr *StateTrack) Keyframes() []StateKeyframe {
	out := make([]StateKeyframe, len(tr.kfs))
	copy(out, tr.kfs)
	return out
}

// AddKeyframe inserts kf and restores time order.
func (tr *StateTrack) AddKeyframe(kf StateKeyframe) {
	tr.kfs = append(tr.kfs, kf)
	sortByTime(tr.kfs, func(k StateKeyframe) float64 { return k.Time })
}

// RemoveKeyframe drops every keyframe at exactly t.
func (tr *StateTrack) RemoveKeyframe(t float64) {
	tr.kfs = removeAtTime(tr.kfs, t, func(k StateKeyframe) float64 { return k.Time })
}

// FindSurrounding returns the latest keyframe at or before t and the
// earliest keyframe after t. Either may be nil.
func (tr *StateTrack) FindSurrounding(t float64) (prev, next *StateKeyframe) {
	p, n := surrounding(tr.Times(), t)
	if p >= 0 {
		prev = &tr.kfs[p]
	}
	if n < len(tr.kfs) {
		next = &tr.kfs[n]
	}
	return prev, next
}

// Evaluate returns the active state at t, clamped to the first keyframe for
// queries before it.
func (tr *StateTrack) Evaluate(t float64) (StateKeyframe, bool) {
	if len(tr.kfs) == 0 {
		return StateKeyframe{}, false
	}
	prev, _ := tr.FindSurrounding(t)
	if prev == nil {
		return tr.kfs[0], true
	}
	return *prev, true
}
