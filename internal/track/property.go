package track

// Value is the number-or-string payload of a property keyframe. Numbers
// interpolate; text snaps to the previous keyframe's value with no blending.
type Value struct {
	Number float64
	Text   string
	IsText bool
}

// NumberValue wraps a numeric property value.
func NumberValue(f float64) Value { return Value{Number: f} }

// TextValue wraps a textual property value.
func TextValue(s string) Value { return Value{Text: s, IsText: true} }

// PropertyKeyframe samples a scene property at a point in time.
type PropertyKeyframe struct {
	Time   float64
	Value  Value
	Easing Easing
}

// PropertyTrack animates one property of one scene entity. Evaluation is a
// deterministic, total function of (keyframes, time).
type PropertyTrack struct {
	id       string
	targetID string
	property string
	kfs      []PropertyKeyframe
}

// NewPropertyTrack creates an empty property track bound to a target
// entity's property, e.g. ("camera", "zoom").
func NewPropertyTrack(id, targetID, property string) *PropertyTrack {
	return &PropertyTrack{id: id, targetID: targetID, property: property}
}

func (tr *PropertyTrack) ID() string       { return tr.id }
func (tr *PropertyTrack) Kind() Kind       { return KindProperty }
func (tr *PropertyTrack) Len() int         { return len(tr.kfs) }
func (tr *PropertyTrack) TargetID() string { return tr.targetID }
func (tr *PropertyTrack) Property() string { return tr.property }

// Times returns the keyframe times in ascending order.
func (tr *PropertyTrack) Times() []float64 {
	return timesOf(tr.kfs, func(k PropertyKeyframe) float64 { return k.Time })
}

// Keyframes returns a copy of the keyframe list.
func (tr *PropertyTrack) Keyframes() []PropertyKeyframe {
	out := make([]PropertyKeyframe, len(tr.kfs))
	copy(out, tr.kfs)
	return out
}

// AddKeyframe inserts kf and restores time order.
func (tr *PropertyTrack) AddKeyframe(kf PropertyKeyframe) {
	if kf.Easing == "" {
		kf.Easing = EasingLinear
	}
	tr.kfs = append(tr.kfs, kf)
	sortByTime(tr.kfs, func(k PropertyKeyframe) float64 { return k.Time })
}

// RemoveKeyframe drops every keyframe at exactly t.
func (tr *PropertyTrack) RemoveKeyframe(t float64) {
	tr.kfs = removeAtTime(tr.kfs, t, func(k PropertyKeyframe) float64 { return k.Time })
}

// FindSurrounding returns the latest keyframe at or before t and the
// earliest keyframe after t. Either may be nil.
func (tr *PropertyTrack) FindSurrounding(t float64) (prev, next *PropertyKeyframe) {
	p, n := surrounding(tr.Times(), t)
	if p >= 0 {
		prev = &tr.kfs[p]
	}
	if n < len(tr.kfs) {
		next = &tr.kfs[n]
	}
	return prev, next
}

// Evaluate interpolates the property at time t. Queries outside the keyframe
// range clamp to the boundary value; an empty track reports ok=false.
func (tr *PropertyTrack) Evaluate(t float64) (Value, bool) {
	if len(tr.kfs) == 0 {
		return Value{}, false
	}
	prev, next := tr.FindSurrounding(t)
	if prev == nil {
		// Before the first keyframe: clamp, never extrapolate.
		return tr.kfs[0].Value, true
	}
	if next == nil {
		return prev.Value, true
	}
	// Text has no meaningful blend, so it steps.
	if prev.Value.IsText || next.Value.IsText {
		return prev.Value, true
	}
	span := next.Time - prev.Time
	if span <= 0 {
		return prev.Value, true
	}
	f := prev.Easing.Apply((t - prev.Time) / span)
	return NumberValue(prev.Value.Number + (next.Value.Number-prev.Value.Number)*f), true
}
