package track

// PropertyResult is one property track sampled at a point in time.
type PropertyResult struct {
	TrackID  string
	TargetID string
	Property string
	Value    Value
}

// StepResult is one step track sampled at a point in time. CompletedSteps
// holds every stage with time at or before the query, reconstructing
// cumulative progress.
type StepResult struct {
	TrackID        string
	ActiveStep     StepKeyframe
	CompletedSteps []StepKeyframe
}

// StateResult is one state track sampled at a point in time.
type StateResult struct {
	TrackID string
	Value   StateKeyframe
}

// Snapshot is the structured result of evaluating every track at one time.
// It deliberately carries no event data: event draining mutates fired state
// and is performed only by the runtime's tick path, never here.
type Snapshot struct {
	Time       float64
	Properties []PropertyResult
	Steps      []StepResult
	States     []StateResult
}

// Evaluate batch-evaluates all tracks at time t. It is stateless and safe
// to call repeatedly for non-advancing reads; repeated calls without track
// mutation yield identical snapshots. Empty tracks contribute nothing.
func Evaluate(tracks []Track, t float64) Snapshot {
	snap := Snapshot{Time: t}
	for _, tr := range tracks {
		switch tt := tr.(type) {
		case *PropertyTrack:
			if v, ok := tt.Evaluate(t); ok {
				snap.Properties = append(snap.Properties, PropertyResult{
					TrackID:  tt.ID(),
					TargetID: tt.TargetID(),
					Property: tt.Property(),
					Value:    v,
				})
			}
		case *StepTrack:
			if active, ok := tt.Evaluate(t); ok {
				snap.Steps = append(snap.Steps, StepResult{
					TrackID:        tt.ID(),
					ActiveStep:     active,
					CompletedSteps: tt.Completed(t),
				})
			}
		case *StateTrack:
			if v, ok := tt.Evaluate(t); ok {
				snap.States = append(snap.States, StateResult{TrackID: tt.ID(), Value: v})
			}
		case *EventTrack:
			// One-shot cues have no instantaneous value.
		}
	}
	return snap
}
