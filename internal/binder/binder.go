// Package binder projects a stepped process run onto timeline tracks.
//
// The binder runs the process to termination up front and materializes its
// step history as keyframes, so scrubbing the timeline reconstructs any
// intermediate simulation state without re-running the process. Each step's
// state lands on a step track at the step's completion time, its domain
// events land on an event track at the same time, and the process's
// lifecycle transitions land on a state track.
package binder

import (
	"fmt"

	"github.com/kangezhang/learngraphics/internal/process"
	"github.com/kangezhang/learngraphics/internal/timeline"
	"github.com/kangezhang/learngraphics/internal/track"
)

// Options configures one process binding.
type Options struct {
	// Name prefixes the generated track IDs: "<name>.steps",
	// "<name>.events", "<name>.status".
	Name string
	// StepDuration is the timeline seconds each process step occupies.
	StepDuration float64
	// StartTime offsets the whole projection; the initial state keyframe
	// lands here and step i completes at StartTime + i*StepDuration.
	StartTime float64
	// MaxSteps bounds the up-front run (process.DefaultMaxSteps when
	// non-positive).
	MaxSteps int
}

// Binding is a materialized process run.
type Binding struct {
	Steps  *track.StepTrack
	Events *track.EventTrack
	Status *track.StateTrack

	// Results holds every StepResult in step order.
	Results []process.StepResult
	// EndTime is the timeline time of the final step's completion.
	EndTime float64
}

// Bind runs p to termination and projects its history onto fresh tracks.
// The process must still be running: a process born failed reports its
// configuration problem here, before any track is built.
func Bind(p process.Process, opts Options) (*Binding, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("binding needs a non-empty name")
	}
	if opts.StepDuration <= 0 {
		return nil, fmt.Errorf("binding %q: step duration must be positive, got %v", opts.Name, opts.StepDuration)
	}
	if opts.StartTime < 0 {
		return nil, fmt.Errorf("binding %q: start time must be non-negative, got %v", opts.Name, opts.StartTime)
	}
	switch p.Status() {
	case process.StatusFailed:
		return nil, fmt.Errorf("binding %q: process failed during init: %s", opts.Name, p.FailureReason())
	case process.StatusCompleted:
		return nil, fmt.Errorf("binding %q: process already completed", opts.Name)
	}

	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = process.DefaultMaxSteps
	}

	b := &Binding{
		Steps:  track.NewStepTrack(opts.Name + ".steps"),
		Events: track.NewEventTrack(opts.Name + ".events"),
		Status: track.NewStateTrack(opts.Name + ".status"),
	}

	b.Steps.AddKeyframe(track.StepKeyframe{
		Time:     opts.StartTime,
		Index:    0,
		Label:    "initial",
		Duration: opts.StepDuration,
		Payload:  p.Snapshot(),
	})
	b.Status.AddKeyframe(track.StateKeyframe{
		Time:    opts.StartTime,
		State:   string(p.Status()),
		Trigger: "bind",
	})

	lastIndex := 0
	for i := 0; i < maxSteps && p.Status() == process.StatusRunning; i++ {
		res := p.Step()
		b.Results = append(b.Results, res)
		at := opts.StartTime + opts.StepDuration*float64(res.StepIndex)
		// A terminal check that does not advance the step index (a
		// convergence test, say) would duplicate the previous keyframe.
		if res.StepIndex > lastIndex {
			b.Steps.AddKeyframe(track.StepKeyframe{
				Time:     at,
				Index:    res.StepIndex,
				Label:    fmt.Sprintf("step %d", res.StepIndex),
				Duration: opts.StepDuration,
				Payload:  res.State,
			})
			lastIndex = res.StepIndex
		}
		for _, ev := range res.Events {
			b.Events.AddKeyframe(track.EventKeyframe{
				Time:   at,
				Action: ev.Name,
				Params: ev.Data,
			})
		}
	}
	if p.Status() == process.StatusRunning {
		return nil, fmt.Errorf("binding %q: process did not terminate within %d steps", opts.Name, maxSteps)
	}

	b.EndTime = opts.StartTime + opts.StepDuration*float64(p.StepIndex())
	terminal := track.StateKeyframe{
		Time:    b.EndTime,
		State:   string(p.Status()),
		Trigger: "terminal",
	}
	if p.Status() == process.StatusFailed {
		terminal.Payload = map[string]any{"failureReason": p.FailureReason()}
	} else if m := p.Metrics(); len(m) > 0 {
		payload := make(map[string]any, len(m))
		for k, v := range m {
			payload[k] = v
		}
		terminal.Payload = payload
	}
	b.Status.AddKeyframe(terminal)
	return b, nil
}

// AttachTo adds the binding's tracks to rt. The projection must fit inside
// the timeline: a run extending past the configured duration is a lesson
// authoring error, reported rather than silently truncated.
func (b *Binding) AttachTo(rt *timeline.Runtime) error {
	if b.EndTime > rt.Duration() {
		return fmt.Errorf("binding %q extends to t=%v past timeline duration %v",
			b.Steps.ID(), b.EndTime, rt.Duration())
	}
	for _, tr := range []track.Track{b.Steps, b.Events, b.Status} {
		if err := rt.AddTrack(tr); err != nil {
			return err
		}
	}
	return nil
}
