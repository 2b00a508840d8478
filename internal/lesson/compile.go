package lesson

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"

	"github.com/kangezhang/learngraphics/internal/binder"
	"github.com/kangezhang/learngraphics/internal/ctxlog"
	"github.com/kangezhang/learngraphics/internal/process"
	"github.com/kangezhang/learngraphics/internal/timeline"
	"github.com/kangezhang/learngraphics/internal/track"
)

// Result is a compiled lesson: the runtime ready to play plus the process
// bindings materialized onto it.
type Result struct {
	Runtime  *timeline.Runtime
	Bindings []*binder.Binding
}

// Compile validates a loaded lesson and builds its runtime. All authoring
// problems are reported here, before playback starts: duplicate track IDs,
// unknown kinds or easings, negative keyframe times, markers beyond the
// timeline duration, unknown process kinds and failed process configs.
func Compile(ctx context.Context, l *Lesson, reg *process.Registry, clock timeline.Clock) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	if l.Timeline == nil {
		return nil, fmt.Errorf("lesson %q has no timeline block", l.Name)
	}
	tb := l.Timeline

	rt, err := timeline.New(timeline.Config{
		Duration:  tb.Duration,
		Speed:     tb.Speed,
		Loop:      tb.Loop,
		AutoPause: compileAutoPause(tb.AutoPause),
		Clock:     clock,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("lesson %q: %w", l.Name, err)
	}

	for _, m := range tb.Markers {
		if m.Time < 0 || m.Time > tb.Duration {
			return nil, fmt.Errorf("lesson %q: marker %q at t=%v is outside [0, %v]", l.Name, m.Label, m.Time, tb.Duration)
		}
		rt.AddMarker(timeline.Marker{
			Time:        m.Time,
			Label:       m.Label,
			Description: m.Description,
			Color:       m.Color,
		})
	}

	for _, td := range tb.Tracks {
		tr, err := compileTrack(td)
		if err != nil {
			return nil, fmt.Errorf("lesson %q: %w", l.Name, err)
		}
		if err := rt.AddTrack(tr); err != nil {
			return nil, fmt.Errorf("lesson %q: %w", l.Name, err)
		}
	}

	for _, rb := range l.Renderers {
		if err := validateRenderer(rb); err != nil {
			return nil, fmt.Errorf("lesson %q: %w", l.Name, err)
		}
	}

	res := &Result{Runtime: rt}
	for _, pb := range l.Processes {
		b, err := compileProcess(pb, reg)
		if err != nil {
			return nil, fmt.Errorf("lesson %q: %w", l.Name, err)
		}
		if err := b.AttachTo(rt); err != nil {
			return nil, fmt.Errorf("lesson %q: %w", l.Name, err)
		}
		res.Bindings = append(res.Bindings, b)
	}

	logger.Debug("Lesson compiled.",
		"name", l.Name,
		"duration", tb.Duration,
		"tracks", len(rt.Tracks()),
		"bindings", len(res.Bindings),
	)
	return res, nil
}

func compileAutoPause(b *AutoPauseBlock) timeline.AutoPause {
	if b == nil {
		return timeline.AutoPause{}
	}
	return timeline.AutoPause{
		Enabled:           b.Enabled,
		PauseDuration:     time.Duration(b.PauseDurationMs * float64(time.Millisecond)),
		SkipInitialMarker: b.SkipInitialMarker,
	}
}

func compileTrack(td *TrackBlock) (track.Track, error) {
	kind, err := track.ParseKind(td.Kind)
	if err != nil {
		return nil, fmt.Errorf("track %q: %w", td.ID, err)
	}
	for _, kf := range td.Keyframes {
		if kf.Time < 0 {
			return nil, fmt.Errorf("track %q: keyframe time %v is negative", td.ID, kf.Time)
		}
	}

	switch kind {
	case track.KindProperty:
		return compilePropertyTrack(td)
	case track.KindStep:
		return compileStepTrack(td)
	case track.KindState:
		return compileStateTrack(td)
	case track.KindEvent:
		return compileEventTrack(td)
	}
	return nil, fmt.Errorf("track %q: unhandled kind %q", td.ID, kind)
}

func compilePropertyTrack(td *TrackBlock) (track.Track, error) {
	if td.Target == "" || td.Property == "" {
		return nil, fmt.Errorf("property track %q needs target and property attributes", td.ID)
	}
	tr := track.NewPropertyTrack(td.ID, td.Target, td.Property)
	for i, kf := range td.Keyframes {
		if !exprDefined(kf.Value) {
			return nil, fmt.Errorf("property track %q keyframe %d has no value", td.ID, i)
		}
		v, err := evalValue(kf.Value)
		if err != nil {
			return nil, fmt.Errorf("property track %q keyframe %d: %w", td.ID, i, err)
		}
		easing, err := track.ParseEasing(kf.Easing)
		if err != nil {
			return nil, fmt.Errorf("property track %q keyframe %d: %w", td.ID, i, err)
		}
		tr.AddKeyframe(track.PropertyKeyframe{Time: kf.Time, Value: v, Easing: easing})
	}
	return tr, nil
}

func compileStepTrack(td *TrackBlock) (track.Track, error) {
	tr := track.NewStepTrack(td.ID)
	for i, kf := range td.Keyframes {
		payload, err := optionalObject(kf.Payload)
		if err != nil {
			return nil, fmt.Errorf("step track %q keyframe %d: %w", td.ID, i, err)
		}
		index := i
		if kf.Index != nil {
			index = *kf.Index
		}
		tr.AddKeyframe(track.StepKeyframe{
			Time:     kf.Time,
			Index:    index,
			Label:    kf.Label,
			Duration: kf.Duration,
			Payload:  payload,
		})
	}
	return tr, nil
}

func compileStateTrack(td *TrackBlock) (track.Track, error) {
	tr := track.NewStateTrack(td.ID)
	for i, kf := range td.Keyframes {
		if kf.State == "" {
			return nil, fmt.Errorf("state track %q keyframe %d has no state", td.ID, i)
		}
		payload, err := optionalObject(kf.Payload)
		if err != nil {
			return nil, fmt.Errorf("state track %q keyframe %d: %w", td.ID, i, err)
		}
		tr.AddKeyframe(track.StateKeyframe{
			Time:    kf.Time,
			State:   kf.State,
			Trigger: kf.Trigger,
			Payload: payload,
		})
	}
	return tr, nil
}

func compileEventTrack(td *TrackBlock) (track.Track, error) {
	tr := track.NewEventTrack(td.ID)
	for i, kf := range td.Keyframes {
		if kf.Action == "" {
			return nil, fmt.Errorf("event track %q keyframe %d has no action", td.ID, i)
		}
		params, err := optionalObject(kf.Params)
		if err != nil {
			return nil, fmt.Errorf("event track %q keyframe %d: %w", td.ID, i, err)
		}
		tr.AddKeyframe(track.EventKeyframe{Time: kf.Time, Action: kf.Action, Params: params})
	}
	return tr, nil
}

func compileProcess(pb *ProcessBlock, reg *process.Registry) (*binder.Binding, error) {
	if reg == nil {
		return nil, fmt.Errorf("process %q: no process registry available", pb.Name)
	}

	var cfg process.Config
	if pb.Config != nil {
		attrs, err := bodyAttributes(pb.Config.Body)
		if err != nil {
			return nil, fmt.Errorf("process %q: %w", pb.Name, err)
		}
		cfg = attrs
	}

	p, err := reg.New(pb.Kind, cfg)
	if err != nil {
		return nil, fmt.Errorf("process %q: %w", pb.Name, err)
	}
	return binder.Bind(p, binder.Options{
		Name:         pb.Name,
		StepDuration: pb.StepDuration,
		StartTime:    pb.StartTime,
		MaxSteps:     pb.MaxSteps,
	})
}

func validateRenderer(rb *RendererBlock) error {
	switch rb.Kind {
	case "log":
		return nil
	case "socketio":
		if rb.URL == "" {
			return fmt.Errorf("renderer %q needs a url attribute", rb.Kind)
		}
		return nil
	}
	return fmt.Errorf("unknown renderer kind %q (known: log, socketio)", rb.Kind)
}

func optionalObject(expr hcl.Expression) (map[string]any, error) {
	if !exprDefined(expr) {
		return nil, nil
	}
	return evalObject(expr)
}
