package lesson

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of one lesson file.
type fileRoot struct {
	Lessons []*Lesson `hcl:"lesson,block"`
}

// Lesson is one interactive lesson: a timeline plus the processes projected
// onto it and the renderers watching it.
type Lesson struct {
	Name        string `hcl:"name,label"`
	Title       string `hcl:"title,optional"`
	Description string `hcl:"description,optional"`

	Timeline  *TimelineBlock   `hcl:"timeline,block"`
	Processes []*ProcessBlock  `hcl:"process,block"`
	Renderers []*RendererBlock `hcl:"renderer,block"`
}

// TimelineBlock declares the playback envelope and its content.
type TimelineBlock struct {
	Duration float64 `hcl:"duration"`
	Speed    float64 `hcl:"speed,optional"`
	Loop     bool    `hcl:"loop,optional"`

	AutoPause *AutoPauseBlock `hcl:"autopause,block"`
	Markers   []*MarkerBlock  `hcl:"marker,block"`
	Tracks    []*TrackBlock   `hcl:"track,block"`
}

// AutoPauseBlock configures marker-triggered pausing.
type AutoPauseBlock struct {
	Enabled           bool    `hcl:"enabled"`
	PauseDurationMs   float64 `hcl:"pause_duration_ms,optional"`
	SkipInitialMarker bool    `hcl:"skip_initial_marker,optional"`
}

// MarkerBlock is a narrative checkpoint.
type MarkerBlock struct {
	Time        float64 `hcl:"time"`
	Label       string  `hcl:"label"`
	Description string  `hcl:"description,optional"`
	Color       string  `hcl:"color,optional"`
}

// TrackBlock declares one track. The first label is the kind discriminant
// (property, step, state, event); the second is the track ID. Which keyframe
// attributes are meaningful depends on the kind and is enforced at compile
// time, not decode time.
type TrackBlock struct {
	Kind string `hcl:"kind,label"`
	ID   string `hcl:"id,label"`

	Target   string `hcl:"target,optional"`
	Property string `hcl:"property,optional"`

	Keyframes []*KeyframeBlock `hcl:"keyframe,block"`
}

// KeyframeBlock is the union of all keyframe shapes. Value, Payload and
// Params stay as expressions: value is number-or-string and the other two are
// free-form objects, so they are evaluated and converted per track kind. The
// decoder fills omitted expressions with zero-width placeholders; use
// exprDefined before evaluating.
type KeyframeBlock struct {
	Time float64 `hcl:"time"`

	// property
	Value  hcl.Expression `hcl:"value,optional"`
	Easing string         `hcl:"easing,optional"`

	// step
	Index    *int           `hcl:"index,optional"`
	Label    string         `hcl:"label,optional"`
	Duration float64        `hcl:"duration,optional"`
	Payload  hcl.Expression `hcl:"payload,optional"`

	// state (payload shared with step)
	State   string `hcl:"state,optional"`
	Trigger string `hcl:"trigger,optional"`

	// event
	Action string         `hcl:"action,optional"`
	Params hcl.Expression `hcl:"params,optional"`
}

// ProcessBlock binds a stepped simulation onto the timeline. Labels are the
// registry kind and the binding name (track ID prefix).
type ProcessBlock struct {
	Kind string `hcl:"kind,label"`
	Name string `hcl:"name,label"`

	StepDuration float64 `hcl:"step_duration"`
	StartTime    float64 `hcl:"start_time,optional"`
	MaxSteps     int     `hcl:"max_steps,optional"`

	Config *ConfigBlock `hcl:"config,block"`
}

// ConfigBlock carries the free-form process configuration as raw attributes;
// the compiler converts them into a process.Config.
type ConfigBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// RendererBlock declares an output bridge watching the runtime.
type RendererBlock struct {
	Kind string `hcl:"kind,label"`

	URL                string `hcl:"url,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}
