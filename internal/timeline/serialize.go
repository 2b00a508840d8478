package timeline

import (
	"fmt"

	"github.com/kangezhang/learngraphics/internal/track"
)

// Document is the plain serialized form of a runtime: a key-value structure
// suitable for JSON or YAML round-trips with no binary parts. ApplySerialized
// is its exact inverse; the round-trip is lossless for all four track kinds.
type Document struct {
	Duration float64     `json:"duration" yaml:"duration"`
	Speed    float64     `json:"speed" yaml:"speed"`
	Loop     bool        `json:"loop" yaml:"loop"`
	Markers  []MarkerDoc `json:"markers,omitempty" yaml:"markers,omitempty"`
	Tracks   []TrackDoc  `json:"tracks,omitempty" yaml:"tracks,omitempty"`
}

// MarkerDoc is one serialized marker.
type MarkerDoc struct {
	Time        float64 `json:"time" yaml:"time"`
	Label       string  `json:"label" yaml:"label"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// TrackDoc is one serialized track: a kind discriminant plus a deep-cloned
// keyframe list.
type TrackDoc struct {
	ID        string        `json:"id" yaml:"id"`
	Kind      string        `json:"kind" yaml:"kind"`
	TargetID  string        `json:"targetId,omitempty" yaml:"targetId,omitempty"`
	Property  string        `json:"property,omitempty" yaml:"property,omitempty"`
	Keyframes []KeyframeDoc `json:"keyframes" yaml:"keyframes"`
}

// KeyframeDoc is the flat union of the four keyframe shapes; the owning
// track's kind decides which fields are meaningful. Number and Text are
// pointers so the number-or-string distinction of property values survives
// the round-trip.
type KeyframeDoc struct {
	Time float64 `json:"time" yaml:"time"`

	// property
	Number *float64 `json:"number,omitempty" yaml:"number,omitempty"`
	Text   *string  `json:"text,omitempty" yaml:"text,omitempty"`
	Easing string   `json:"easing,omitempty" yaml:"easing,omitempty"`

	// step
	Index    int            `json:"index,omitempty" yaml:"index,omitempty"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty"`
	Duration float64        `json:"duration,omitempty" yaml:"duration,omitempty"`
	Payload  map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`

	// state
	State   string `json:"state,omitempty" yaml:"state,omitempty"`
	Trigger string `json:"trigger,omitempty" yaml:"trigger,omitempty"`

	// event
	Action string         `json:"action,omitempty" yaml:"action,omitempty"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Serialize captures duration, speed, loop, markers and every track with
// deep-cloned keyframes. Event fired-state is playback state, not content,
// and is deliberately not serialized.
func (rt *Runtime) Serialize() Document {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	doc := Document{
		Duration: rt.duration,
		Speed:    rt.speed,
		Loop:     rt.loop,
	}
	for _, m := range rt.markers {
		doc.Markers = append(doc.Markers, MarkerDoc{
			Time:        m.Time,
			Label:       m.Label,
			Description: m.Description,
			Color:       m.Color,
		})
	}
	for _, tr := range rt.tracks {
		doc.Tracks = append(doc.Tracks, serializeTrack(tr))
	}
	return doc
}

func serializeTrack(tr track.Track) TrackDoc {
	doc := TrackDoc{ID: tr.ID(), Kind: string(tr.Kind())}
	switch tt := tr.(type) {
	case *track.PropertyTrack:
		doc.TargetID = tt.TargetID()
		doc.Property = tt.Property()
		for _, kf := range tt.Keyframes() {
			kd := KeyframeDoc{Time: kf.Time, Easing: string(kf.Easing)}
			if kf.Value.IsText {
				text := kf.Value.Text
				kd.Text = &text
			} else {
				num := kf.Value.Number
				kd.Number = &num
			}
			doc.Keyframes = append(doc.Keyframes, kd)
		}
	case *track.StepTrack:
		for _, kf := range tt.Keyframes() {
			doc.Keyframes = append(doc.Keyframes, KeyframeDoc{
				Time:     kf.Time,
				Index:    kf.Index,
				Label:    kf.Label,
				Duration: kf.Duration,
				Payload:  cloneMap(kf.Payload),
			})
		}
	case *track.StateTrack:
		for _, kf := range tt.Keyframes() {
			doc.Keyframes = append(doc.Keyframes, KeyframeDoc{
				Time:    kf.Time,
				State:   kf.State,
				Trigger: kf.Trigger,
				Payload: cloneMap(kf.Payload),
			})
		}
	case *track.EventTrack:
		for _, kf := range tt.Keyframes() {
			doc.Keyframes = append(doc.Keyframes, KeyframeDoc{
				Time:   kf.Time,
				Action: kf.Action,
				Params: cloneMap(kf.Params),
			})
		}
	}
	return doc
}

// ApplySerialized is the inverse of Serialize: it clears all tracks,
// reconstructs typed tracks from their discriminants, replaces markers and
// playback config, and forces a seek to zero.
func (rt *Runtime) ApplySerialized(doc Document) error {
	if doc.Duration <= 0 {
		return fmt.Errorf("serialized duration must be positive, got %v", doc.Duration)
	}
	tracks := make([]track.Track, 0, len(doc.Tracks))
	byID := make(map[string]track.Track, len(doc.Tracks))
	for _, td := range doc.Tracks {
		tr, err := deserializeTrack(td)
		if err != nil {
			return err
		}
		if _, dup := byID[tr.ID()]; dup {
			return fmt.Errorf("duplicate track id %q", tr.ID())
		}
		byID[tr.ID()] = tr
		tracks = append(tracks, tr)
	}

	rt.mu.Lock()
	if rt.disposed {
		rt.mu.Unlock()
		return fmt.Errorf("runtime is disposed")
	}
	rt.duration = doc.Duration
	rt.speed = doc.Speed
	if rt.speed <= 0 {
		rt.speed = 1
	}
	rt.loop = doc.Loop
	rt.markers = nil
	for _, md := range doc.Markers {
		rt.markers = append(rt.markers, Marker{
			Time:        md.Time,
			Label:       md.Label,
			Description: md.Description,
			Color:       md.Color,
		})
	}
	rt.tracks = tracks
	rt.byID = byID
	ns := rt.seekLocked(0)
	rt.mu.Unlock()
	rt.dispatch(ns)
	return nil
}

func deserializeTrack(td TrackDoc) (track.Track, error) {
	kind, err := track.ParseKind(td.Kind)
	if err != nil {
		return nil, fmt.Errorf("track %q: %w", td.ID, err)
	}
	switch kind {
	case track.KindProperty:
		tr := track.NewPropertyTrack(td.ID, td.TargetID, td.Property)
		for _, kd := range td.Keyframes {
			easing, err := track.ParseEasing(kd.Easing)
			if err != nil {
				return nil, fmt.Errorf("track %q: %w", td.ID, err)
			}
			var v track.Value
			switch {
			case kd.Text != nil:
				v = track.TextValue(*kd.Text)
			case kd.Number != nil:
				v = track.NumberValue(*kd.Number)
			default:
				return nil, fmt.Errorf("track %q: property keyframe at %v has no value", td.ID, kd.Time)
			}
			tr.AddKeyframe(track.PropertyKeyframe{Time: kd.Time, Value: v, Easing: easing})
		}
		return tr, nil
	case track.KindStep:
		tr := track.NewStepTrack(td.ID)
		for _, kd := range td.Keyframes {
			tr.AddKeyframe(track.StepKeyframe{
				Time:     kd.Time,
				Index:    kd.Index,
				Label:    kd.Label,
				Duration: kd.Duration,
				Payload:  cloneMap(kd.Payload),
			})
		}
		return tr, nil
	case track.KindState:
		tr := track.NewStateTrack(td.ID)
		for _, kd := range td.Keyframes {
			tr.AddKeyframe(track.StateKeyframe{
				Time:    kd.Time,
				State:   kd.State,
				Trigger: kd.Trigger,
				Payload: cloneMap(kd.Payload),
			})
		}
		return tr, nil
	case track.KindEvent:
		tr := track.NewEventTrack(td.ID)
		for _, kd := range td.Keyframes {
			tr.AddKeyframe(track.EventKeyframe{
				Time:   kd.Time,
				Action: kd.Action,
				Params: cloneMap(kd.Params),
			})
		}
		return tr, nil
	}
	return nil, fmt.Errorf("track %q: unknown kind %q", td.ID, td.Kind)
}

// cloneMap deep-clones the nested map/slice shapes that free-form payloads
// are made of.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		return cloneMap(vv)
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return vv
	}
}
