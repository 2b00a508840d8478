package timeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/kangezhang/learngraphics/internal/track"
)

func populatedRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := New(Config{Duration: 12, Speed: 1.5, Loop: true, Clock: NewManualClock()})
	require.NoError(t, err)
	t.Cleanup(rt.Dispose)

	rt.AddMarker(Marker{Time: 6, Label: "mid", Description: "halfway", Color: "#00ff00"})
	rt.AddMarker(Marker{Time: 2, Label: "early"})

	prop := track.NewPropertyTrack("cam-zoom", "camera", "zoom")
	prop.AddKeyframe(track.PropertyKeyframe{Time: 0, Value: track.NumberValue(1), Easing: track.EasingEaseInOut})
	prop.AddKeyframe(track.PropertyKeyframe{Time: 8, Value: track.NumberValue(3)})

	caption := track.NewPropertyTrack("caption", "hud", "text")
	caption.AddKeyframe(track.PropertyKeyframe{Time: 0, Value: track.TextValue("welcome")})
	caption.AddKeyframe(track.PropertyKeyframe{Time: 4, Value: track.TextValue("explore")})

	steps := track.NewStepTrack("walk")
	steps.AddKeyframe(track.StepKeyframe{Time: 0, Index: 0, Label: "a", Duration: 3, Payload: map[string]any{"node": "a"}})
	steps.AddKeyframe(track.StepKeyframe{Time: 3, Index: 1, Label: "b", Payload: map[string]any{"node": "b", "depth": 1.0}})

	states := track.NewStateTrack("phase")
	states.AddKeyframe(track.StateKeyframe{Time: 0, State: "intro", Trigger: "auto"})
	states.AddKeyframe(track.StateKeyframe{Time: 6, State: "outro", Payload: map[string]any{"fade": true}})

	cues := track.NewEventTrack("cues")
	cues.AddKeyframe(track.EventKeyframe{Time: 2, Action: "flash", Params: map[string]any{"color": "red"}})
	cues.AddKeyframe(track.EventKeyframe{Time: 2, Action: "chime"})

	for _, tr := range []track.Track{prop, caption, steps, states, cues} {
		require.NoError(t, rt.AddTrack(tr))
	}
	return rt
}

func TestSerialize_RoundTripIsLossless(t *testing.T) {
	t.Parallel()

	rt := populatedRuntime(t)
	doc := rt.Serialize()

	other, err := New(Config{Duration: 1, Clock: NewManualClock()})
	require.NoError(t, err)
	t.Cleanup(other.Dispose)
	require.NoError(t, other.ApplySerialized(doc))

	if diff := cmp.Diff(doc, other.Serialize()); diff != "" {
		t.Fatalf("round-trip not lossless (-original +restored):\n%s", diff)
	}

	require.Equal(t, rt.Duration(), other.Duration())
	require.Equal(t, rt.Speed(), other.Speed())
	require.Equal(t, rt.Loop(), other.Loop())
	require.Equal(t, rt.Markers(), other.Markers())
	require.Zero(t, other.CurrentTime(), "applySerialized forces a seek to zero")
}

func TestSerialize_MarkersStaySorted(t *testing.T) {
	t.Parallel()

	rt := populatedRuntime(t)
	doc := rt.Serialize()
	require.Len(t, doc.Markers, 2)
	require.Equal(t, "early", doc.Markers[0].Label)
	require.Equal(t, "mid", doc.Markers[1].Label)
}

func TestSerialize_DeepClonesKeyframes(t *testing.T) {
	t.Parallel()

	rt := populatedRuntime(t)
	doc := rt.Serialize()

	// Mutating the document must not reach into the runtime's tracks.
	for _, td := range doc.Tracks {
		if td.ID == "walk" {
			td.Keyframes[0].Payload["node"] = "tampered"
		}
	}
	snap := rt.EvaluateAt(0)
	for _, sr := range snap.Steps {
		require.Equal(t, "a", sr.ActiveStep.Payload["node"])
	}
}

func TestApplySerialized_RejectsBadDocuments(t *testing.T) {
	t.Parallel()

	rt, err := New(Config{Duration: 1, Clock: NewManualClock()})
	require.NoError(t, err)
	t.Cleanup(rt.Dispose)

	require.Error(t, rt.ApplySerialized(Document{Duration: 0}))
	require.Error(t, rt.ApplySerialized(Document{
		Duration: 5,
		Tracks:   []TrackDoc{{ID: "x", Kind: "nonsense"}},
	}))
	require.Error(t, rt.ApplySerialized(Document{
		Duration: 5,
		Tracks: []TrackDoc{
			{ID: "dup", Kind: "event"},
			{ID: "dup", Kind: "step"},
		},
	}))
	require.Error(t, rt.ApplySerialized(Document{
		Duration: 5,
		Tracks: []TrackDoc{{
			ID:        "p",
			Kind:      "property",
			Keyframes: []KeyframeDoc{{Time: 0}},
		}},
	}), "property keyframe without a value")
}

func TestApplySerialized_RebuildsTypedTracks(t *testing.T) {
	t.Parallel()

	doc := populatedRuntime(t).Serialize()
	rt, err := New(Config{Duration: 1, Clock: NewManualClock()})
	require.NoError(t, err)
	t.Cleanup(rt.Dispose)
	require.NoError(t, rt.ApplySerialized(doc))

	tr, ok := rt.Track("cues")
	require.True(t, ok)
	_, isEvent := tr.(*track.EventTrack)
	require.True(t, isEvent, "kind discriminant reconstructs the concrete type")

	snap := rt.EvaluateAt(8)
	require.Len(t, snap.Properties, 2)
	require.Len(t, snap.Steps, 1)
	require.Len(t, snap.States, 1)
}
