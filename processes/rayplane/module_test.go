package rayplane

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kangezhang/learngraphics/internal/process"
)

// towardFloor is a ray from above, pointing straight down at the z=0 plane.
func towardFloor() process.Config {
	return process.Config{
		"origin":    []any{1.0, 2.0, 10.0},
		"direction": []any{0.0, 0.0, -1.0},
		"normal":    []any{0.0, 0.0, 1.0},
		"steps":     4.0,
	}
}

func runCollectingEvents(p process.Process) []process.Event {
	var events []process.Event
	for p.Status() == process.StatusRunning {
		events = append(events, p.Step().Events...)
	}
	return events
}

func TestRayPlane_HitFiresExactIntersection(t *testing.T) {
	t.Parallel()

	p := New(towardFloor())
	events := runCollectingEvents(p)

	require.Equal(t, process.StatusCompleted, p.Status())
	require.Len(t, events, 1)
	require.Equal(t, "hit", events[0].Name)

	pt := events[0].Data["point"].([]any)
	require.InDelta(t, 1.0, pt[0].(float64), 1e-12)
	require.InDelta(t, 2.0, pt[1].(float64), 1e-12)
	require.InDelta(t, 0.0, pt[2].(float64), 1e-12)
	require.InDelta(t, 10.0, events[0].Data["distance"].(float64), 1e-12)
	require.Equal(t, 4, p.StepIndex(), "hit completes exactly on the step budget")
}

func TestRayPlane_ParallelDirectionAlwaysMisses(t *testing.T) {
	t.Parallel()

	// Any direction orthogonal to the normal is parallel to the plane,
	// wherever the origin sits.
	for _, origin := range [][]any{
		{0.0, 0.0, 5.0},
		{100.0, -3.0, 0.0},
		{-7.0, 2.0, -1.0},
	} {
		cfg := process.Config{
			"origin":    origin,
			"direction": []any{1.0, 1.0, 0.0},
			"normal":    []any{0.0, 0.0, 1.0},
		}
		p := New(cfg)
		events := runCollectingEvents(p)

		require.Equal(t, process.StatusCompleted, p.Status())
		require.Len(t, events, 1)
		require.Equal(t, "miss", events[0].Name)
		require.Contains(t, events[0].Data["reason"], "parallel")
	}
}

func TestRayPlane_PlaneBehindOriginMisses(t *testing.T) {
	t.Parallel()

	cfg := towardFloor()
	cfg["direction"] = []any{0.0, 0.0, 1.0} // away from the plane
	p := New(cfg)
	events := runCollectingEvents(p)

	require.Len(t, events, 1)
	require.Equal(t, "miss", events[0].Name)
	require.Contains(t, events[0].Data["reason"], "behind")
}

func TestRayPlane_MaxDistanceCapMisses(t *testing.T) {
	t.Parallel()

	cfg := towardFloor()
	cfg["max_distance"] = 5.0 // hit is at t=10
	p := New(cfg)
	events := runCollectingEvents(p)

	require.Len(t, events, 1)
	require.Equal(t, "miss", events[0].Name)
}

func TestRayPlane_TracedPointProgresses(t *testing.T) {
	t.Parallel()

	p := New(towardFloor()).(*Process)
	res := p.Step()
	require.Equal(t, process.StatusRunning, p.Status())
	require.InDelta(t, 0.25, res.State["progress"].(float64), 1e-12)

	pt := res.State["point"].([]any)
	require.InDelta(t, 7.5, pt[2].(float64), 1e-12, "quarter of the way down from z=10")
}

func TestRayPlane_SnapshotRestoreResumesMidTrace(t *testing.T) {
	t.Parallel()

	p := New(towardFloor()).(*Process)
	p.Step()
	p.Step()
	snap := p.Snapshot()

	q := New(towardFloor()).(*Process)
	require.NoError(t, q.Restore(snap))
	require.Equal(t, process.StatusRunning, q.Status())
	require.Equal(t, 2, q.StepIndex())

	events := runCollectingEvents(q)
	require.Equal(t, process.StatusCompleted, q.Status())
	require.Len(t, events, 1)
	require.Equal(t, "hit", events[0].Name)
}

func TestRayPlane_RestoreRejectsBadProgress(t *testing.T) {
	t.Parallel()

	q := New(towardFloor()).(*Process)
	require.Error(t, q.Restore(map[string]any{"progress": 2.0}))
	require.Error(t, q.Restore(map[string]any{}))
}

func TestRayPlane_InitValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  process.Config
	}{
		{"missing origin", process.Config{"direction": []any{0.0, 0.0, 1.0}, "normal": []any{0.0, 0.0, 1.0}}},
		{"zero direction", process.Config{"origin": []any{0.0, 0.0, 0.0}, "direction": []any{0.0, 0.0, 0.0}, "normal": []any{0.0, 0.0, 1.0}}},
		{"zero normal", process.Config{"origin": []any{0.0, 0.0, 0.0}, "direction": []any{0.0, 0.0, 1.0}, "normal": []any{0.0, 0.0, 0.0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := New(tc.cfg)
			require.Equal(t, process.StatusFailed, p.Status())
			require.NotEmpty(t, p.FailureReason())
		})
	}
}
