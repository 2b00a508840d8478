package binder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kangezhang/learngraphics/internal/binder"
	"github.com/kangezhang/learngraphics/internal/process"
	"github.com/kangezhang/learngraphics/internal/timeline"
	"github.com/kangezhang/learngraphics/processes/bfs"
	"github.com/kangezhang/learngraphics/processes/gradientdescent"
)

func diamondConfig() process.Config {
	return process.Config{
		"start": "a",
		"adjacency": map[string]any{
			"a": []any{"b", "c"},
			"b": []any{"d"},
			"c": []any{"d"},
			"d": []any{},
		},
	}
}

func TestBind_ScrubbingReconstructsStepHistory(t *testing.T) {
	t.Parallel()

	b, err := binder.Bind(bfs.New(diamondConfig()), binder.Options{
		Name:         "traversal",
		StepDuration: 2,
	})
	require.NoError(t, err)
	require.Equal(t, 8.0, b.EndTime) // four dequeues at two seconds each
	require.Len(t, b.Results, 4)

	// At each step's completion time the step track holds exactly the
	// state the process reported after that step.
	for i, res := range b.Results {
		kf, ok := b.Steps.Evaluate(float64(res.StepIndex) * 2)
		require.True(t, ok)
		require.Equal(t, res.StepIndex, kf.Index, "step %d", i)
		require.Equal(t, res.State, kf.Payload, "step %d", i)
	}

	// Mid-interval, scrubbing shows the last completed step.
	kf, ok := b.Steps.Evaluate(3) // step 1 done, step 2 not yet
	require.True(t, ok)
	require.Equal(t, 1, kf.Index)
	require.Equal(t, []any{"a"}, kf.Payload["visited"])

	// Before any step completes, the initial snapshot is visible.
	kf, ok = b.Steps.Evaluate(0.5)
	require.True(t, ok)
	require.Equal(t, 0, kf.Index)
	require.Equal(t, "initial", kf.Label)
}

func TestBind_ProjectsEventsAndStatus(t *testing.T) {
	t.Parallel()

	b, err := binder.Bind(bfs.New(diamondConfig()), binder.Options{
		Name:         "traversal",
		StepDuration: 1,
	})
	require.NoError(t, err)

	kfs := b.Events.Keyframes()
	require.Len(t, kfs, 4)
	var visited []string
	for i, kf := range kfs {
		require.Equal(t, float64(i+1), kf.Time)
		require.Equal(t, "visit", kf.Action)
		visited = append(visited, kf.Params["node"].(string))
	}
	require.Equal(t, []string{"a", "b", "c", "d"}, visited)

	running, ok := b.Status.Evaluate(0)
	require.True(t, ok)
	require.Equal(t, "running", running.State)

	terminal, ok := b.Status.Evaluate(b.EndTime)
	require.True(t, ok)
	require.Equal(t, "completed", terminal.State)
	require.Equal(t, 4.0, terminal.Payload["visited"])
}

func TestBind_TerminalCheckWithoutMoveAddsNoDuplicateKeyframe(t *testing.T) {
	t.Parallel()

	// Minimizing x²+y² from (1,0) with rate 0.5 reaches the origin in one
	// move; the convergence check that follows terminates without advancing
	// the step index.
	p := gradientdescent.New(process.Config{
		"start":         []any{1.0, 0.0},
		"learning_rate": 0.5,
		"a":             1.0,
		"b":             1.0,
	})
	b, err := binder.Bind(p, binder.Options{Name: "descent", StepDuration: 1})
	require.NoError(t, err)
	require.Len(t, b.Results, 2) // one move plus the terminal check

	kfs := b.Steps.Keyframes()
	require.Len(t, kfs, 2) // initial plus the move, no duplicate
	require.Equal(t, 0, kfs[0].Index)
	require.Equal(t, 1, kfs[1].Index)
	require.Equal(t, 1.0, b.EndTime)

	evs := b.Events.Keyframes()
	require.Len(t, evs, 1)
	require.Equal(t, "converged", evs[0].Action)
	require.Equal(t, 1.0, evs[0].Time)
}

func TestBind_FailedProcessReportsReason(t *testing.T) {
	t.Parallel()

	cfg := diamondConfig()
	cfg["start"] = "zz"
	_, err := binder.Bind(bfs.New(cfg), binder.Options{Name: "traversal", StepDuration: 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), `start node "zz" is not in the graph`)
}

func TestBind_ValidatesOptions(t *testing.T) {
	t.Parallel()

	p := bfs.New(diamondConfig())
	_, err := binder.Bind(p, binder.Options{StepDuration: 1})
	require.Error(t, err)

	_, err = binder.Bind(p, binder.Options{Name: "traversal"})
	require.Error(t, err)

	_, err = binder.Bind(p, binder.Options{Name: "traversal", StepDuration: 1, StartTime: -1})
	require.Error(t, err)
}

func TestBind_StepCeilingErrors(t *testing.T) {
	t.Parallel()

	_, err := binder.Bind(bfs.New(diamondConfig()), binder.Options{
		Name:         "traversal",
		StepDuration: 1,
		MaxSteps:     2, // traversal needs four
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not terminate within 2 steps")
}

func TestAttachTo_AddsTracksWithinDuration(t *testing.T) {
	t.Parallel()

	b, err := binder.Bind(bfs.New(diamondConfig()), binder.Options{
		Name:         "traversal",
		StepDuration: 2,
	})
	require.NoError(t, err)

	rt, err := timeline.New(timeline.Config{Duration: 10, Clock: timeline.NewManualClock()})
	require.NoError(t, err)
	defer rt.Dispose()
	require.NoError(t, b.AttachTo(rt))
	for _, id := range []string{"traversal.steps", "traversal.events", "traversal.status"} {
		_, ok := rt.Track(id)
		require.True(t, ok, "track %s", id)
	}

	short, err := timeline.New(timeline.Config{Duration: 5, Clock: timeline.NewManualClock()})
	require.NoError(t, err)
	defer short.Dispose()
	err = b.AttachTo(short)
	require.Error(t, err)
	require.Contains(t, err.Error(), "past timeline duration")
}
