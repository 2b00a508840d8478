// Package gradientdescent implements fixed-step gradient descent over a
// two-variable quadratic form
//
//	f(x, y) = a·x² + b·y² + c·xy + d·x + e·y + f
//
// as a stepped process: x_{n+1} = x_n − η·∇f(x_n). The descent terminates
// converged when ‖∇f‖ ≤ ε and fails when the iteration cap is hit first,
// guarding playback against a divergent configuration. The full trajectory
// is recorded so the timeline can replay every intermediate point.
package gradientdescent

import (
	"fmt"
	"math"

	"github.com/kangezhang/learngraphics/internal/process"
)

// Kind is the registry name of this process.
const Kind = "gradient_descent"

const (
	defaultLearningRate  = 0.1
	defaultEpsilon       = 1e-6
	defaultMaxIterations = 1000
)

// Module implements process.Module for this package.
type Module struct{}

// Register installs the gradient_descent factory.
func (m *Module) Register(r *process.Registry) {
	r.RegisterProcess(Kind, New)
}

// Process is a descent in flight.
type Process struct {
	status    process.Status
	reason    string
	stepIndex int

	a, b, c, d, e, f float64
	learningRate     float64
	epsilon          float64
	maxIterations    int

	x, y       float64
	gradNorm   float64
	trajectory [][2]float64
}

// New builds a descent from config. Required field: "start" (two numbers).
// Optional: "learning_rate", "epsilon", "max_iterations" and the quadratic
// coefficients "a".."f" (all default to zero).
func New(cfg process.Config) process.Process {
	p := &Process{status: process.StatusIdle}

	start, err := cfg.Floats("start", 2)
	if err != nil {
		return p.fail(err.Error())
	}
	p.learningRate = cfg.FloatOr("learning_rate", defaultLearningRate)
	if p.learningRate <= 0 {
		return p.fail(fmt.Sprintf("learning_rate must be positive, got %v", p.learningRate))
	}
	p.epsilon = cfg.FloatOr("epsilon", defaultEpsilon)
	if p.epsilon <= 0 {
		return p.fail(fmt.Sprintf("epsilon must be positive, got %v", p.epsilon))
	}
	p.maxIterations = cfg.IntOr("max_iterations", defaultMaxIterations)
	if p.maxIterations <= 0 {
		return p.fail(fmt.Sprintf("max_iterations must be positive, got %v", p.maxIterations))
	}

	p.a = cfg.FloatOr("a", 0)
	p.b = cfg.FloatOr("b", 0)
	p.c = cfg.FloatOr("c", 0)
	p.d = cfg.FloatOr("d", 0)
	p.e = cfg.FloatOr("e", 0)
	p.f = cfg.FloatOr("f", 0)

	p.x, p.y = start[0], start[1]
	p.trajectory = [][2]float64{{p.x, p.y}}
	p.gradNorm = p.normAt(p.x, p.y)
	p.status = process.StatusRunning
	return p
}

func (p *Process) fail(reason string) *Process {
	p.status = process.StatusFailed
	p.reason = reason
	return p
}

func (p *Process) Kind() string           { return Kind }
func (p *Process) Status() process.Status { return p.status }
func (p *Process) FailureReason() string  { return p.reason }
func (p *Process) StepIndex() int         { return p.stepIndex }

// value evaluates the quadratic form at (x, y).
func (p *Process) value(x, y float64) float64 {
	return p.a*x*x + p.b*y*y + p.c*x*y + p.d*x + p.e*y + p.f
}

// gradient evaluates ∇f at (x, y).
func (p *Process) gradient(x, y float64) (float64, float64) {
	return 2*p.a*x + p.c*y + p.d, 2*p.b*y + p.c*x + p.e
}

func (p *Process) normAt(x, y float64) float64 {
	gx, gy := p.gradient(x, y)
	return math.Hypot(gx, gy)
}

// Step checks convergence at the current point and otherwise takes one
// descent move. The trajectory gains one entry per move, so its length is
// always stepIndex+1.
func (p *Process) Step() process.StepResult {
	if p.status != process.StatusRunning {
		return p.result(nil)
	}

	gx, gy := p.gradient(p.x, p.y)
	p.gradNorm = math.Hypot(gx, gy)
	if p.gradNorm <= p.epsilon {
		p.status = process.StatusCompleted
		return p.result([]process.Event{{
			Name: "converged",
			Data: map[string]any{
				"point":        []any{p.x, p.y},
				"gradientNorm": p.gradNorm,
				"iterations":   float64(p.stepIndex),
			},
		}})
	}
	if p.stepIndex >= p.maxIterations {
		p.status = process.StatusFailed
		p.reason = fmt.Sprintf("no convergence within %d iterations (‖∇f‖=%g > ε=%g)", p.maxIterations, p.gradNorm, p.epsilon)
		return p.result(nil)
	}

	p.stepIndex++
	p.x -= p.learningRate * gx
	p.y -= p.learningRate * gy
	p.trajectory = append(p.trajectory, [2]float64{p.x, p.y})
	return p.result(nil)
}

// Run implements Process.
func (p *Process) Run(maxSteps int) {
	process.RunBounded(p, maxSteps, func(reason string) {
		p.status = process.StatusFailed
		p.reason = reason
	})
}

// Metrics implements Process.
func (p *Process) Metrics() map[string]float64 {
	return map[string]float64{
		"iterations":   float64(p.stepIndex),
		"gradientNorm": p.gradNorm,
		"value":        p.value(p.x, p.y),
	}
}

// Trajectory returns every point visited so far, the start included.
func (p *Process) Trajectory() [][2]float64 {
	out := make([][2]float64, len(p.trajectory))
	copy(out, p.trajectory)
	return out
}

// Snapshot implements Process.
func (p *Process) Snapshot() map[string]any {
	traj := make([]any, len(p.trajectory))
	for i, pt := range p.trajectory {
		traj[i] = []any{pt[0], pt[1]}
	}
	return map[string]any{
		"point":        []any{p.x, p.y},
		"gradientNorm": p.gradNorm,
		"trajectory":   traj,
	}
}

// Restore implements Process.
func (p *Process) Restore(state map[string]any) error {
	rawTraj, ok := state["trajectory"].([]any)
	if !ok || len(rawTraj) == 0 {
		return fmt.Errorf("snapshot field \"trajectory\" must be a non-empty list")
	}
	traj := make([][2]float64, len(rawTraj))
	for i, e := range rawTraj {
		pt, ok := e.([]any)
		if !ok || len(pt) != 2 {
			return fmt.Errorf("snapshot trajectory entry %d is not a point", i)
		}
		x, xok := pt[0].(float64)
		y, yok := pt[1].(float64)
		if !xok || !yok {
			return fmt.Errorf("snapshot trajectory entry %d is not numeric", i)
		}
		traj[i] = [2]float64{x, y}
	}
	p.trajectory = traj
	last := traj[len(traj)-1]
	p.x, p.y = last[0], last[1]
	p.stepIndex = len(traj) - 1
	p.gradNorm = p.normAt(p.x, p.y)
	p.status = process.StatusRunning
	p.reason = ""
	return nil
}

func (p *Process) result(events []process.Event) process.StepResult {
	return process.StepResult{
		StepIndex: p.stepIndex,
		State:     p.Snapshot(),
		Metrics:   p.Metrics(),
		Events:    events,
	}
}
