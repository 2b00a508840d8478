// Package rayplane implements a closed-form ray–plane intersection query as
// a stepped process. The hit parameter solves
//
//	t = −(n·o + offset) / (n·d)
//
// for ray origin o, direction d and plane n·p + offset = 0. A near-zero
// denominator (ray parallel to the plane) or a negative t (plane behind the
// origin) is a miss. A hit is animated: a traced point travels from the
// origin to the hit over a configured step budget, and the final step fires
// "hit" with the exact point and parametric distance.
package rayplane

import (
	"fmt"
	"math"

	"github.com/kangezhang/learngraphics/internal/process"
)

// Kind is the registry name of this process.
const Kind = "ray_plane"

const (
	defaultStepBudget = 32
	parallelEpsilon   = 1e-12
)

// Module implements process.Module for this package.
type Module struct{}

// Register installs the ray_plane factory.
func (m *Module) Register(r *process.Registry) {
	r.RegisterProcess(Kind, New)
}

type vec3 [3]float64

func (v vec3) dot(o vec3) float64 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }

func (v vec3) scale(s float64) vec3 { return vec3{v[0] * s, v[1] * s, v[2] * s} }

func (v vec3) add(o vec3) vec3 { return vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

func (v vec3) length() float64 { return math.Sqrt(v.dot(v)) }

// Process is an intersection query in flight.
type Process struct {
	status    process.Status
	reason    string
	stepIndex int

	origin, direction, normal vec3
	offset                    float64
	stepBudget                int
	maxDistance               float64

	hit        bool
	missReason string
	hitParam   float64
	point      vec3
}

// New builds a query from config. Required fields: "origin", "direction"
// and "normal" (three numbers each). Optional: "offset", "steps" (animation
// budget) and "max_distance" (cap on the parametric hit distance).
func New(cfg process.Config) process.Process {
	p := &Process{status: process.StatusIdle}

	var err error
	if p.origin, err = readVec(cfg, "origin"); err != nil {
		return p.fail(err.Error())
	}
	if p.direction, err = readVec(cfg, "direction"); err != nil {
		return p.fail(err.Error())
	}
	if p.normal, err = readVec(cfg, "normal"); err != nil {
		return p.fail(err.Error())
	}
	if p.direction.length() == 0 {
		return p.fail("direction must be non-zero")
	}
	if p.normal.length() == 0 {
		return p.fail("plane normal must be non-zero")
	}
	p.offset = cfg.FloatOr("offset", 0)
	p.stepBudget = cfg.IntOr("steps", defaultStepBudget)
	if p.stepBudget <= 0 {
		return p.fail(fmt.Sprintf("steps must be positive, got %v", p.stepBudget))
	}
	p.maxDistance = cfg.FloatOr("max_distance", 0)

	p.solve()
	p.point = p.origin
	p.status = process.StatusRunning
	return p
}

// solve computes the closed-form intersection once, at init.
func (p *Process) solve() {
	denom := p.normal.dot(p.direction)
	if math.Abs(denom) < parallelEpsilon {
		p.missReason = "ray is parallel to the plane"
		return
	}
	t := -(p.normal.dot(p.origin) + p.offset) / denom
	if t < 0 {
		p.missReason = "plane is behind the ray origin"
		return
	}
	if p.maxDistance > 0 && t > p.maxDistance {
		p.missReason = fmt.Sprintf("hit at t=%g exceeds max distance %g", t, p.maxDistance)
		return
	}
	p.hit = true
	p.hitParam = t
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

// Step advances the traced point one increment toward the hit. A miss
// completes immediately with a "miss" event; a hit completes on the final
// budgeted step with a "hit" event carrying the exact intersection.
func (p *Process) Step() process.StepResult {
	if p.status != process.StatusRunning {
		return p.result(nil)
	}
	p.stepIndex++

	if !p.hit {
		p.status = process.StatusCompleted
		return p.result([]process.Event{{
			Name: "miss",
			Data: map[string]any{"reason": p.missReason},
		}})
	}

	progress := float64(p.stepIndex) / float64(p.stepBudget)
	p.point = p.origin.add(p.direction.scale(p.hitParam * progress))
	if p.stepIndex < p.stepBudget {
		return p.result(nil)
	}

	p.status = process.StatusCompleted
	return p.result([]process.Event{{
		Name: "hit",
		Data: map[string]any{
			"point":    []any{p.point[0], p.point[1], p.point[2]},
			"distance": p.hitParam,
		},
	}})
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
	progress := 0.0
	if p.hit && p.stepBudget > 0 {
		progress = math.Min(1, float64(p.stepIndex)/float64(p.stepBudget))
	}
	hit := 0.0
	if p.hit {
		hit = 1
	}
	return map[string]float64{
		"progress": progress,
		"distance": p.hitParam,
		"hit":      hit,
	}
}

// Snapshot implements Process.
func (p *Process) Snapshot() map[string]any {
	return map[string]any{
		"point":    []any{p.point[0], p.point[1], p.point[2]},
		"hit":      p.hit,
		"progress": math.Min(1, float64(p.stepIndex)/float64(p.stepBudget)),
	}
}

// Restore implements Process. Progress re-derives the step index against
// this process's own budget; the geometry is construction-time config.
func (p *Process) Restore(state map[string]any) error {
	progress, ok := state["progress"].(float64)
	if !ok || progress < 0 || progress > 1 {
		return fmt.Errorf("snapshot field \"progress\" must be a number in [0,1]")
	}
	p.stepIndex = int(math.Round(progress * float64(p.stepBudget)))
	if p.hit {
		p.point = p.origin.add(p.direction.scale(p.hitParam * progress))
	}
	if p.stepIndex >= p.stepBudget || (!p.hit && p.stepIndex > 0) {
		p.status = process.StatusCompleted
	} else {
		p.status = process.StatusRunning
	}
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

func readVec(cfg process.Config, key string) (vec3, error) {
	vals, err := cfg.Floats(key, 3)
	if err != nil {
		return vec3{}, err
	}
	return vec3{vals[0], vals[1], vals[2]}, nil
}
