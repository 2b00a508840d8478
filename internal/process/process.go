// Package process defines the stepped-simulation contract and the registry
// that lesson compilation resolves simulation kinds through.
//
// A process is an independent state machine (idle → running → completed, or
// → failed on an irrecoverable error) advanced one bounded step at a time.
// Configuration problems never surface as panics or returned errors past
// the constructor boundary: a misconfigured process is born failed with a
// machine-readable reason, and callers check Status, matching how a lesson
// degrades gracefully instead of crashing the player.
package process

import "fmt"

// Status is a process's lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// DefaultMaxSteps is the hard ceiling Run falls back to, guarding against a
// misconfigured process (e.g. a non-convergent descent) hanging playback.
const DefaultMaxSteps = 10000

// Event is a domain event emitted by one step, e.g. a BFS "visit" or a ray
// "hit".
type Event struct {
	Name string
	Data map[string]any
}

// StepResult reports one step: the index just completed, a plain snapshot of
// the domain state after it, per-step metrics, and any events it emitted.
type StepResult struct {
	StepIndex int
	State     map[string]any
	Metrics   map[string]float64
	Events    []Event
}

// Process is a self-contained stepped simulation. Implementations are
// single-goroutine objects owned by the lesson compiler.
type Process interface {
	// Kind names the simulation type, e.g. "bfs".
	Kind() string
	// Status reports the lifecycle state.
	Status() Status
	// FailureReason is the machine-readable reason when Status is failed.
	FailureReason() string
	// StepIndex is the number of steps taken so far.
	StepIndex() int
	// Step advances the simulation once. When the process is not running
	// it is a no-op reporting the current index.
	Step() StepResult
	// Run loops Step until the process completes or fails, bounded by
	// maxSteps (DefaultMaxSteps when non-positive). Exceeding the bound
	// while still running marks the process failed.
	Run(maxSteps int)
	// Metrics reports cumulative simulation metrics.
	Metrics() map[string]float64
	// Snapshot captures the domain state as a plain document.
	Snapshot() map[string]any
	// Restore replaces the domain state from a Snapshot document.
	Restore(state map[string]any) error
}

// RunBounded is the shared Run implementation: it advances p until it leaves
// the running state or the ceiling is hit, then fails it with fail if the
// ceiling won.
func RunBounded(p Process, maxSteps int, fail func(reason string)) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	for i := 0; i < maxSteps; i++ {
		if p.Status() != StatusRunning {
			return
		}
		p.Step()
	}
	if p.Status() == StatusRunning {
		fail(fmt.Sprintf("step budget of %d exhausted before termination", maxSteps))
	}
}
