// Package bfs implements breadth-first traversal of an adjacency map as a
// stepped process. Each step dequeues one node, records the visit and
// enqueues its not-yet-discovered neighbours; a visited set suppresses
// duplicates. Neighbour expansion is sorted lexicographically so traversal
// order is deterministic regardless of map iteration order.
package bfs

import (
	"fmt"
	"sort"

	"github.com/kangezhang/learngraphics/internal/process"
)

// Kind is the registry name of this process.
const Kind = "bfs"

// Module implements process.Module for this package.
type Module struct{}

// Register installs the bfs factory.
func (m *Module) Register(r *process.Registry) {
	r.RegisterProcess(Kind, New)
}

// Process is a breadth-first traversal in flight.
type Process struct {
	status    process.Status
	reason    string
	stepIndex int

	adjacency  map[string][]string
	queue      []string
	discovered map[string]struct{}
	order      []string
}

// New builds a traversal from config. Required fields: "start" (string) and
// "adjacency" (map of string lists). Invalid config produces a failed
// process with a reason, never a panic.
func New(cfg process.Config) process.Process {
	p := &Process{status: process.StatusIdle, discovered: make(map[string]struct{})}

	adjacency, err := cfg.StringMapOfStrings("adjacency")
	if err != nil {
		return p.fail(err.Error())
	}
	if len(adjacency) == 0 {
		return p.fail("adjacency map is empty")
	}
	start, ok := cfg.String("start")
	if !ok {
		return p.fail("missing required field \"start\"")
	}
	if _, present := adjacency[start]; !present {
		return p.fail(fmt.Sprintf("start node %q is not in the graph", start))
	}

	p.adjacency = adjacency
	p.queue = []string{start}
	p.discovered[start] = struct{}{}
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

// Step dequeues the next node, emits its "visit" event and enqueues unseen
// neighbours. The traversal completes when the queue drains.
func (p *Process) Step() process.StepResult {
	if p.status != process.StatusRunning {
		return p.result(nil)
	}
	p.stepIndex++

	node := p.queue[0]
	p.queue = p.queue[1:]
	p.order = append(p.order, node)

	neighbours := append([]string(nil), p.adjacency[node]...)
	sort.Strings(neighbours)
	for _, n := range neighbours {
		if _, seen := p.discovered[n]; seen {
			continue
		}
		p.discovered[n] = struct{}{}
		p.queue = append(p.queue, n)
	}

	events := []process.Event{{
		Name: "visit",
		Data: map[string]any{"node": node, "order": float64(len(p.order) - 1)},
	}}
	if len(p.queue) == 0 {
		p.status = process.StatusCompleted
	}
	return p.result(events)
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
		"visited":  float64(len(p.order)),
		"frontier": float64(len(p.queue)),
		"steps":    float64(p.stepIndex),
	}
}

// Snapshot implements Process.
func (p *Process) Snapshot() map[string]any {
	return map[string]any{
		"queue":   toAny(p.queue),
		"visited": toAny(p.order),
	}
}

// Restore implements Process. The adjacency map is construction-time config
// and is not part of the snapshot.
func (p *Process) Restore(state map[string]any) error {
	queue, err := toStrings(state, "queue")
	if err != nil {
		return err
	}
	order, err := toStrings(state, "visited")
	if err != nil {
		return err
	}
	p.queue = queue
	p.order = order
	p.stepIndex = len(order)
	p.discovered = make(map[string]struct{}, len(order)+len(queue))
	for _, n := range order {
		p.discovered[n] = struct{}{}
	}
	for _, n := range queue {
		p.discovered[n] = struct{}{}
	}
	if len(queue) == 0 {
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

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func toStrings(state map[string]any, key string) ([]string, error) {
	raw, ok := state[key].([]any)
	if !ok {
		return nil, fmt.Errorf("snapshot field %q must be a list of strings", key)
	}
	out := make([]string, len(raw))
	for i, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("snapshot field %q element %d is not a string", key, i)
		}
		out[i] = s
	}
	return out, nil
}
