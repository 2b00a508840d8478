package track

import (
	"fmt"
	"sort"
)

// Kind discriminates the four track disciplines. Consumers that need a
// concrete type (the runtime's event-draining path, the evaluator) switch on
// the concrete Go type; Kind exists for serialization and diagnostics.
type Kind string

const (
	KindProperty Kind = "property"
	KindEvent    Kind = "event"
	KindStep     Kind = "step"
	KindState    Kind = "state"
)

// ParseKind validates a serialized kind discriminant.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindProperty, KindEvent, KindStep, KindState:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown track kind %q", s)
}

// Track is the capability shared by all four track types. The runtime keeps
// a heterogeneous track list behind this interface and type-switches where a
// discipline-specific operation is needed.
type Track interface {
	// ID is unique within an owning runtime.
	ID() string
	// Kind reports the evaluation discipline.
	Kind() Kind
	// Len is the keyframe count.
	Len() int
	// Times returns the keyframe times in ascending order.
	Times() []float64
}

// surrounding locates the neighbours of t in an ascending time list:
// prev is the index of the latest entry with time <= t (-1 if none), and
// next is the index of the earliest entry with time > t (len if none).
// With stable sorting this resolves an equal-time tie group to its last
// member for at-or-before reads.
func surrounding(times []float64, t float64) (prev, next int) {
	next = sort.Search(len(times), func(i int) bool { return times[i] > t })
	return next - 1, next
}

// sortByTime stable-sorts keyframes ascending by time, preserving insertion
// order within equal-time groups.
func sortByTime[K any](kfs []K, timeOf func(K) float64) {
	sort.SliceStable(kfs, func(i, j int) bool { return timeOf(kfs[i]) < timeOf(kfs[j]) })
}

// removeAtTime drops every keyframe whose time matches t exactly.
func removeAtTime[K any](kfs []K, t float64, timeOf func(K) float64) []K {
	out := kfs[:0]
	for _, kf := range kfs {
		if timeOf(kf) != t {
			out = append(out, kf)
		}
	}
	return out
}

// timesOf projects keyframes onto their time column.
func timesOf[K any](kfs []K, timeOf func(K) float64) []float64 {
	times := make([]float64, len(kfs))
	for i, kf := range kfs {
		times[i] = timeOf(kf)
	}
	return times
}
