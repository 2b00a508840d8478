// Package timeline owns playback: a Runtime holds a track set and markers,
// drives a virtual clock through idle/playing/paused states, drains one-shot
// cues exactly once per pass, auto-pauses at narrative markers, and
// serializes losslessly to a plain document.
//
// # Execution model
//
// The runtime is cooperatively scheduled: a Clock delivers frame callbacks,
// each of which commits at most one time advance. There is no parallelism in
// the playback path; the only true suspension point is the cancellable
// marker auto-resume timer. Public methods are safe to call from timer
// goroutines because all state is guarded by one mutex, but the runtime
// never calls back into subscribers while holding it.
//
// # Ordering
//
// Within one advance, time is strictly monotonic except on explicit seek,
// stop, or loop wrap. Cues drained within one advance are delivered sorted
// by (time, track id, keyframe index) across all event tracks; this global
// time-sort is a documented, tested contract.
package timeline
