// Package track implements the keyframe track family that timelines are
// built from.
//
// A track is an id, a kind, and a time-sorted keyframe list plus one of four
// evaluation disciplines:
//
//   - PropertyTrack: continuous interpolation between numeric keyframes
//     (strings degrade to a step function), with per-keyframe easing.
//   - StepTrack: "latest keyframe at or before t", plus index-based
//     navigation helpers for discrete stage progression.
//   - StateTrack: "latest keyframe at or before t" over named states.
//   - EventTrack: one-shot cues. Draining is explicitly stateful and is the
//     only mutating read in the package; everything else is pure.
//
// Evaluation never extrapolates: queries before the first keyframe clamp to
// the first value, queries after the last clamp to the last value, and an
// empty track evaluates to nothing.
//
// Keyframes with equal times are legal. Sorting is stable, so insertion
// order is preserved inside a tie group; at-or-before reads resolve to the
// last keyframe of the group, and event keyframes in a tie group all fire,
// in insertion order.
package track
