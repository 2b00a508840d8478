package track

import "fmt"

// Easing names the interpolation curve applied between a property keyframe
// and its successor.
type Easing string

const (
	EasingLinear    Easing = "linear"
	EasingStep      Easing = "step"
	EasingEaseIn    Easing = "ease-in"
	EasingEaseOut   Easing = "ease-out"
	EasingEaseInOut Easing = "ease-in-out"
)

// ParseEasing validates a declarative easing name. The empty string maps to
// linear so lesson authors can omit the attribute.
func ParseEasing(s string) (Easing, error) {
	switch Easing(s) {
	case "":
		return EasingLinear, nil
	case EasingLinear, EasingStep, EasingEaseIn, EasingEaseOut, EasingEaseInOut:
		return Easing(s), nil
	}
	return "", fmt.Errorf("unknown easing %q", s)
}

// Apply transforms a normalized interpolation factor t in [0,1]. Inputs are
// clamped so a finite query can never produce a non-finite result.
func (e Easing) Apply(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	switch e {
	case EasingStep:
		// Holds the previous value until the next keyframe is reached.
		return 0
	case EasingEaseIn:
		return t * t
	case EasingEaseOut:
		return t * (2 - t)
	case EasingEaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		u := 1 - t
		return 1 - 2*u*u
	default:
		return t
	}
}
