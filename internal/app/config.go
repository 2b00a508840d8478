package app

import (
	"errors"
	"fmt"

	"github.com/kangezhang/learngraphics/internal/snapshot"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	LessonPath string // one .hcl file or a directory of them

	LogFormat string
	LogLevel  string

	// Speed overrides the lesson's playback speed when positive; Loop, when
	// non-nil, overrides the lesson's loop flag.
	Speed float64
	Loop  *bool

	StatusPort int
	RenderURL  string

	SnapshotOut    string
	SnapshotFormat string

	// FrameRateHz sets the playback frame callback rate (0 uses the 60 FPS
	// default). MaxSpeed switches to a virtual clock that pumps frames as
	// fast as they commit, for headless runs.
	FrameRateHz int
	MaxSpeed    bool
}

// NewConfig validates cfg and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LessonPath == "" {
		return nil, errors.New("LessonPath is a required configuration field and cannot be empty")
	}
	if cfg.Speed < 0 {
		return nil, fmt.Errorf("playback speed must be positive, got %v", cfg.Speed)
	}
	if cfg.FrameRateHz < 0 {
		return nil, fmt.Errorf("frame rate must be non-negative, got %d", cfg.FrameRateHz)
	}
	if _, err := snapshot.ParseFormat(cfg.SnapshotFormat); err != nil {
		return nil, err
	}
	return &cfg, nil
}
