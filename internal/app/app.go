package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kangezhang/learngraphics/internal/ctxlog"
	"github.com/kangezhang/learngraphics/internal/lesson"
	"github.com/kangezhang/learngraphics/internal/process"
	"github.com/kangezhang/learngraphics/internal/timeline"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: a compiled lesson with its runtime, clock and process registry.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *process.Registry
	lesson   *lesson.Lesson
	result   *lesson.Result
	clock    timeline.Clock
	manual   *timeline.ManualClock // non-nil in max-speed mode
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own isolated logger, registry and compiled lesson.
// Fatal startup problems (unreadable or invalid lessons) panic; entrypoints
// recover to print a clean message.
func NewApp(outW io.Writer, config *Config, modules ...process.Module) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := process.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("Process modules registered.", "kinds", reg.Kinds())

	l, err := lesson.Load(ctx, config.LessonPath)
	if err != nil {
		panic(fmt.Errorf("failed to load lesson: %w", err))
	}

	var clock timeline.Clock
	var manual *timeline.ManualClock
	if config.MaxSpeed {
		manual = timeline.NewManualClock()
		clock = manual
		logger.Debug("Using virtual clock for max-speed playback.")
	} else {
		interval := time.Duration(0)
		if config.FrameRateHz > 0 {
			interval = time.Second / time.Duration(config.FrameRateHz)
		}
		clock = timeline.NewFrameClock(interval)
	}

	result, err := lesson.Compile(ctx, l, reg, clock)
	if err != nil {
		panic(fmt.Errorf("failed to compile lesson: %w", err))
	}

	if config.Speed > 0 {
		result.Runtime.SetSpeed(config.Speed)
	}
	if config.Loop != nil {
		result.Runtime.SetLoop(*config.Loop)
	}

	logger.Info("📖 Lesson ready.",
		"name", l.Name,
		"duration", result.Runtime.Duration(),
		"tracks", len(result.Runtime.Tracks()),
		"markers", len(result.Runtime.Markers()),
		"processes", len(result.Bindings),
	)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		registry: reg,
		lesson:   l,
		result:   result,
		clock:    clock,
		manual:   manual,
	}
}

// Runtime returns the compiled lesson's runtime. This is primarily for
// testing.
func (a *App) Runtime() *timeline.Runtime {
	return a.result.Runtime
}

// Registry returns the application's process registry. This is primarily for
// testing.
func (a *App) Registry() *process.Registry {
	return a.registry
}
