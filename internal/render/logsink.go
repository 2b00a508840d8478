package render

import (
	"log/slog"

	"github.com/kangezhang/learngraphics/internal/timeline"
)

// LogSink mirrors runtime notifications into a structured logger. Ticks go to
// Debug (one per frame is far too chatty for Info); discrete happenings go to
// Info.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink logging through logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "render.log")}
}

// Attach subscribes the sink to rt and returns the unsubscribe function.
func (s *LogSink) Attach(rt *timeline.Runtime) func() {
	return rt.Subscribe(s.handle)
}

func (s *LogSink) handle(n timeline.Notification) {
	switch n.Kind {
	case timeline.NoteTick:
		s.logger.Debug("Tick committed.",
			"time", n.Time,
			"properties", len(n.Snapshot.Properties),
			"steps", len(n.Snapshot.Steps),
			"states", len(n.Snapshot.States),
		)
	case timeline.NoteEvent:
		s.logger.Info("🎬 Cue fired.",
			"time", n.Time,
			"track", n.Event.TrackID,
			"action", n.Event.Action,
		)
	case timeline.NoteStateChange:
		s.logger.Info("Playback state changed.", "time", n.Time, "state", n.State)
	case timeline.NoteEnd:
		s.logger.Info("🏁 Playback reached the end.", "time", n.Time)
	}
}
