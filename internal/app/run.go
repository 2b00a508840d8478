package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kangezhang/learngraphics/internal/ctxlog"
	"github.com/kangezhang/learngraphics/internal/render"
	"github.com/kangezhang/learngraphics/internal/snapshot"
	"github.com/kangezhang/learngraphics/internal/timeline"
)

// Run plays the lesson to its end. It drives the status server and the
// playback loop under one errgroup; a looping lesson plays until ctx is
// cancelled. On completion the final snapshot is exported if configured and
// a short report is printed.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	rt := a.result.Runtime
	defer rt.Dispose()

	detachLog := render.NewLogSink(a.logger).Attach(rt)
	defer detachLog()

	for _, opts := range a.rendererOptions() {
		bridge, err := render.NewSocketIOBridge(ctx, opts)
		if err != nil {
			return fmt.Errorf("failed to connect renderer bridge: %w", err)
		}
		defer bridge.Close()
		detach := bridge.Attach(rt)
		defer detach()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	if a.config.StatusPort > 0 {
		a.startStatusServer(g, gctx)
	}

	ended := make(chan struct{})
	var endOnce sync.Once
	unsubscribe := rt.Subscribe(func(n timeline.Notification) {
		if n.Kind == timeline.NoteEnd {
			endOnce.Do(func() { close(ended) })
		}
	})
	defer unsubscribe()

	g.Go(func() error {
		a.logger.Info("🚀 Starting playback.", "lesson", a.lesson.Name)
		rt.Play()
		if a.manual != nil {
			return a.pumpFrames(gctx, ended)
		}
		select {
		case <-ended:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	// The status server outlives playback only until the group unwinds.
	g.Go(func() error {
		select {
		case <-ended:
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("🏁 Playback finished.", "lesson", a.lesson.Name)

	if a.config.SnapshotOut != "" {
		// An empty format leaves the extension inference to WriteFile.
		format := snapshot.Format(a.config.SnapshotFormat)
		if a.config.SnapshotFormat != "" {
			var err error
			if format, err = snapshot.ParseFormat(a.config.SnapshotFormat); err != nil {
				return err
			}
		}
		if err := snapshot.WriteFile(a.config.SnapshotOut, rt.Serialize(), format); err != nil {
			return err
		}
		a.logger.Info("Snapshot exported.", "path", a.config.SnapshotOut)
	}

	fmt.Fprintf(a.outW, "lesson %q played to t=%.2fs (%d tracks, %d markers)\n",
		a.lesson.Name, rt.CurrentTime(), len(rt.Tracks()), len(rt.Markers()))
	return nil
}

// rendererOptions collects the socket.io bridges to open: every
// renderer "socketio" block in the lesson plus the -render-url flag.
// "log" renderer blocks are covered by the always-attached log sink.
func (a *App) rendererOptions() []render.SocketIOOptions {
	var out []render.SocketIOOptions
	for _, rb := range a.lesson.Renderers {
		if rb.Kind != "socketio" {
			continue
		}
		out = append(out, render.SocketIOOptions{
			URL:                rb.URL,
			InsecureSkipVerify: rb.InsecureSkipVerify,
		})
	}
	if a.config.RenderURL != "" {
		out = append(out, render.SocketIOOptions{URL: a.config.RenderURL})
	}
	return out
}

// pumpFrames drives the virtual clock as fast as frames commit. Marker
// auto-pauses still respect their configured delay on the virtual timeline.
func (a *App) pumpFrames(ctx context.Context, ended <-chan struct{}) error {
	interval := DefaultPumpInterval
	if a.config.FrameRateHz > 0 {
		interval = time.Second / time.Duration(a.config.FrameRateHz)
	}
	for {
		select {
		case <-ended:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			a.manual.Advance(interval)
		}
	}
}

// DefaultPumpInterval is the virtual frame length used in max-speed mode.
const DefaultPumpInterval = timeline.DefaultFrameInterval
