package render

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/kangezhang/learngraphics/internal/ctxlog"
	"github.com/kangezhang/learngraphics/internal/timeline"
	"github.com/kangezhang/learngraphics/internal/track"
)

// SocketIOOptions configures the remote-renderer bridge.
type SocketIOOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// ConnectTimeout bounds the initial handshake (default 10s).
	ConnectTimeout time.Duration
}

// SocketIOBridge forwards runtime notifications to an external visualizer
// (typically a browser renderer) over socket.io. Message names mirror the
// notification kinds: tick, event, stateChange, end.
type SocketIOBridge struct {
	io      *socket.Socket
	manager *socket.Manager
}

// NewSocketIOBridge connects to the remote renderer and blocks until the
// handshake completes or the timeout elapses.
func NewSocketIOBridge(ctx context.Context, opts SocketIOOptions) (*SocketIOBridge, error) {
	logger := ctxlog.FromContext(ctx).With("component", "render.socketio", "url", opts.URL)

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse renderer URL: %w", err)
	}
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)

	done := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		logger.Info("🔌 Connected to renderer.", "namespace", opts.Namespace, "sid", io.Id())
		done <- nil
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				done <- err
				return
			}
		}
		done <- fmt.Errorf("renderer connection failed")
	})

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	io.Connect()

	select {
	case <-opCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("timed out connecting to renderer at %s", opts.URL)
	case err := <-done:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("connecting to renderer: %w", err)
		}
	}
	return &SocketIOBridge{io: io, manager: manager}, nil
}

// Attach subscribes the bridge to rt and returns the unsubscribe function.
func (b *SocketIOBridge) Attach(rt *timeline.Runtime) func() {
	return rt.Subscribe(b.handle)
}

// Close disconnects from the remote renderer.
func (b *SocketIOBridge) Close() {
	b.io.Disconnect()
}

func (b *SocketIOBridge) handle(n timeline.Notification) {
	switch n.Kind {
	case timeline.NoteTick:
		b.io.Emit("tick", tickPayload(n))
	case timeline.NoteEvent:
		b.io.Emit("event", map[string]any{
			"time":   n.Time,
			"track":  n.Event.TrackID,
			"action": n.Event.Action,
			"params": n.Event.Params,
		})
	case timeline.NoteStateChange:
		b.io.Emit("stateChange", map[string]any{"time": n.Time, "state": string(n.State)})
	case timeline.NoteEnd:
		b.io.Emit("end", map[string]any{"time": n.Time})
	}
}

// tickPayload flattens a snapshot into the plain JSON shape renderers expect.
func tickPayload(n timeline.Notification) map[string]any {
	payload := map[string]any{"time": n.Time}

	props := make([]map[string]any, 0, len(n.Snapshot.Properties))
	for _, p := range n.Snapshot.Properties {
		props = append(props, map[string]any{
			"track":    p.TrackID,
			"target":   p.TargetID,
			"property": p.Property,
			"value":    valueJSON(p.Value),
		})
	}
	payload["properties"] = props

	steps := make([]map[string]any, 0, len(n.Snapshot.Steps))
	for _, s := range n.Snapshot.Steps {
		steps = append(steps, map[string]any{
			"track":     s.TrackID,
			"index":     s.ActiveStep.Index,
			"label":     s.ActiveStep.Label,
			"completed": len(s.CompletedSteps),
			"payload":   s.ActiveStep.Payload,
		})
	}
	payload["steps"] = steps

	states := make([]map[string]any, 0, len(n.Snapshot.States))
	for _, s := range n.Snapshot.States {
		states = append(states, map[string]any{
			"track":   s.TrackID,
			"state":   s.Value.State,
			"trigger": s.Value.Trigger,
			"payload": s.Value.Payload,
		})
	}
	payload["states"] = states
	return payload
}

func valueJSON(v track.Value) any {
	if v.IsText {
		return v.Text
	}
	return v.Number
}
