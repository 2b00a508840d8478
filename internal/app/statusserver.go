package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// statusDoc is the JSON body served at /status.
type statusDoc struct {
	Lesson      string  `json:"lesson"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	State       string  `json:"state"`
	Speed       float64 `json:"speed"`
	Loop        bool    `json:"loop"`
	TrackCount  int     `json:"trackCount"`
	MarkerCount int     `json:"markerCount"`
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	rt := a.result.Runtime
	doc := statusDoc{
		Lesson:      a.lesson.Name,
		CurrentTime: rt.CurrentTime(),
		Duration:    rt.Duration(),
		State:       string(rt.State()),
		Speed:       rt.Speed(),
		Loop:        rt.Loop(),
		TrackCount:  len(rt.Tracks()),
		MarkerCount: len(rt.Markers()),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		a.logger.Error("Failed to encode status response", "error", err)
	}
}

// startStatusServer serves /health and /status until gctx is cancelled.
func (a *App) startStatusServer(g *errgroup.Group, gctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)

	addr := fmt.Sprintf(":%d", a.config.StatusPort)
	server := &http.Server{Addr: addr, Handler: mux}

	g.Go(func() error {
		a.logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/status", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("status server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.Debug("Shutting down status server...")
		return server.Shutdown(shutdownCtx)
	})
}
