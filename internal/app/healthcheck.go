package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/stepflow/internal/ctxlog"
)

// healthHandler answers liveness probes.
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

type workflowStatus struct {
	State         string `json:"state"`
	Attempts      int    `json:"attempts"`
	Rows          int    `json:"rows"`
	Published     bool   `json:"published"`
	StorageErrors int    `json:"storage_errors"`
	DurationMS    int64  `json:"duration_ms"`
}

type runStatus struct {
	RunID          string                    `json:"run_id"`
	TotalRuntimeMS int64                     `json:"total_runtime_ms"`
	Workflows      map[string]workflowStatus `json:"workflows"`
}

// statusHandler reports the statistics of the current or last run.
func (app *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	rc := app.lastRun.Load()
	if rc == nil {
		http.Error(w, "no run has started", http.StatusNotFound)
		return
	}

	status := runStatus{
		RunID:          rc.RunID,
		TotalRuntimeMS: rc.Stats.TotalRuntime().Milliseconds(),
		Workflows:      make(map[string]workflowStatus),
	}
	for _, name := range rc.Stats.Names() {
		ws, _ := rc.Stats.Workflow(name)
		status.Workflows[name] = workflowStatus{
			State:         ws.State.String(),
			Attempts:      ws.Attempts,
			Rows:          ws.Rows,
			Published:     ws.Published,
			StorageErrors: ws.StorageErrors,
			DurationMS:    ws.Duration.Milliseconds(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		ctxlog.FromContext(app.ctx).Error("Failed to encode run status.", "error", err)
	}
}

func (app *App) healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", app.healthHandler)
	mux.HandleFunc("/status", app.statusHandler)
	return mux
}

// healthCheckServer initializes and runs the health check HTTP server.
func (app *App) healthCheckServer() {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Configuring health check server.")
	if app.config.HealthcheckPort <= 0 {
		logger.Debug("Health check server not started: disabled")
		return
	}

	addr := fmt.Sprintf(":%d", app.config.HealthcheckPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.healthMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	app.httpServer = srv

	go func() {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

func (app *App) closeHealthCheckServer() error {
	logger := ctxlog.FromContext(app.ctx)
	if app.httpServer == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(app.ctx), 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := app.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	app.httpServer = nil
	logger.Debug("Health check server shut down gracefully.")
	return nil
}
