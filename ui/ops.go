package ui

import (
	"encoding/json"
	"net/http"
	"time"

	"happydash/internal/loader"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewOpsRouter serves /healthz and the pprof endpoints under /debug
func NewOpsRouter(l *loader.Loader, started time.Time) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Status string       `json:"status"`
			Uptime string       `json:"uptime"`
			Loader loader.Stats `json:"loader"`
		}{
			Status: "ok",
			Uptime: time.Since(started).Round(time.Second).String(),
			Loader: l.Stats(),
		})
	})
	r.Mount("/debug", middleware.Profiler())
	return r
}
