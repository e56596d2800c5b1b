package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

type Handler struct {
	required map[string]Checker
	optional map[string]Checker
	logger   *slog.Logger
}

// NewHandler reports 503 when a required check fails. A failing optional
// check is reported as "degraded" and keeps the status at 200.
func NewHandler(logger *slog.Logger, required, optional map[string]Checker) *Handler {
	return &Handler{required: required, optional: optional, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type result struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]result, len(h.required)+len(h.optional))
		status  = http.StatusOK
		g       errgroup.Group
	)
	run := func(name string, c Checker, required bool) {
		g.Go(func() error {
			start := time.Now()
			err := c.Check(ctx)
			res := result{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.logger.Error("health check failed", "name", name, "required", required, "error", err)
				res.Status = "degraded"
				if required {
					res.Status = "error"
					status = http.StatusServiceUnavailable
				}
			}
			results[name] = res
			return nil
		})
	}
	for name, c := range h.required {
		run(name, c, true)
	}
	for name, c := range h.optional {
		run(name, c, false)
	}
	_ = g.Wait()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(results)
}
