// Package health serves liveness, readiness and build status probes.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"credledger/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CheckFunc reports the health of one dependency. Nil means healthy.
type CheckFunc func(ctx context.Context) error

const checkTimeout = 2 * time.Second

// Probe states reported per check and overall.
const (
	StateUp       = "up"
	StateDown     = "down"
	StateReady    = "ready"
	StateDegraded = "degraded"
	StateNotReady = "not_ready"
)

type check struct {
	name     string
	fn       CheckFunc
	critical bool
}

// Handler serves the probes. Critical checks gate readiness; optional checks
// only mark the instance degraded.
type Handler struct {
	startTime   time.Time
	environment string
	now         func() time.Time

	mu     sync.RWMutex
	checks []check
}

func New(environment string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		now:         time.Now,
	}
}

// RegisterCheck adds a dependency the instance cannot serve without.
func (h *Handler) RegisterCheck(name string, fn CheckFunc) {
	h.register(check{name: name, fn: fn, critical: true})
}

// RegisterOptional adds a dependency whose loss degrades but does not stop
// request handling.
func (h *Handler) RegisterOptional(name string, fn CheckFunc) {
	h.register(check{name: name, fn: fn})
}

func (h *Handler) register(c check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.checks {
		if h.checks[i].name == c.name {
			h.checks[i] = c
			return
		}
	}
	h.checks = append(h.checks, c)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type LivenessResponse struct {
	Status string `json:"status"`
}

// HandleLiveness answers as long as the process serves HTTP.
func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

type CheckResult struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks,omitempty"`
}

// HandleReadiness runs every check concurrently under a shared timeout.
// Any critical failure answers 503.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := append([]check(nil), h.checks...)
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	results := make([]CheckResult, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			res := CheckResult{Name: c.name, State: StateUp, Critical: c.critical}
			if err := c.fn(ctx); err != nil {
				res.State = StateDown
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	resp := ReadinessResponse{Status: StateReady, Checks: results}
	for _, res := range results {
		if res.State == StateUp {
			continue
		}
		if res.Critical {
			resp.Status = StateNotReady
			break
		}
		resp.Status = StateDegraded
	}

	status := http.StatusOK
	if resp.Status == StateNotReady {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}

type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(now.Sub(h.startTime).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
	})
}
