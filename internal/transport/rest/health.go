package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const probeTimeout = 3 * time.Second

const (
	statusOK   = "ok"
	statusDown = "down"
)

// Pinger is a backend the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves the liveness, readiness and health endpoints.
type HealthHandler struct {
	checks  map[string]Pinger
	version string
}

// NewHealthHandler creates a HealthHandler. checks maps a backend name such
// as "store" or "cache" to its probe.
func NewHealthHandler(checks map[string]Pinger, version string) *HealthHandler {
	return &HealthHandler{checks: checks, version: version}
}

type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Down       []string              `json:"down,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the probe outcome of one backend.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Live always answers 200 while the process serves HTTP.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK, Timestamp: time.Now()})
}

// Ready answers 200 when every backend responds and 503 with the names of
// the failing ones otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	components := h.probe(r.Context())
	resp := HealthResponse{Status: statusOK, Down: downNames(components), Timestamp: time.Now()}
	if len(resp.Down) > 0 {
		resp.Status = statusDown
	}
	writeJSON(w, httpStatus(resp.Status), resp)
}

// Health reports every backend with its latency or error, plus the build
// version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := h.probe(r.Context())
	resp := HealthResponse{
		Status:     statusOK,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	}
	if len(downNames(components)) > 0 {
		resp.Status = statusDown
	}
	writeJSON(w, httpStatus(resp.Status), resp)
}

// probe pings all backends concurrently under a shared deadline.
func (h *HealthHandler) probe(ctx context.Context) map[string]CompStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var (
		mu  sync.Mutex
		out = make(map[string]CompStatus, len(h.checks))
	)
	// Probe errors are recorded per backend; the group never fails.
	var g errgroup.Group
	for name, p := range h.checks {
		g.Go(func() error {
			start := time.Now()
			err := p.Ping(ctx)
			cs := CompStatus{Status: statusOK, Latency: time.Since(start).String()}
			if err != nil {
				cs = CompStatus{Status: statusDown, Error: err.Error()}
			}
			mu.Lock()
			out[name] = cs
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func downNames(components map[string]CompStatus) []string {
	var down []string
	for name, cs := range components {
		if cs.Status != statusOK {
			down = append(down, name)
		}
	}
	sort.Strings(down)
	return down
}

func httpStatus(status string) int {
	if status == statusOK {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
