package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/netswitch/internal/core/domain"
)

// Status is a snapshot of the active connection.
type Status struct {
	Network     domain.Network  `json:"network"`
	Provider    domain.Provider `json:"provider"`
	Preferred   domain.Provider `json:"preferred_provider"`
	ClientID    string          `json:"client_id"`
	BaseURL     string          `json:"base_url"`
	ChainID     string          `json:"chain_id"`
	Height      uint64          `json:"height,omitempty"`
	HeightError string          `json:"height_error,omitempty"`

	Client *domain.ClientHealth `json:"client,omitempty"`
	Last   *Assessment          `json:"last_assessment,omitempty"`
}

// Backend is the registry surface the server exposes.
type Backend interface {
	Snapshot() Status
	Status(ctx context.Context) Status
	SwitchNetwork(ctx context.Context, network domain.Network) error
	SwitchProvider(ctx context.Context, provider domain.Provider) error
	CheckHealth(ctx context.Context) (domain.Liveness, error)
}

// CheckFunc reports whether a dependency is healthy.
type CheckFunc func(ctx context.Context) error

// Server provides HTTP endpoints for status, switching and health checks.
type Server struct {
	backend Backend
	server  *http.Server

	mu       sync.RWMutex
	watchers []func(domain.Liveness)
	checks   map[string]CheckFunc
}

// NewServer creates a new status server.
func NewServer(backend Backend, port int) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		backend: backend,
		checks:  make(map[string]CheckFunc),
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	r.Get("/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/check", s.handleCheck)
	r.Route("/switch", func(r chi.Router) {
		r.Post("/network", s.handleSwitchNetwork)
		r.Post("/network/{network}", s.handleSwitchNetwork)
		r.Post("/provider", s.handleSwitchProvider)
		r.Post("/provider/{provider}", s.handleSwitchProvider)
	})

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// OnCheck registers fn to be called with the verdict of every health check
// triggered through the server.
func (s *Server) OnCheck(fn func(domain.Liveness)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// RegisterCheck adds a dependency check reported by /health.
func (s *Server) RegisterCheck(name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Status(r.Context()))
}

// handleHealth reports the verdict of the last assessment without probing the
// endpoint, plus the registered dependency checks. A stalled endpoint is a
// warning, not an outage; a failing dependency is.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st := s.backend.Snapshot()

	response := map[string]any{
		"network":  st.Network,
		"provider": st.Provider,
		"status":   "unknown",
	}
	if st.Last != nil {
		response["status"] = st.Last.Liveness.Status()
		response["liveness"] = st.Last.Liveness
	}

	s.mu.RLock()
	checks := make(map[string]CheckFunc, len(s.checks))
	for k, v := range s.checks {
		checks[k] = v
	}
	s.mu.RUnlock()

	code := http.StatusOK
	if len(checks) > 0 {
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		response["checks"] = results
	}
	if code != http.StatusOK {
		response["status"] = "degraded"
	}

	writeJSON(w, code, response)
}

type switchRequest struct {
	Network  string `json:"network"`
	Provider string `json:"provider"`
}

func (s *Server) handleSwitchNetwork(w http.ResponseWriter, r *http.Request) {
	req := switchRequest{Network: chi.URLParam(r, "network")}
	if req.Network == "" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}
	s.respondSwitch(w, r, s.backend.SwitchNetwork(r.Context(), domain.Network(req.Network)))
}

func (s *Server) handleSwitchProvider(w http.ResponseWriter, r *http.Request) {
	req := switchRequest{Provider: chi.URLParam(r, "provider")}
	if req.Provider == "" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}
	s.respondSwitch(w, r, s.backend.SwitchProvider(r.Context(), domain.Provider(req.Provider)))
}

func (s *Server) respondSwitch(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.backend.Status(r.Context()))
	case errors.Is(err, domain.ErrStorage):
		// Switched in memory but not persisted.
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  s.backend.Status(r.Context()),
			"warning": err.Error(),
		})
	default:
		writeError(w, statusFor(err), err)
	}
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	liveness, err := s.backend.CheckHealth(r.Context())
	if err != nil && !errors.Is(err, domain.ErrStorage) {
		writeError(w, statusFor(err), err)
		return
	}

	s.mu.RLock()
	watchers := s.watchers
	s.mu.RUnlock()
	for _, fn := range watchers {
		fn(liveness)
	}

	response := map[string]string{
		"liveness": string(liveness),
		"status":   liveness.Status(),
	}
	if err != nil {
		response["warning"] = err.Error()
	}
	writeJSON(w, http.StatusOK, response)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedNetwork), errors.Is(err, domain.ErrUnsupportedProvider):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConstruct), errors.Is(err, domain.ErrProbe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
