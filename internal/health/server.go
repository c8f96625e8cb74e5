// Package health exposes the liveness and readiness endpoints the engine
// daemon serves for its orchestrator. Readiness is gated on the database and
// the daemon's own startup flag; the results stream is reported but a dropped
// stream never fails the probe, it reconnects on its own.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultPort     = "8080"
	dbPingTimeout   = 3 * time.Second
	shutdownTimeout = 5 * time.Second
)

// DatabasePinger is the slice of the repository pool the readiness probe needs.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// StreamChecker reports whether the settlement stream currently holds a
// live connection.
type StreamChecker interface {
	IsConnected() bool
}

// HealthResponse is the body served by /health and /live.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ReadyResponse is the body served by /ready, one entry per dependency check.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Server answers health probes on its own port, separate from any traffic
// the daemon handles.
type Server struct {
	serviceName string
	version     string
	port        string
	server      *http.Server
	logger      *logrus.Logger
	db          DatabasePinger
	stream      StreamChecker

	mu    sync.RWMutex
	ready bool
}

// Config wires the probe dependencies into the server. DB and Stream are
// optional; a nil dependency is simply absent from the readiness checks.
type Config struct {
	ServiceName string
	Version     string
	Port        string
	Logger      *logrus.Logger
	DB          DatabasePinger
	Stream      StreamChecker
}

// NewServer builds a probe server. The port falls back to HEALTH_PORT and
// then to 8080 when the config leaves it empty.
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == "" {
		port = os.Getenv("HEALTH_PORT")
	}
	if port == "" {
		port = defaultPort
	}

	return &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		port:        port,
		logger:      cfg.Logger,
		db:          cfg.DB,
		stream:      cfg.Stream,
	}
}

// SetReady flips the startup gate. The daemon calls this once its scheduler
// and providers are wired, and again with false during shutdown.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady reports the current startup gate.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start serves the probe endpoints in the background and shuts them down
// when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)

	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"port":    s.port,
				"service": s.serviceName,
			}).Info("Health endpoints listening")
		}

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.logger != nil {
				s.logger.WithError(err).Error("Health endpoints failed")
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown drains in-flight probe requests, bounded by shutdownTimeout.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	if s.logger != nil {
		s.logger.Info("Health endpoints shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// handleHealth answers with the service identity. Always 200 while the
// process is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
	})
}

// handleLive is the liveness probe, deliberately dependency-free.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: s.serviceName,
	})
}

// handleReady runs the dependency checks and answers 503 until all the
// gating ones pass.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	ready := true

	if s.IsReady() {
		checks["service"] = "ok"
	} else {
		ready = false
		checks["service"] = "not_ready"
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), dbPingTimeout)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			ready = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	// Informational only. Settlements catch up once the stream redials.
	if s.stream != nil {
		if s.stream.IsConnected() {
			checks["results_stream"] = "connected"
		} else {
			checks["results_stream"] = "disconnected"
		}
	}

	resp := ReadyResponse{
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	if ready {
		resp.Status = "ok"
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.Status = "not_ready"
	s.writeJSON(w, http.StatusServiceUnavailable, resp)
}
