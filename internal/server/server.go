// Package server publishes the Swagger document of a route table over HTTP.
// The document is assembled on every request from the immutable route table,
// so concurrent requests never share intermediate state.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mark3labs/routes2swagger/internal/spec"
	"github.com/mark3labs/routes2swagger/internal/swagger"
)

// RequestIDHeader carries the request id. An incoming value is reused.
const RequestIDHeader = "X-Request-ID"

// Server serves /swagger.json, /swagger.yaml, /healthz and /metrics.
type Server struct {
	doc       *spec.Document
	pathOrder []string
	logger    *zap.Logger
	registry  *prometheus.Registry
	metrics   *metrics
	router    *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default discards logs.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// New builds a Server for doc.
func New(doc *spec.Document, opts ...Option) (*Server, error) {
	if doc == nil {
		return nil, errors.New("server: nil document")
	}
	s := &Server{
		doc:       doc,
		pathOrder: swagger.PathOrder(doc),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)

	r := mux.NewRouter()
	r.Use(s.requestID, s.instrument)
	r.HandleFunc("/swagger.json", s.handleDocument(swagger.FormatJSON)).Methods(http.MethodGet, http.MethodHead).Name("swagger.json")
	r.HandleFunc("/swagger.yaml", s.handleDocument(swagger.FormatYAML)).Methods(http.MethodGet, http.MethodHead).Name("swagger.yaml")
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet).Name("healthz")
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet).Name("metrics")
	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleDocument(f swagger.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.logger.With(zap.String("request_id", w.Header().Get(RequestIDHeader)))

		start := time.Now()
		out, err := swagger.Assemble(r.Context(), s.doc, swagger.WithLogger(log))
		s.metrics.duration.Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.assemblies.WithLabelValues("error").Inc()
			log.Error("assemble swagger document", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.metrics.assemblies.WithLabelValues("ok").Inc()

		body, err := swagger.Encode(out, f, s.pathOrder)
		if err != nil {
			log.Error("encode swagger document", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil && cur.GetName() != "" {
			route = cur.GetName()
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.logger.Debug("request",
			zap.String("request_id", w.Header().Get(RequestIDHeader)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}
