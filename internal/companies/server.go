package companies

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	companiesPath   = "/companies"
	companyPath     = "/companies/{id}"
	metricsPath     = "/metrics"
	contentTypeJSON = "application/json"
	shutdownTimeout = 5 * time.Second
)

// EditRequest is the body of PATCH /companies/{id}.
type EditRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Server exposes a Source over HTTP.
type Server struct {
	source   Source
	logger   *zap.Logger
	router   *mux.Router
	registry *prometheus.Registry
	metrics  *metrics
}

func NewServer(source Source, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := prometheus.NewRegistry()
	s := &Server{
		source:   source,
		logger:   logger,
		router:   mux.NewRouter(),
		registry: registry,
		metrics:  newMetrics(registry),
	}
	s.router.Use(s.instrument)
	s.router.Path(companiesPath).Methods(http.MethodGet).HandlerFunc(s.listCompanies)
	s.router.Path(companyPath).Methods(http.MethodPatch).HandlerFunc(s.editCompany)
	s.router.Path(metricsPath).Handler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(l)
	}()
	s.logger.Info("companies server listening", zap.String("addr", l.Addr().String()))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.logger.Info("shutting down companies server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	list, err := s.source.List(r.Context())
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError, "unable to list companies")
		return
	}
	if list == nil {
		list = []Company{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) editCompany(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, err, http.StatusBadRequest, "unable to decode edit request")
		return
	}
	company, err := s.source.Update(r.Context(), id, req.Field, req.Value)
	switch {
	case errors.Is(err, ErrNotFound):
		s.writeError(w, err, http.StatusNotFound, "company not found")
		return
	case errors.Is(err, ErrFieldNotEditable):
		s.writeError(w, err, http.StatusBadRequest, "field not editable")
		return
	case err != nil:
		s.writeError(w, err, http.StatusInternalServerError, "unable to edit company")
		return
	}
	s.metrics.edits.Inc()
	s.logger.Info("company edited", zap.String("id", id), zap.String("field", req.Field))
	s.writeJSON(w, http.StatusOK, company)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError, "can not marshal the response")
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if n, err := w.Write(payload); err != nil {
		s.logger.Error("error writing response", zap.Int("bytesWritten", n), zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error, status int, msg string) {
	s.logger.Warn(msg, zap.Error(err), zap.Int("status", status))
	http.Error(w, err.Error(), status)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		s.metrics.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		s.metrics.duration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())
		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed))
	})
}
