package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/benmeehan/gps-ingestor/internal/constants"
	"github.com/benmeehan/gps-ingestor/internal/metrics_collectors"
	http_middleware "github.com/benmeehan/gps-ingestor/internal/middlewares/http"
	"github.com/benmeehan/gps-ingestor/internal/models"
	"github.com/benmeehan/gps-ingestor/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// HTTPOptions configures the HTTP listener and its routes.
type HTTPOptions struct {
	Addr            string
	HomeMessage     string // GET / is only routed when set
	MetricsPath     string // Metrics are only routed when set and a registry is given
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// HTTPService exposes the ingestion endpoints over HTTP.
type HTTPService struct {
	opts        HTTPOptions
	locations   *LocationService
	repository  storage.LocationRepository
	metrics     *metrics_collectors.MetricsRegistry
	middlewares []http_middleware.HTTPMiddleware
	logger      zerolog.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
}

// NewHTTPService creates an HTTPService. metrics may be nil.
func NewHTTPService(opts HTTPOptions, locations *LocationService, repository storage.LocationRepository,
	metrics *metrics_collectors.MetricsRegistry, middlewares []http_middleware.HTTPMiddleware, logger zerolog.Logger) *HTTPService {
	return &HTTPService{
		opts:        opts,
		locations:   locations,
		repository:  repository,
		metrics:     metrics,
		middlewares: middlewares,
		logger:      logger,
	}
}

// Handler returns the routed handler wrapped in the configured middlewares.
func (h *HTTPService) Handler() http.Handler {
	mux := http.NewServeMux()

	if h.opts.HomeMessage != "" {
		mux.HandleFunc("GET /{$}", h.handleHome)
	}
	mux.HandleFunc("POST /location", h.handleLocation)
	mux.HandleFunc("POST /location/nmea", h.handleNMEA)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.metrics != nil && h.opts.MetricsPath != "" {
		mux.Handle("GET "+h.opts.MetricsPath, h.metrics.Handler())
	}

	return http_middleware.Chain(mux, h.middlewares...)
}

// Start binds the listener and serves in a separate goroutine.
func (h *HTTPService) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.server != nil {
		h.logger.Warn().Msg("HTTPService is already running")
		return errors.New("http service is already running")
	}

	listener, err := net.Listen("tcp", h.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.opts.Addr, err)
	}

	server := &http.Server{
		Handler:      h.Handler(),
		ReadTimeout:  h.opts.ReadTimeout,
		WriteTimeout: h.opts.WriteTimeout,
		IdleTimeout:  h.opts.IdleTimeout,
	}
	h.server = server
	h.listener = listener

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error().Err(err).Msg("HTTP server stopped unexpectedly")
		}
	}()

	h.logger.Info().Str("addr", listener.Addr().String()).Msg("HTTPService started successfully")
	return nil
}

// Stop waits up to the shutdown timeout for in-flight requests, then closes the listener.
func (h *HTTPService) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.server == nil {
		h.logger.Warn().Msg("HTTPService is not running")
		return errors.New("http service is not running")
	}

	timeout := h.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := h.server.Shutdown(ctx)
	if err != nil {
		_ = h.server.Close()
	}
	h.wg.Wait()

	h.server = nil
	h.listener = nil

	if err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	h.logger.Info().Msg("HTTPService stopped successfully")
	return nil
}

// Addr returns the bound address, or an empty string when not running.
func (h *HTTPService) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

func (h *HTTPService) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.opts.HomeMessage))
}

func (h *HTTPService) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req models.LocationRequest
	if !h.decode(w, r, &req) {
		return
	}

	record, err := h.locations.Submit(r.Context(), req)
	h.respond(w, r, record, err)
}

func (h *HTTPService) handleNMEA(w http.ResponseWriter, r *http.Request) {
	var req models.NMEARequest
	if !h.decode(w, r, &req) {
		return
	}

	record, err := h.locations.SubmitNMEA(r.Context(), req)
	h.respond(w, r, record, err)
}

func (h *HTTPService) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.HealthCheckTimeout)
	defer cancel()

	if err := h.repository.Ping(ctx); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Location store health check failed")
		writeJSON(w, http.StatusServiceUnavailable, models.HealthResponse{
			Status: constants.HealthStatusUnavailable,
			Error:  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: constants.HealthStatusOK})
}

// decode reads a single JSON object body of at most MaxBodyBytes. It writes the error response itself.
func (h *HTTPService) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(v)
	if err == nil {
		// Exactly one JSON value per body
		var trailing json.RawMessage
		if err = dec.Decode(&trailing); err == io.EOF {
			return true
		}
		if err == nil {
			err = errors.New("unexpected data after the JSON object")
		}
	}

	h.metrics.ObserveSubmission(constants.TransportHTTP, metrics_collectors.OutcomeInvalid)

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{Message: constants.MessageBodyTooLarge})
		return false
	}

	hlog.FromRequest(r).Debug().Err(err).Msg("Rejected malformed request body")
	writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Message: constants.MessageInvalidBody})
	return false
}

func (h *HTTPService) respond(w http.ResponseWriter, r *http.Request, record *models.LocationRecord, err error) {
	h.metrics.ObserveSubmission(constants.TransportHTTP, outcome(err))

	if err == nil {
		writeJSON(w, http.StatusOK, models.SubmitResponse{Message: constants.MessageSaved, Location: record})
		return
	}

	var ingestErr *IngestError
	if errors.As(err, &ingestErr) && ingestErr.Kind == KindValidation {
		hlog.FromRequest(r).Debug().Err(err).Msg("Rejected location submission")
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Message: ingestErr.Message, Field: ingestErr.Field})
		return
	}

	detail := err.Error()
	if ingestErr != nil && ingestErr.Err != nil {
		detail = ingestErr.Err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Message: constants.MessageDatabaseError, Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
