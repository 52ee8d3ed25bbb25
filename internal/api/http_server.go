package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"karabook/internal/config"
	"karabook/internal/domain"
	"karabook/internal/export"
	"karabook/internal/metrics"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the venue administration REST API.
type HTTPServer struct {
	cfg       *config.Config
	rooms     domain.RoomService
	customers domain.CustomerService
	bookings  domain.BookingService
	exporter  *export.Exporter
	health    func(ctx context.Context) error
	logger    *zerolog.Logger
	server    *http.Server
	auth      *HTTPAuth
}

func NewHTTPServer(cfg *config.Config, rooms domain.RoomService, customers domain.CustomerService, bookings domain.BookingService, exporter *export.Exporter, health func(ctx context.Context) error, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:       cfg,
		rooms:     rooms,
		customers: customers,
		bookings:  bookings,
		exporter:  exporter,
		health:    health,
		logger:    logger,
	}
	srv.auth = NewHTTPAuth(cfg.Auth, cfg.RateLimit)

	mux.HandleFunc("/api/v1/rooms", srv.handleRooms)
	mux.HandleFunc("/api/v1/rooms/", srv.handleRoomByID)
	mux.HandleFunc("/api/v1/customers", srv.handleCustomers)
	mux.HandleFunc("/api/v1/customers/", srv.handleCustomerByID)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/export", srv.handleBookingsExport)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/healthz", srv.handleHealthz)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped root handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
