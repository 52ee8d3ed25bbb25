package worker

import (
	"context"
	"time"

	"karabook/internal/domain"
	"karabook/internal/export"
	"karabook/internal/models"

	"github.com/rs/zerolog"
)

// ExportWorker periodically writes a full bookings workbook into the
// exports directory so the venue always has a fresh offline snapshot.
type ExportWorker struct {
	bookings    domain.BookingService
	rooms       domain.RoomService
	customers   domain.CustomerService
	exporter    *export.Exporter
	dir         string
	interval    time.Duration
	retryPolicy RetryPolicy
	logger      *zerolog.Logger
}

func NewExportWorker(bookings domain.BookingService, rooms domain.RoomService, customers domain.CustomerService, exporter *export.Exporter, dir string, interval time.Duration, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}

	return &ExportWorker{
		bookings:    bookings,
		rooms:       rooms,
		customers:   customers,
		exporter:    exporter,
		dir:         dir,
		interval:    interval,
		retryPolicy: retry,
		logger:      logger,
	}
}

// Start runs the export loop until the context is cancelled.
func (w *ExportWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Str("dir", w.dir).Dur("interval", w.interval).Msg("export worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("export worker stopped")
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error().Err(err).Msg("scheduled export failed")
			}
		}
	}
}

// RunOnce exports the full booking list, retrying with backoff.
func (w *ExportWorker) RunOnce(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		if err := w.exportAll(ctx); err != nil {
			lastErr = err
			delay := w.retryPolicy.NextDelay(attempt)
			w.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("export attempt failed")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}
		return nil
	}
	return lastErr
}

func (w *ExportWorker) exportAll(ctx context.Context) error {
	bookings, err := w.bookings.ListBookings(ctx, models.BookingFilter{})
	if err != nil {
		return err
	}
	rooms, err := w.rooms.ListRooms(ctx)
	if err != nil {
		return err
	}
	customers, err := w.customers.ListCustomers(ctx)
	if err != nil {
		return err
	}

	path, err := w.exporter.ExportToFile(w.dir, bookings, rooms, customers)
	if err != nil {
		return err
	}

	w.logger.Info().Str("file_path", path).Int("bookings", len(bookings)).Msg("bookings exported")
	return nil
}
