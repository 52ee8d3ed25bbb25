package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"karabook/internal/config"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// BackupService snapshots the booking database on a schedule so the
// venue can restore rooms, customers and reservations after a bad day.
type BackupService struct {
	dbPath string
	config config.BackupConfig
	logger *zerolog.Logger
}

func NewBackupService(dbPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		dbPath: dbPath,
		config: cfg,
		logger: logger,
	}
}

// Start snapshots immediately, then on every tick until the context is
// cancelled. Old snapshots past the retention window are pruned after
// each run.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("database backups disabled")
		return
	}

	interval := s.interval()
	s.logger.Info().Dur("interval", interval).Str("dir", s.config.StoragePath).Msg("backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

func (s *BackupService) interval() time.Duration {
	if s.config.Schedule == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(s.config.Schedule)
	if err != nil {
		s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("bad backup schedule, using 24h")
		return 24 * time.Hour
	}
	return d
}

// PerformBackup writes a timestamped snapshot of the booking database
// into the storage directory. VACUUM INTO gives a consistent copy while
// the server keeps taking bookings; a plain file copy is the fallback.
func (s *BackupService) PerformBackup() error {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("karabook_%s.db", time.Now().Format("20060102_150405"))
	backupPath := filepath.Join(s.config.StoragePath, name)

	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", backupPath)); err != nil {
		s.logger.Warn().Err(err).Msg("VACUUM INTO failed, falling back to file copy")
		return s.copyBackup(backupPath)
	}

	var bookings int
	if err := db.QueryRow(`SELECT COUNT(*) FROM bookings`).Scan(&bookings); err == nil {
		s.logger.Info().Str("path", backupPath).Int("bookings", bookings).Msg("database backup written")
	} else {
		s.logger.Info().Str("path", backupPath).Msg("database backup written")
	}
	return nil
}

func (s *BackupService) copyBackup(backupPath string) error {
	source, err := os.Open(s.dbPath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer destination.Close()

	// io.Copy of a live sqlite file can race concurrent writes; the copy
	// is best-effort when VACUUM INTO is unavailable.
	if _, err := io.Copy(destination, source); err != nil {
		return err
	}

	s.logger.Info().Str("path", backupPath).Msg("fallback backup written")
	return nil
}

// CleanupOldBackups deletes snapshots older than the retention window.
func (s *BackupService) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory for cleanup")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("removing expired backup")
			os.Remove(filepath.Join(s.config.StoragePath, file.Name()))
		}
	}
}
