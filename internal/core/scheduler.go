package core

// scheduler.go runs upload history maintenance in the background. Failed
// and rolled back uploads carry no records, so their history rows are
// purged once they are older than the retention window. Individual purge
// failures are logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls upload history purging.
type RetentionConfig struct {
	FailedUploadDays int           // Days to keep failed/rolled back history rows (default: 30)
	CheckInterval    time.Duration // How often to purge (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.FailedUploadDays <= 0 {
		c.FailedUploadDays = 30
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartRetentionScheduler purges stale upload history immediately and then
// every CheckInterval until ctx is cancelled.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("retention scheduler started",
		"failed_upload_days", cfg.FailedUploadDays,
		"interval", cfg.CheckInterval,
	)

	s.runRetentionJob(ctx, cfg, time.Now())

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case now := <-ticker.C:
			s.runRetentionJob(ctx, cfg, now)
		}
	}
}

// runRetentionJob performs one purge and returns the rows removed.
func (s *Service) runRetentionJob(ctx context.Context, cfg RetentionConfig, now time.Time) int64 {
	start := time.Now()
	cutoff := now.AddDate(0, 0, -cfg.FailedUploadDays)

	purged, err := s.store.PurgeUploads(ctx, cutoff)
	if err != nil {
		slog.Error("upload history purge failed", "error", err)
		return 0
	}

	slog.Info("purged upload history",
		"rows_purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return purged
}
