package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// LocalStateStore exposes cleanup for abandoned browser installations.
type LocalStateStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// CleanupResult summarizes the deletions performed by a cleanup run.
type CleanupResult struct {
	DeletedInstallations int
}

// CleanupService periodically removes local state that outlived its TTL.
type CleanupService struct {
	store    LocalStateStore
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// CleanupOption configures CleanupService.
type CleanupOption func(*CleanupService)

// WithCleanupInterval overrides the cleanup interval when greater than zero.
func WithCleanupInterval(interval time.Duration) CleanupOption {
	return func(s *CleanupService) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithCleanupLogger overrides the logger used for cleanup errors.
func WithCleanupLogger(logger *slog.Logger) CleanupOption {
	return func(s *CleanupService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCleanupClock overrides the time source.
func WithCleanupClock(now func() time.Time) CleanupOption {
	return func(s *CleanupService) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a CleanupService.
func New(store LocalStateStore, opts ...CleanupOption) (*CleanupService, error) {
	if store == nil {
		return nil, fmt.Errorf("local state store is required")
	}
	svc := &CleanupService{
		store:    store,
		interval: 10 * time.Minute,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "local state cleanup failed", "error", err)
				continue
			}
			if res.DeletedInstallations > 0 {
				s.logger.InfoContext(ctx, "local state cleanup",
					"deleted_installations", res.DeletedInstallations,
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single cleanup pass.
func (s *CleanupService) RunOnce(ctx context.Context) (CleanupResult, error) {
	deleted, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return CleanupResult{}, fmt.Errorf("delete expired local state: %w", err)
	}
	return CleanupResult{DeletedInstallations: deleted}, nil
}
