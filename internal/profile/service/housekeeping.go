package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/reels/internal/profile/store"
)

const cleanupTimeout = 30 * time.Second

// HousekeepingService prunes revocation records once the tokens they block
// have expired on their own.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHousekeepingService creates a housekeeping service. If interval is 0 or
// negative, it defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{Store: store, Logger: logger, Interval: interval}
}

// Start runs one cleanup immediately and then one per Interval until Stop.
// Starting a running service does nothing.
func (s *HousekeepingService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop cancels the worker and waits for an in-progress cleanup to return.
// It is safe to call on a service that was never started.
func (s *HousekeepingService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		s.Cleanup(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Cleanup deletes expired revocations once and returns how many went.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	n, err := s.Store.RevokedTokens().DeleteExpiredRevokedTokens(ctx, now())
	if err != nil {
		if ctx.Err() == nil {
			s.Logger.Error("failed to delete expired revoked tokens", "error", err)
		}
		return 0
	}
	if n > 0 {
		s.Logger.Info("housekeeping cleanup completed", "deleted_revocations", n)
	}
	return n
}
