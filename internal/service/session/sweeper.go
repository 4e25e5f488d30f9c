package session

import (
	"context"
	"time"

	"github.com/adhub/backend/internal/logger"
	"github.com/adhub/backend/internal/repository"
)

const defaultSweepInterval = time.Hour

// Sweeper periodically removes expired sessions
// Refresh already deletes an expired record it trips over, the sweeper only
// collects sessions nobody ever tried to refresh
type Sweeper struct {
	sessions repository.SessionRepo
	interval time.Duration
	logger   logger.Logger
}

func NewSweeper(sessions repository.SessionRepo, interval time.Duration, l logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Sweeper{
		sessions: sessions,
		interval: interval,
		logger:   l,
	}
}

// Run sweeps on every tick until the context is cancelled
// The returned channel is closed when the sweeper has fully stopped
func (s *Sweeper) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	s.logger.Debug("Starting session sweeper", "interval", s.interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Debug("Session sweeper stopped by context")
				return

			case <-ticker.C:
				swept, err := s.sessions.DeleteExpired(ctx, time.Now())
				if err != nil {
					s.logger.Error("Failed to sweep expired sessions", "error", err)
					continue
				}
				if swept > 0 {
					s.logger.Info("Swept expired sessions", "count", swept)
				}
			}
		}
	}()

	return idleStopped
}
