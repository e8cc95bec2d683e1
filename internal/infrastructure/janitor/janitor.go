// Package janitor removes expired session rows in the background. Expired
// sessions are already invisible to validation; the sweep only keeps the
// sessions table from growing without bound in durable mode.
package janitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fixapp/fixapp-api/internal/api/metrics"
	"github.com/fixapp/fixapp-api/internal/core/ports"
)

// Sweeper periodically purges expired sessions.
type Sweeper struct {
	sessions ports.SessionService
	interval time.Duration
	log      zerolog.Logger
}

// NewSweeper creates a Sweeper running every interval. An interval of zero
// or less disables the sweep entirely.
func NewSweeper(sessions ports.SessionService, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{sessions: sessions, interval: interval, log: log}
}

// Start launches the sweep goroutine. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("session sweep disabled")
		return
	}
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.sessions.PurgeExpired(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				metrics.SessionsPurgedTotal.Add(float64(n))
				s.log.Info().Int64("purged", n).Msg("expired sessions swept")
			}
		}
	}
}
