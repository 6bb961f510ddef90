package ratelimit

import (
	"time"

	"github.com/mkhasanov/storefront/internal/logger"
)

// Sweeper periodically evicts lapsed windows from one or more limiters.
// It implements the workers.Worker interface and runs until Stop is
// called.
type Sweeper struct {
	limiters []*Limiter
	interval time.Duration
	stopC    chan struct{}
	logger   *logger.Logger
}

// NewSweeper constructs a Sweeper ticking every interval over limiters.
func NewSweeper(interval time.Duration, log *logger.Logger, limiters ...*Limiter) *Sweeper {
	return &Sweeper{
		limiters: limiters,
		interval: interval,
		stopC:    make(chan struct{}),
		logger:   log,
	}
}

// Run starts the sweep loop in a background goroutine and returns
// immediately.
func (s *Sweeper) Run() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, l := range s.limiters {
					l.Sweep()
				}
				s.logger.Debug().Int("limiters", len(s.limiters)).Msg("rate-limit windows swept")
			case <-s.stopC:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop. Safe to call once.
func (s *Sweeper) Stop() {
	close(s.stopC)
}
