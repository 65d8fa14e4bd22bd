package gameserver

import (
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically removes abandoned rooms. It runs one goroutine
// driven by a ticker and satisfies the lifecycle Service contract.
type Sweeper struct {
	service  *Service
	interval time.Duration
	maxAge   time.Duration
	log      *zap.Logger
	done     chan struct{}
}

// NewSweeper creates a sweeper removing rooms older than maxAge every
// interval.
//
// Precondition: interval > 0 and maxAge > 0.
func NewSweeper(service *Service, interval, maxAge time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 || maxAge <= 0 {
		panic("gameserver.NewSweeper: interval and maxAge must be > 0")
	}
	return &Sweeper{
		service:  service,
		interval: interval,
		maxAge:   maxAge,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop. Blocks.
func (s *Sweeper) Start() error {
	s.log.Info("room sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("maxAge", s.maxAge))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return nil
		case <-ticker.C:
			s.service.Sweep(s.maxAge)
		}
	}
}

// Stop ends the sweep loop.
func (s *Sweeper) Stop() {
	close(s.done)
}
