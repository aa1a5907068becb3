package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultExpirerInterval = 10 * time.Minute
	defaultAgentTTL        = 1 * time.Hour
)

// ExpirerService periodically evicts agents that have been idle longer than
// the TTL. Simulations are ephemeral; an abandoned agent is just leaked
// trajectory memory.
type ExpirerService struct {
	sim    *SimulationService
	logger *zap.Logger

	interval time.Duration
	ttl      time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewExpirerService(sim *SimulationService, logger *zap.Logger) *ExpirerService {
	return &ExpirerService{
		sim:      sim,
		logger:   logger,
		interval: defaultExpirerInterval,
		ttl:      defaultAgentTTL,
		stopCh:   make(chan struct{}),
	}
}

func (s *ExpirerService) SetInterval(d time.Duration) {
	s.interval = d
}

func (s *ExpirerService) SetTTL(d time.Duration) {
	s.ttl = d
}

// Start runs eviction on a periodic schedule in a background goroutine.
func (s *ExpirerService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("agent expirer started",
			zap.Duration("interval", s.interval),
			zap.Duration("ttl", s.ttl))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.RunOnce(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("agent expirer stopped")
				return
			}
		}
	}()
}

func (s *ExpirerService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// RunOnce evicts idle agents and returns how many were removed.
func (s *ExpirerService) RunOnce(ctx context.Context) int {
	cutoff := time.Now().UTC().Add(-s.ttl)
	removed, err := s.sim.EvictIdle(ctx, cutoff)
	if err != nil {
		s.logger.Error("idle eviction failed", zap.Error(err))
		return 0
	}
	if removed > 0 {
		s.logger.Info("idle agents evicted", zap.Int("count", removed))
	}
	return removed
}
