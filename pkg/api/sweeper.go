package api

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweepable is a cache that can drop its expired entries
type Sweepable interface {
	Sweep() int
}

// CacheSweeper periodically evicts expired cache entries so idle keys do not pin memory
type CacheSweeper struct {
	cache    Sweepable
	interval time.Duration
	logger   *zap.Logger

	stop chan struct{}
	wg   sync.WaitGroup
	mu   sync.Mutex
	live bool
}

// NewCacheSweeper creates a sweeper. Call Start to begin sweeping.
func NewCacheSweeper(cache Sweepable, interval time.Duration, logger *zap.Logger) *CacheSweeper {
	return &CacheSweeper{
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

// Start begins sweeping in the background. It is a no-op if already running or the interval is not positive.
func (s *CacheSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live || s.interval <= 0 {
		return
	}
	s.live = true
	s.stop = make(chan struct{})

	s.wg.Add(1)
	go s.run(s.stop)

	s.logger.Info("Cache sweeper started", zap.Duration("interval", s.interval))
}

// Stop halts the sweeper and waits for the background goroutine to exit
func (s *CacheSweeper) Stop() {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return
	}
	s.live = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("Cache sweeper stopped")
}

func (s *CacheSweeper) run(stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.cache.Sweep(); n > 0 {
				s.logger.Debug("Swept expired cache entries", zap.Int("count", n))
			}
		case <-stop:
			return
		}
	}
}
