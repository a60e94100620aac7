package service

import (
	"context"
	"sort"
	"sync"

	"balance_go/internal/domain"
)

// RateService aggregates live rate ticks into the latest observation per
// product, for previewing a pair's rate before committing a transfer.
type RateService struct {
	mu    sync.RWMutex
	rates map[string]domain.RateTick
}

// NewRateService creates an empty rate service
func NewRateService() *RateService {
	return &RateService{
		rates: make(map[string]domain.RateTick),
	}
}

// Run consumes ticks until the context is cancelled or the channel closes.
func (s *RateService) Run(ctx context.Context, ticks <-chan domain.RateTick) {
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			s.Apply(tick)
		}
	}
}

// Apply records one tick, keeping only the newest per product.
func (s *RateService) Apply(tick domain.RateTick) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.rates[tick.ProductID]; ok && tick.Ts.Before(prev.Ts) {
		return // stale out-of-order tick
	}
	s.rates[tick.ProductID] = tick
}

// Rate returns the latest tick for a product
func (s *RateService) Rate(productID string) (domain.RateTick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tick, ok := s.rates[productID]
	return tick, ok
}

// All returns the latest ticks for every product, sorted by product id
func (s *RateService) All() []domain.RateTick {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RateTick, 0, len(s.rates))
	for _, tick := range s.rates {
		out = append(out, tick)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductID < out[j].ProductID
	})
	return out
}
