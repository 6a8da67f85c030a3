package quoting

import (
	"context"
	"errors"
	"sync"

	"booking_portal_backend/platform/logger"
	"booking_portal_backend/platform/validator"
)

// Recalculator is the pricing service call.
type Recalculator interface {
	Recalculate(ctx context.Context, req Request) (Result, error)
}

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// Service validates requests, consults the cache and keeps at most one call
// in flight per session key. A newer call for the same key cancels the
// older one, which then reports no result.
type Service struct {
	pricer Recalculator
	cache  Cache
	log    *logger.Logger

	mu       sync.Mutex
	seq      uint64
	inflight map[string]inflight
}

// NewService creates the service. cache may be nil.
func NewService(pricer Recalculator, cache Cache, log *logger.Logger) *Service {
	return &Service{
		pricer:   pricer,
		cache:    cache,
		log:      log,
		inflight: make(map[string]inflight),
	}
}

// Valid reports whether both addresses are complete enough to price.
func Valid(req Request) bool {
	return validator.IsAddress(req.StartAddress) && validator.IsAddress(req.EndAddress)
}

// Recalculate returns the new distance and price, or false when the input is
// incomplete, the call failed, the payload was malformed, or a newer call for
// sessionKey superseded this one. Failures are logged, never returned.
func (s *Service) Recalculate(ctx context.Context, sessionKey string, req Request) (Result, bool) {
	if !Valid(req) {
		return Result{}, false
	}

	key := cacheKey(req)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			s.log.ExternalCallFailed("quote-cache", err)
		} else if ok {
			return cached, true
		}
	}

	callCtx, seq := s.begin(ctx, sessionKey)
	defer s.finish(sessionKey, seq)

	result, err := s.pricer.Recalculate(callCtx, req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.Canceled) && ctx.Err() == nil {
			s.log.Debug("quote recalculation superseded", "session", sessionKey)
			return Result{}, false
		}
		s.log.ExternalCallFailed("pricing", err)
		return Result{}, false
	}
	if !s.current(sessionKey, seq) {
		return Result{}, false
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.log.ExternalCallFailed("quote-cache", err)
		}
	}
	return result, true
}

// Cancel aborts any call in flight for sessionKey.
func (s *Service) Cancel(sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if call, ok := s.inflight[sessionKey]; ok {
		call.cancel()
		delete(s.inflight, sessionKey)
	}
}

func (s *Service) begin(ctx context.Context, sessionKey string) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.inflight[sessionKey]; ok {
		prev.cancel()
	}
	s.seq++
	callCtx, cancel := context.WithCancel(ctx)
	s.inflight[sessionKey] = inflight{seq: s.seq, cancel: cancel}
	return callCtx, s.seq
}

func (s *Service) finish(sessionKey string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if call, ok := s.inflight[sessionKey]; ok && call.seq == seq {
		call.cancel()
		delete(s.inflight, sessionKey)
	}
}

func (s *Service) current(sessionKey string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	call, ok := s.inflight[sessionKey]
	return ok && call.seq == seq
}
