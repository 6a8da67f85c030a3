// Package service hosts portal views: one loaded booking snapshot per page
// view plus the edit sessions opened on it. Every change a customer makes
// to a confirmed booking goes through here.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"booking_portal_backend/internal/bookings/domain"
	"booking_portal_backend/internal/bookings/editsession"
	"booking_portal_backend/internal/bookings/guard"
	"booking_portal_backend/internal/bookings/repository"
	"booking_portal_backend/internal/bookings/transport"
	"booking_portal_backend/internal/events"
	"booking_portal_backend/internal/pricing"
	"booking_portal_backend/internal/quoting"
	"booking_portal_backend/internal/storage"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	viewNotFoundMsg = "this page has expired, please reload it"
	commitTimeout   = 15 * time.Second
	defaultTimeZone = "Europe/Stockholm"
)

// Quoter recalculates prices for proposed addresses. Implemented by quoting.Service.
type Quoter interface {
	Recalculate(ctx context.Context, sessionKey string, req quoting.Request) (quoting.Result, bool)
	Cancel(sessionKey string)
}

// view is one customer page view: the snapshot loaded when the page opened
// and at most one edit session per kind. lastSeen is read without mu, so
// idle views can be found while a commit holds the lock.
type view struct {
	id       string
	lastSeen atomic.Int64

	mu       sync.Mutex
	snapshot *domain.Snapshot
	sessions map[editsession.Kind]*editsession.Session
}

func (v *view) touch(now time.Time) { v.lastSeen.Store(now.UnixNano()) }

func (v *view) idleSince(cutoff time.Time) bool {
	return v.lastSeen.Load() < cutoff.UnixNano()
}

// Service provides the portal's booking operations.
type Service struct {
	store   repository.BookingStore
	quoter  Quoter
	catalog *pricing.Catalog
	guard   *guard.Guard
	bus     events.Bus
	cfg     config.PortalConfig
	log     *logger.Logger

	photos      storage.PhotoStore
	photoBucket string

	loc        *time.Location
	now        func() time.Time
	generation atomic.Uint64
	loads      singleflight.Group

	mu    sync.Mutex
	views map[string]*view
}

// New creates the portal service.
func New(store repository.BookingStore, quoter Quoter, catalog *pricing.Catalog, g *guard.Guard, bus events.Bus, cfg config.PortalConfig, log *logger.Logger) *Service {
	loc, err := time.LoadLocation(defaultTimeZone)
	if err != nil {
		loc = time.Local
	}
	return &Service{
		store:   store,
		quoter:  quoter,
		catalog: catalog,
		guard:   g,
		bus:     bus,
		cfg:     cfg,
		log:     log,
		photos:  storage.Disabled{},
		loc:     loc,
		now:     time.Now,
		views:   make(map[string]*view),
	}
}

// SetPhotoStore injects the job photo store and its bucket.
func (s *Service) SetPhotoStore(store storage.PhotoStore, bucket string) {
	s.photos = store
	s.photoBucket = bucket
}

// OpenView loads the booking identified by key (an id or a reference) and
// starts a page view on it. The snapshot is fetched once per view; views of
// the same booking opened at the same time share one fetch.
func (s *Service) OpenView(ctx context.Context, key string) (*transport.ViewResponse, error) {
	shared, err, _ := s.loads.Do(key, func() (any, error) {
		return s.loadSnapshot(ctx, key)
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	v := &view{
		id:       uuid.NewString(),
		snapshot: shared.(*domain.Snapshot).Clone(),
		sessions: make(map[editsession.Kind]*editsession.Session),
	}
	v.touch(now)

	s.mu.Lock()
	s.views[v.id] = v
	s.mu.Unlock()

	s.log.WithContext(ctx).Info("portal_view_opened",
		"view_id", v.id,
		"booking_id", v.snapshot.ID,
		"fallback", v.snapshot.IsFallback,
	)

	v.mu.Lock()
	defer v.mu.Unlock()
	return s.viewResponse(v), nil
}

// View returns the current state of a page view without refetching the booking.
func (s *Service) View(viewID string) (*transport.ViewResponse, error) {
	v, err := s.lookupView(viewID)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.touch(s.now())
	return s.viewResponse(v), nil
}

// CloseView ends a page view and closes its open sessions.
func (s *Service) CloseView(viewID string) {
	s.mu.Lock()
	v, ok := s.views[viewID]
	delete(s.views, viewID)
	s.mu.Unlock()
	if !ok {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for kind := range v.sessions {
		s.discardLocked(v, kind)
	}
}

// Run expires idle views until ctx is done.
func (s *Service) Run(ctx context.Context) {
	ttl := s.cfg.GetPortalViewTTL()
	interval := ttl / 2
	if interval > time.Minute || interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.expireIdle(ttl); n > 0 {
				s.log.Debug("portal_views_expired", "count", n)
			}
		}
	}
}

func (s *Service) expireIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	idle := make([]*view, 0)
	for id, v := range s.views {
		if v.idleSince(cutoff) {
			idle = append(idle, v)
			delete(s.views, id)
		}
	}
	s.mu.Unlock()

	for _, v := range idle {
		v.mu.Lock()
		for kind := range v.sessions {
			s.discardLocked(v, kind)
		}
		v.mu.Unlock()
	}
	return len(idle)
}

func (s *Service) lookupView(viewID string) (*view, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[viewID]
	if !ok {
		return nil, apperr.NotFound(viewNotFoundMsg)
	}
	return v, nil
}

func (s *Service) loadSnapshot(ctx context.Context, key string) (*domain.Snapshot, error) {
	raw, err := s.store.GetBooking(ctx, key)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			s.log.WithContext(ctx).DatabaseError("get booking", err)
		}
		return nil, err
	}

	rec, err := domain.DecodeRecord(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "the booking could not be read", err)
	}

	snap, err := domain.Reconstruct(rec, s.catalog)
	var (
		notAccepted *domain.NotAcceptedError
		priceErr    *domain.PriceResolutionError
	)
	switch {
	case errors.As(err, &notAccepted):
		return nil, apperr.Forbidden("this booking has not been accepted yet and cannot be changed here").
			WithDetails(map[string]string{"status": string(notAccepted.Status)})
	case errors.As(err, &priceErr):
		s.log.WithContext(ctx).Error("price_resolution_failed", "booking_id", priceErr.BookingID)
		return nil, apperr.PriceResolution(fmt.Sprintf(
			"we could not determine the price of your booking, please contact us on %s", s.cfg.GetSupportPhone()))
	case err != nil:
		return nil, apperr.Wrap(apperr.KindInternal, "the booking could not be read", err)
	}
	return snap, nil
}

// commitFailureMessage phrases a persistence failure for the customer.
// Connectivity problems and server faults call for different actions.
func (s *Service) commitFailureMessage(err error) string {
	if apperr.Is(err, apperr.KindUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return "we could not reach our booking system, check your connection and try again"
	}
	return fmt.Sprintf("the change could not be saved, please try again or call us on %s", s.cfg.GetSupportPhone())
}
