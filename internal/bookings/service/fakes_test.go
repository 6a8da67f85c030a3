package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"booking_portal_backend/internal/bookings/domain"
	"booking_portal_backend/internal/bookings/guard"
	"booking_portal_backend/internal/bookings/repository"
	"booking_portal_backend/internal/events"
	"booking_portal_backend/internal/pricing"
	"booking_portal_backend/internal/quoting"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/logger"
)

const testBookingID = "7d5c2a9e-4b1f-4c3a-9e2d-1f0a6b8c3d21"

type fakeStore struct {
	mu        sync.Mutex
	record    map[string]any
	fallback  bool
	getCalls  int
	updates   []repository.Patch
	updateErr []error
	additions []repository.AdditionalService

	// When hold is set, UpdateBooking signals entered and waits for hold to close.
	hold    chan struct{}
	entered chan struct{}
}

func (f *fakeStore) GetBooking(_ context.Context, key string) (domain.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.record == nil {
		return domain.RawRecord{}, apperr.NotFound("booking not found")
	}
	data, err := json.Marshal(f.record)
	if err != nil {
		return domain.RawRecord{}, err
	}
	return domain.RawRecord{Data: data, IsFallback: f.fallback}, nil
}

func (f *fakeStore) UpdateBooking(_ context.Context, id string, patch repository.Patch) error {
	if f.hold != nil {
		f.entered <- struct{}{}
		<-f.hold
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, patch)
	if len(f.updateErr) > 0 {
		err := f.updateErr[0]
		f.updateErr = f.updateErr[1:]
		return err
	}
	return nil
}

func (f *fakeStore) ListAdditionalServices(context.Context, string) ([]repository.AdditionalService, error) {
	return f.additions, nil
}

func (f *fakeStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

type fakeQuoter struct {
	mu        sync.Mutex
	result    quoting.Result
	ok        bool
	calls     int
	cancelled []string
}

func (f *fakeQuoter) Recalculate(_ context.Context, _ string, _ quoting.Request) (quoting.Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.ok
}

func (f *fakeQuoter) Cancel(sessionKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, sessionKey)
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) published() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.events...)
}

type portalConfig struct {
	ttl   time.Duration
	delay time.Duration
}

func (c portalConfig) GetPortalViewTTL() time.Duration       { return c.ttl }
func (c portalConfig) GetSuccessDisplayDelay() time.Duration { return c.delay }
func (c portalConfig) GetSupportPhone() string               { return "010-555 12 89" }
func (c portalConfig) GetAppBaseURL() string                 { return "http://localhost:3000" }

type harness struct {
	svc    *Service
	store  *fakeStore
	quoter *fakeQuoter
	bus    *recordingBus
}

func confirmedBooking() map[string]any {
	return map[string]any{
		"id":                testBookingID,
		"customer_id":       "2b0e8c1f-0c7d-4f61-8d3e-5a9b7c6d4e12",
		"booking_reference": "NF-7D5C2A9E",
		"status":            "accepted",
		"customer_name":     "anna svensson",
		"email":             "anna@example.se",
		"phone":             "070-123 45 67",
		"start_address":     "Gamla vägen 1, Stockholm",
		"end_address":       "Nya vägen 2, Solna",
		"move_date":         "2030-05-02",
		"move_time":         "09:00",
		"service_types":     []string{"moving"},
		"total_price":       3000,
		"details":           map[string]any{"startLivingArea": 50},
	}
}

func newHarness(t *testing.T, record map[string]any) *harness {
	t.Helper()
	log := logger.NewWithHandler(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		store:  &fakeStore{record: record},
		quoter: &fakeQuoter{},
		bus:    &recordingBus{},
	}
	h.svc = New(h.store, h.quoter, pricing.Default(), guard.New(log), h.bus,
		portalConfig{ttl: time.Hour, delay: 10 * time.Millisecond}, log)
	h.svc.now = func() time.Time { return time.Date(2030, 4, 1, 12, 0, 0, 0, h.svc.loc) }
	return h
}

func (h *harness) openView(t *testing.T) string {
	t.Helper()
	resp, err := h.svc.OpenView(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("OpenView: %v", err)
	}
	return resp.ViewID
}
