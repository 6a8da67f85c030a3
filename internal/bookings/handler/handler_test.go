package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booking_portal_backend/internal/bookings/domain"
	"booking_portal_backend/internal/bookings/guard"
	"booking_portal_backend/internal/bookings/repository"
	"booking_portal_backend/internal/bookings/service"
	"booking_portal_backend/internal/bookings/transport"
	"booking_portal_backend/internal/pricing"
	"booking_portal_backend/internal/quoting"
	"booking_portal_backend/platform/events"
	"booking_portal_backend/platform/logger"
	"booking_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const bookingJSON = `{
	"id": "7d5c2a9e-4b1f-4c3a-9e2d-1f0a6b8c3d21",
	"customer_id": "2b0e8c1f-0c7d-4f61-8d3e-5a9b7c6d4e12",
	"status": "accepted",
	"customer_name": "Anna Svensson",
	"start_address": "Gamla vägen 1, Stockholm",
	"end_address": "Nya vägen 2, Solna",
	"move_date": "2099-05-02",
	"move_time": "09:00",
	"service_types": ["moving"],
	"total_price": 3000
}`

type memoryStore struct {
	updates int
}

func (m *memoryStore) GetBooking(context.Context, string) (domain.RawRecord, error) {
	return domain.RawRecord{Data: json.RawMessage(bookingJSON)}, nil
}

func (m *memoryStore) UpdateBooking(context.Context, string, repository.Patch) error {
	m.updates++
	return nil
}

func (m *memoryStore) ListAdditionalServices(context.Context, string) ([]repository.AdditionalService, error) {
	return []repository.AdditionalService{{ID: "a1", Name: "Bortforsling", Price: 500, Quantity: 2, Unit: "st"}}, nil
}

type noQuotes struct{}

func (noQuotes) Recalculate(context.Context, string, quoting.Request) (quoting.Result, bool) {
	return quoting.Result{}, false
}
func (noQuotes) Cancel(string) {}

type portalConfig struct{}

func (portalConfig) GetPortalViewTTL() time.Duration       { return time.Hour }
func (portalConfig) GetSuccessDisplayDelay() time.Duration { return time.Millisecond }
func (portalConfig) GetSupportPhone() string               { return "010-555 12 89" }
func (portalConfig) GetAppBaseURL() string                 { return "http://localhost:3000" }

func newRouter(t *testing.T) (*gin.Engine, *memoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewWithHandler(slog.NewTextHandler(io.Discard, nil))
	store := &memoryStore{}
	bus := events.NewInMemoryBus(log)
	svc := service.New(store, noQuotes{}, pricing.Default(), guard.New(log), bus, portalConfig{}, log)

	r := gin.New()
	New(svc, validator.New()).RegisterRoutes(r.Group("/portal"), func(c *gin.Context) { c.Next() })
	return r, store
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func TestPortalFlow(t *testing.T) {
	r, store := newRouter(t)

	w := do(t, r, http.MethodPost, "/portal/bookings/7d5c2a9e-4b1f-4c3a-9e2d-1f0a6b8c3d21/views", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("open view: %d %s", w.Code, w.Body.String())
	}
	view := decode[transport.ViewResponse](t, w)
	base := "/portal/views/" + view.ViewID

	if w := do(t, r, http.MethodPost, base+"/edits", map[string]string{"kind": "teleport"}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind: %d", w.Code)
	}

	w = do(t, r, http.MethodPost, base+"/edits", map[string]string{"kind": "volume"})
	if w.Code != http.StatusCreated {
		t.Fatalf("open edit: %d %s", w.Code, w.Body.String())
	}
	sess := decode[transport.SessionResponse](t, w)
	if sess.Intent == nil {
		t.Fatal("volume session needs an intent")
	}

	w = do(t, r, http.MethodPost, base+"/edits/"+sess.ID+"/volume", map[string]any{"volume": 25})
	if w.Code != http.StatusOK {
		t.Fatalf("save without intent: %d %s", w.Code, w.Body.String())
	}
	if refused := decode[transport.CommitResponse](t, w); refused.Applied || store.updates != 0 {
		t.Fatalf("command without intent was applied: %s", w.Body.String())
	}

	w = do(t, r, http.MethodPost, base+"/edits/"+sess.ID+"/volume", map[string]any{"volume": 25, "intent": sess.Intent})
	saved := decode[transport.CommitResponse](t, w)
	if !saved.Applied || !saved.Success || store.updates != 1 {
		t.Fatalf("save: %s", w.Body.String())
	}

	if w := do(t, r, http.MethodPost, base+"/edits/"+sess.ID+"/volume", map[string]any{"volume": -2, "intent": sess.Intent}); w.Code != http.StatusBadRequest {
		t.Fatalf("negative volume: %d", w.Code)
	}
}

func TestAdditionalServicesAreListedSeparately(t *testing.T) {
	r, _ := newRouter(t)
	view := decode[transport.ViewResponse](t, do(t, r, http.MethodPost, "/portal/bookings/NF-7D5C2A9E/views", nil))

	w := do(t, r, http.MethodGet, "/portal/views/"+view.ViewID+"/additional-services", nil)
	resp := decode[transport.AdditionalServicesResponse](t, w)
	if resp.TotalAdditionalCost != 1000 || len(resp.AdditionalServices) != 1 {
		t.Fatalf("additional services = %+v", resp)
	}

	after := decode[transport.ViewResponse](t, do(t, r, http.MethodGet, "/portal/views/"+view.ViewID, nil))
	if after.Booking.TotalPrice != 3000 {
		t.Fatal("additional services must not change the booking total")
	}
}

func TestUnknownViewIsNotFound(t *testing.T) {
	r, _ := newRouter(t)
	if w := do(t, r, http.MethodGet, "/portal/views/missing", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestReviewRoute(t *testing.T) {
	r, store := newRouter(t)
	view := decode[transport.ViewResponse](t, do(t, r, http.MethodPost, "/portal/bookings/NF-7D5C2A9E/views", nil))
	base := "/portal/views/" + view.ViewID

	sess := decode[transport.SessionResponse](t, do(t, r, http.MethodPost, base+"/edits", map[string]string{"kind": "review"}))
	if sess.Intent == nil || sess.Review != nil {
		t.Fatalf("review session = %+v", sess)
	}

	if w := do(t, r, http.MethodPost, base+"/edits/"+sess.ID+"/review", map[string]any{"rating": 6, "intent": sess.Intent}); w.Code != http.StatusBadRequest {
		t.Fatalf("rating 6: %d", w.Code)
	}

	w := do(t, r, http.MethodPost, base+"/edits/"+sess.ID+"/review", map[string]any{"rating": 4, "feedback": "Snabba och trevliga", "intent": sess.Intent})
	saved := decode[transport.CommitResponse](t, w)
	if !saved.Success || store.updates != 1 {
		t.Fatalf("review: %s", w.Body.String())
	}
	if saved.Session.Review == nil || saved.Session.Review.Rating != 4 || saved.Session.Review.FollowUp {
		t.Fatalf("review session after submit = %+v", saved.Session)
	}
}
