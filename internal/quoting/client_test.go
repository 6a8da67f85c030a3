package quoting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientRecalculate(t *testing.T) {
	var got recalculateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"success": true, "distance": "12.4", "newPrice": 3400}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	result, err := client.Recalculate(context.Background(), Request{
		BookingID:    "b-1",
		StartAddress: " Storgatan 1 ",
		EndAddress:   "Kungsgatan 9",
		Trip:         TripParameters{VolumeCubicMeters: 19, ServiceTypes: []string{"moving"}, LivingArea: 70},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DistanceKm != 12.4 || result.NewPrice != 3400 {
		t.Fatalf("unexpected result %+v", result)
	}
	if got.NewStartAddress != "Storgatan 1" || got.CurrentBookingData.VolymM3 != 19 || got.BookingID != "b-1" {
		t.Fatalf("unexpected wire request %+v", got)
	}
}

func TestHTTPClientFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		malformed bool
	}{
		{name: "reported failure", status: http.StatusOK, body: `{"success": false, "error": "address not found"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"success": false}`},
		{name: "not json", status: http.StatusOK, body: `<html>`, malformed: true},
		{name: "missing price", status: http.StatusOK, body: `{"success": true, "distance": 5}`, malformed: true},
		{name: "zero price", status: http.StatusOK, body: `{"success": true, "distance": 5, "newPrice": 0}`, malformed: true},
		{name: "missing distance", status: http.StatusOK, body: `{"success": true, "newPrice": 3000}`, malformed: true},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		}))

		_, err := NewHTTPClient(server.URL, time.Second).Recalculate(context.Background(), Request{StartAddress: "abc", EndAddress: "def"})
		server.Close()

		if err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		if tt.malformed != errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("%s: unexpected error kind %v", tt.name, err)
		}
	}
}
