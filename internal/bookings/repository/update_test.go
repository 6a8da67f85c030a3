package repository

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func TestBuildUpdateWritesOnlyPresentFields(t *testing.T) {
	id := uuid.New()
	total := int64(9100)
	query, args, err := buildUpdate(bookingsTarget, id, Patch{
		StartAddress: strPtr("Storgatan 1, Stockholm"),
		TotalPrice:   &total,
	})
	if err != nil {
		t.Fatalf("buildUpdate: %v", err)
	}

	want := "UPDATE NF_bookings SET start_address = $1, total_price = $2, updated_at = now() WHERE id = $3"
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
	if len(args) != 3 || args[2] != id {
		t.Fatalf("unexpected args %v", args)
	}
	if strings.Contains(query, "end_address") || strings.Contains(query, "details") {
		t.Fatalf("query writes absent fields: %s", query)
	}
}

func TestBuildUpdateMapsTotalToQuoteValue(t *testing.T) {
	total := int64(4200)
	query, _, err := buildUpdate(quotesTarget, uuid.New(), Patch{TotalPrice: &total})
	if err != nil {
		t.Fatalf("buildUpdate: %v", err)
	}
	if !strings.HasPrefix(query, "UPDATE NF_quotes SET value = $1") {
		t.Fatalf("query = %q", query)
	}
}

func TestBuildUpdateMergesDetails(t *testing.T) {
	query, args, err := buildUpdate(bookingsTarget, uuid.New(), Patch{
		Details: map[string]any{"startFloor": "3", "startElevator": "big"},
	})
	if err != nil {
		t.Fatalf("buildUpdate: %v", err)
	}
	if !strings.Contains(query, "details = COALESCE(details, '{}'::jsonb) || $1::jsonb") {
		t.Fatalf("details are not merged: %s", query)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(args[0].(string)), &decoded); err != nil {
		t.Fatalf("details arg is not JSON: %v", err)
	}
	if decoded["startFloor"] != "3" || decoded["startElevator"] != "big" {
		t.Fatalf("details = %v", decoded)
	}
}

func TestPatchEmpty(t *testing.T) {
	if !(Patch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
	if (Patch{ServiceTypes: []string{}}).Empty() {
		t.Fatal("an explicit empty service list is a write")
	}
	if (Patch{MoveTime: strPtr("09:00")}).Empty() {
		t.Fatal("move time patch should not be empty")
	}
}
