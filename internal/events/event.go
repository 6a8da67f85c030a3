// Package events defines the booking events the portal publishes. The bus
// they travel on lives in platform/events.
package events

import (
	"booking_portal_backend/platform/events"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Booking Domain Events
// =============================================================================

// ChangeKind names the part of a booking a customer changed.
type ChangeKind string

const (
	ChangeAddress  ChangeKind = "address"
	ChangeVolume   ChangeKind = "volume"
	ChangeSchedule ChangeKind = "schedule"
	ChangeServices ChangeKind = "services"
)

// BookingChanged is published after a customer change was persisted.
type BookingChanged struct {
	BaseEvent
	BookingID     string     `json:"bookingId"`
	Reference     string     `json:"reference"`
	Kind          ChangeKind `json:"kind"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	OldTotal      int64      `json:"oldTotal"`
	NewTotal      int64      `json:"newTotal"`
	// Summary lists the changed values in customer language, one per line.
	Summary []string `json:"summary"`
}

func (e BookingChanged) EventName() string { return "bookings.booking.changed" }

// BookingCancelled is published after a customer cancelled a booking.
type BookingCancelled struct {
	BaseEvent
	BookingID     string `json:"bookingId"`
	Reference     string `json:"reference"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	Fee           int64  `json:"fee"`
	Reason        string `json:"reason"`
}

func (e BookingCancelled) EventName() string { return "bookings.booking.cancelled" }
