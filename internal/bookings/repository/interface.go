package repository

import (
	"context"
	"time"

	"booking_portal_backend/internal/bookings/domain"
)

// Patch is a sparse update of a stored booking. Nil fields are left as
// they are; Details is merged into the stored details object.
type Patch struct {
	StartAddress *string
	EndAddress   *string
	MoveDate     *string
	MoveTime     *string
	TotalPrice   *int64
	ServiceTypes []string
	Status       *string
	Details      map[string]any
}

// Empty reports whether the patch would write nothing.
func (p Patch) Empty() bool {
	return p.StartAddress == nil && p.EndAddress == nil && p.MoveDate == nil &&
		p.MoveTime == nil && p.TotalPrice == nil && p.ServiceTypes == nil &&
		p.Status == nil && len(p.Details) == 0
}

// AdditionalService is a service staff added to a booking on site.
type AdditionalService struct {
	ID        string
	BookingID string
	Name      string
	Price     int64
	Quantity  int
	Unit      string
	AddedBy   string
	CreatedAt time.Time
}

// BookingReader fetches stored bookings.
type BookingReader interface {
	GetBooking(ctx context.Context, key string) (domain.RawRecord, error)
	ListAdditionalServices(ctx context.Context, bookingID string) ([]AdditionalService, error)
}

// BookingWriter persists customer changes.
type BookingWriter interface {
	UpdateBooking(ctx context.Context, id string, patch Patch) error
}

// BookingStore is the full persistence adapter the portal needs.
type BookingStore interface {
	BookingReader
	BookingWriter
}
