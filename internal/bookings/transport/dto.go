package transport

import (
	"time"

	"booking_portal_backend/internal/storage"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// Intent is the token the portal received for the one button allowed to
// run a command. A missing or wrong intent is refused by the service, not
// rejected as invalid input.
type Intent struct {
	Trigger string `json:"trigger"`
	Token   string `json:"token"`
}

// OpenEditRequest opens the modal for one kind of change.
type OpenEditRequest struct {
	Kind string `json:"kind" validate:"required,oneof=address volume schedule services cancellation checklist review"`
}

// ProposeAddressRequest carries the addresses and access details a customer entered.
type ProposeAddressRequest struct {
	StartAddress  string `json:"startAddress" validate:"required,address,max=300"`
	EndAddress    string `json:"endAddress" validate:"required,address,max=300"`
	StartFloor    string `json:"startFloor" validate:"max=20"`
	EndFloor      string `json:"endFloor" validate:"max=20"`
	StartElevator string `json:"startElevator" validate:"max=40"`
	EndElevator   string `json:"endElevator" validate:"max=40"`
}

// ConfirmAddressRequest commits the previewed address change.
type ConfirmAddressRequest struct {
	Intent Intent `json:"intent"`
}

// VolumePreviewRequest asks what a new moving volume would cost.
type VolumePreviewRequest struct {
	Volume float64 `json:"volume" validate:"required,gt=0,lte=500"`
}

// SaveVolumeRequest commits a new moving volume.
type SaveVolumeRequest struct {
	Intent Intent  `json:"intent"`
	Volume float64 `json:"volume" validate:"required,gt=0,lte=500"`
}

// SaveScheduleRequest commits a new move date and time.
type SaveScheduleRequest struct {
	Intent   Intent `json:"intent"`
	MoveDate string `json:"moveDate" validate:"required,movedate"`
	MoveTime string `json:"moveTime" validate:"required,movetime"`
}

// ToggleServiceRequest adds or removes one add-on service.
type ToggleServiceRequest struct {
	Intent  Intent `json:"intent"`
	AddOnID string `json:"addOnId" validate:"required,max=60"`
}

// CancelBookingRequest cancels the booking.
type CancelBookingRequest struct {
	Intent Intent `json:"intent"`
	Reason string `json:"reason" validate:"max=1000"`
}

// ToggleChecklistItemRequest marks one checklist task done or not done.
type ToggleChecklistItemRequest struct {
	Intent Intent `json:"intent"`
	ItemID string `json:"itemId" validate:"required,max=60"`
}

// SubmitReviewRequest rates the move.
type SubmitReviewRequest struct {
	Intent   Intent `json:"intent"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// LineItemResponse is one billable service.
type LineItemResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	PriceFormatted string `json:"priceFormatted"`
}

// CustomerResponse is the customer the booking belongs to.
type CustomerResponse struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PhoneDisplay string `json:"phoneDisplay"`
}

// BookingResponse is the booking as the portal shows it.
type BookingResponse struct {
	ID                  string             `json:"id"`
	Reference           string             `json:"reference"`
	Status              string             `json:"status"`
	Customer            CustomerResponse   `json:"customer"`
	StartAddress        string             `json:"startAddress"`
	EndAddress          string             `json:"endAddress"`
	MoveDate            string             `json:"moveDate"`
	MoveTime            string             `json:"moveTime"`
	VolumeCubicMeters   float64            `json:"volumeCubicMeters"`
	ServiceTypes        []string           `json:"serviceTypes"`
	LineItems           []LineItemResponse `json:"lineItems"`
	TotalPrice          int64              `json:"totalPrice"`
	TotalPriceFormatted string             `json:"totalPriceFormatted"`
	Details             map[string]any     `json:"details"`
	IsFallback          bool               `json:"isFallback"`
}

// AddressProposalResponse echoes the proposed address values.
type AddressProposalResponse struct {
	StartAddress  string `json:"startAddress"`
	EndAddress    string `json:"endAddress"`
	StartFloor    string `json:"startFloor,omitempty"`
	EndFloor      string `json:"endFloor,omitempty"`
	StartElevator string `json:"startElevator,omitempty"`
	EndElevator   string `json:"endElevator,omitempty"`
}

// PreviewResponse is a recalculated price waiting for confirmation.
type PreviewResponse struct {
	DistanceKm          float64 `json:"distanceKm"`
	OldPrice            int64   `json:"oldPrice"`
	NewPrice            int64   `json:"newPrice"`
	PriceDelta          int64   `json:"priceDelta"`
	PriceDeltaFormatted string  `json:"priceDeltaFormatted"`
}

// CancellationTermsResponse is what cancelling right now would cost.
type CancellationTermsResponse struct {
	Free           bool    `json:"free"`
	Fee            int64   `json:"fee"`
	FeeFormatted   string  `json:"feeFormatted"`
	HoursUntilMove float64 `json:"hoursUntilMove"`
}

// ChecklistItemResponse is one checklist task.
type ChecklistItemResponse struct {
	ID    string `json:"id"`
	Phase string `json:"phase"`
	Done  bool   `json:"done"`
}

// ChecklistResponse is the customer's moving checklist.
type ChecklistResponse struct {
	Items   []ChecklistItemResponse `json:"items"`
	Done    int                     `json:"done"`
	Total   int                     `json:"total"`
	Percent int                     `json:"percent"`
}

// ReviewResponse is a submitted review. FollowUp is set for low ratings,
// which staff follow up instead of asking for a public review.
type ReviewResponse struct {
	Rating      int       `json:"rating"`
	Feedback    string    `json:"feedback,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
	FollowUp    bool      `json:"followUp"`
}

// SessionResponse is the state of one open edit modal. Intent is only
// present in the response that minted it.
type SessionResponse struct {
	ID           string                     `json:"id"`
	Kind         string                     `json:"kind"`
	Phase        string                     `json:"phase"`
	Saving       bool                       `json:"saving"`
	Error        string                     `json:"error,omitempty"`
	Proposal     *AddressProposalResponse   `json:"proposal,omitempty"`
	Preview      *PreviewResponse           `json:"preview,omitempty"`
	Cancellation *CancellationTermsResponse `json:"cancellation,omitempty"`
	Checklist    *ChecklistResponse         `json:"checklist,omitempty"`
	Review       *ReviewResponse            `json:"review,omitempty"`
	Intent       *Intent                    `json:"intent,omitempty"`
}

// ViewResponse is one portal page view.
type ViewResponse struct {
	ViewID   string            `json:"viewId"`
	ReadOnly bool              `json:"readOnly"`
	Booking  BookingResponse   `json:"booking"`
	Sessions []SessionResponse `json:"sessions"`
}

// CommitResponse reports a guarded command. Applied is false when the
// command was refused; Success tells whether the change was persisted.
type CommitResponse struct {
	Applied bool             `json:"applied"`
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
	Session *SessionResponse `json:"session,omitempty"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

// VolumePreviewResponse prices a volume change without saving it.
type VolumePreviewResponse struct {
	OldVolume           float64 `json:"oldVolume"`
	NewVolume           float64 `json:"newVolume"`
	OldPrice            int64   `json:"oldPrice"`
	NewPrice            int64   `json:"newPrice"`
	PriceDelta          int64   `json:"priceDelta"`
	PriceDeltaFormatted string  `json:"priceDeltaFormatted"`
}

// AdditionalServiceResponse is a service staff added on site.
type AdditionalServiceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	Unit      string    `json:"unit"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdditionalServicesResponse lists on-site additions. They are shown next to
// the booking total and are not part of it.
type AdditionalServicesResponse struct {
	AdditionalServices  []AdditionalServiceResponse `json:"additionalServices"`
	TotalAdditionalCost int64                       `json:"totalAdditionalCost"`
}

// PhotoGroupResponse holds the job photos for one service.
type PhotoGroupResponse struct {
	ServiceType string          `json:"serviceType"`
	Label       string          `json:"label"`
	Photos      []storage.Photo `json:"photos"`
}

// PhotosResponse lists job photos grouped by service.
type PhotosResponse struct {
	Groups []PhotoGroupResponse `json:"groups"`
}
