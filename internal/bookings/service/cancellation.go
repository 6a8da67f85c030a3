package service

import (
	"context"
	"errors"
	"time"

	"booking_portal_backend/internal/bookings/domain"
	"booking_portal_backend/internal/bookings/editsession"
	"booking_portal_backend/internal/bookings/repository"
	"booking_portal_backend/internal/bookings/transport"
	"booking_portal_backend/internal/events"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/sanitize"
)

const statusCancelled = "cancelled"

// CancelBooking cancels the booking. It is free until 24 hours before the
// move; later cancellations are charged half the total. Once cancelled,
// the booking can no longer be changed from the portal.
func (s *Service) CancelBooking(ctx context.Context, viewID, sessionID string, req transport.CancelBookingRequest) (*transport.CommitResponse, error) {
	reason := sanitize.Text(req.Reason)

	resp, err := s.commit(ctx, commitRequest{
		viewID:    viewID,
		sessionID: sessionID,
		kind:      editsession.KindCancellation,
		intent:    toIntent(req.Intent),
		build: func(snap *domain.Snapshot, _ *editsession.Session) (*mutation, error) {
			terms, err := s.cancellationTerms(snap)
			if err != nil {
				return nil, err
			}

			status := statusCancelled
			total := snap.TotalPrice()
			details := map[string]any{
				"cancellationReason": reason,
				"cancellationDate":   s.now().UTC().Format(time.RFC3339),
				"cancellationFee":    terms.Fee,
			}
			return &mutation{
				patch: repository.Patch{Status: &status, Details: details},
				apply: func(snap *domain.Snapshot) {
					snap.Status = domain.Status(status)
					mergeDetails(snap, details)
				},
				event: events.BookingCancelled{
					BaseEvent:     events.NewBaseEvent(),
					BookingID:     snap.ID,
					Reference:     snap.Reference,
					CustomerName:  snap.Customer.Name,
					CustomerEmail: snap.Customer.Email,
					Fee:           terms.Fee,
					Reason:        reason,
				},
				oldTotal: total,
				newTotal: total,
			}, nil
		},
	})
	if err != nil || !resp.Success {
		return resp, err
	}

	// Nothing else may be changed on a cancelled booking.
	if v, lookupErr := s.lookupView(viewID); lookupErr == nil {
		v.mu.Lock()
		for kind := range v.sessions {
			if kind != editsession.KindCancellation {
				s.discardLocked(v, kind)
			}
		}
		v.mu.Unlock()
	}
	return resp, nil
}

func (s *Service) cancellationTerms(snap *domain.Snapshot) (domain.CancellationTerms, error) {
	start, err := snap.MoveStart(s.loc)
	if err != nil {
		return domain.CancellationTerms{}, apperr.Validation("the booking has no valid move date")
	}
	terms, err := domain.QuoteCancellation(snap.TotalPrice(), start, s.now())
	if errors.Is(err, domain.ErrMoveStarted) {
		return domain.CancellationTerms{}, apperr.Conflict("the move has already started and can no longer be cancelled")
	}
	return terms, err
}
