package service

import (
	"context"
	"fmt"
	"strings"

	"booking_portal_backend/internal/bookings/domain"
	"booking_portal_backend/internal/bookings/editsession"
	"booking_portal_backend/internal/bookings/repository"
	"booking_portal_backend/internal/bookings/transport"
	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/sanitize"
)

const (
	maxFeedbackLength  = 2000
	reviewSubmittedMsg = "a review has already been submitted for this booking"
)

// ToggleChecklistItem marks a moving checklist task done or not done. The
// whole checklist is written back so stored progress never loses tasks.
// The price does not change and the checklist modal stays open.
func (s *Service) ToggleChecklistItem(ctx context.Context, viewID, sessionID string, req transport.ToggleChecklistItemRequest) (*transport.CommitResponse, error) {
	itemID := strings.TrimSpace(req.ItemID)
	if !domain.IsChecklistItem(itemID) {
		return nil, apperr.Validation(fmt.Sprintf("unknown checklist task %q", req.ItemID))
	}

	return s.commit(ctx, commitRequest{
		viewID:    viewID,
		sessionID: sessionID,
		kind:      editsession.KindChecklist,
		intent:    toIntent(req.Intent),
		build: func(snap *domain.Snapshot, _ *editsession.Session) (*mutation, error) {
			details := map[string]any{
				"checklist_progress": snap.Details.ChecklistProgress().Toggle(itemID).Details(),
			}
			total := snap.TotalPrice()
			return &mutation{
				patch:    repository.Patch{Details: details},
				apply:    func(snap *domain.Snapshot) { mergeDetails(snap, details) },
				oldTotal: total,
				newTotal: total,
			}, nil
		},
	})
}

// SubmitReview stores the customer's rating of the move. A booking takes
// one review; a second one is a conflict.
func (s *Service) SubmitReview(ctx context.Context, viewID, sessionID string, req transport.SubmitReviewRequest) (*transport.CommitResponse, error) {
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return nil, apperr.Validation(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	feedback := sanitize.Text(req.Feedback)
	if len([]rune(feedback)) > maxFeedbackLength {
		return nil, apperr.Validation(fmt.Sprintf("feedback can be at most %d characters", maxFeedbackLength))
	}

	return s.commit(ctx, commitRequest{
		viewID:    viewID,
		sessionID: sessionID,
		kind:      editsession.KindReview,
		intent:    toIntent(req.Intent),
		build: func(snap *domain.Snapshot, _ *editsession.Session) (*mutation, error) {
			if _, exists := snap.Details.Review(); exists {
				return nil, apperr.Conflict(reviewSubmittedMsg)
			}
			review := domain.Review{Rating: req.Rating, Feedback: feedback, SubmittedAt: s.now()}
			details := map[string]any{"review": review.Details()}
			total := snap.TotalPrice()
			return &mutation{
				patch:    repository.Patch{Details: details},
				apply:    func(snap *domain.Snapshot) { mergeDetails(snap, details) },
				oldTotal: total,
				newTotal: total,
			}, nil
		},
	})
}
