package domain

import (
	"strings"
	"time"
)

// Review ratings run from one to five stars.
const (
	MinRating = 1
	MaxRating = 5
	// Ratings at or below this are followed up by staff.
	FollowUpRating = 2
)

// Review is the customer's rating of a finished move.
type Review struct {
	Rating      int
	Feedback    string
	SubmittedAt time.Time
}

// NeedsFollowUp reports whether staff should contact the customer.
func (r Review) NeedsFollowUp() bool { return r.Rating <= FollowUpRating }

// Details returns the review in the shape stored in booking details.
func (r Review) Details() map[string]any {
	return map[string]any{
		"rating":      r.Rating,
		"feedback":    r.Feedback,
		"submittedAt": r.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

// Review reads details.review. A booking has at most one review.
func (d Details) Review() (Review, bool) {
	stored, ok := d["review"].(map[string]any)
	if !ok {
		return Review{}, false
	}
	nested := Details(stored)
	rating := int(nested.Float("rating"))
	if rating < MinRating || rating > MaxRating {
		return Review{}, false
	}
	submitted, _ := time.Parse(time.RFC3339, nested.String("submittedAt"))
	return Review{
		Rating:      rating,
		Feedback:    strings.TrimSpace(nested.String("feedback")),
		SubmittedAt: submitted,
	}, true
}
