package domain

import "strings"

// Status is the lifecycle status stored on a booking record. Records written
// by older flows use free-form Swedish and English values.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCancelled Status = "cancelled"
)

var acceptedMarkers = []string{"accepted", "accepterad", "acceptera", "accept"}

// IsAccepted reports whether the status admits the booking to self-service edits.
func (s Status) IsAccepted() bool {
	lower := strings.ToLower(strings.TrimSpace(string(s)))
	if lower == "" {
		return false
	}
	for _, marker := range acceptedMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
