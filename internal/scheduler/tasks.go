package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskBookingChangeConfirmation = "bookings.change_confirmation"

// KindCancellation marks a confirmation for a cancelled booking. Other kinds
// name the edited part of the booking.
const KindCancellation = "cancellation"

type BookingChangeConfirmationPayload struct {
	EventID       string   `json:"eventId"`
	BookingID     string   `json:"bookingId"`
	Reference     string   `json:"reference"`
	CustomerName  string   `json:"customerName"`
	CustomerEmail string   `json:"customerEmail"`
	Kind          string   `json:"kind"`
	Summary       []string `json:"summary,omitempty"`
	OldTotal      int64    `json:"oldTotal"`
	NewTotal      int64    `json:"newTotal"`
	Fee           int64    `json:"fee,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	PortalURL     string   `json:"portalUrl,omitempty"`
}

func NewBookingChangeConfirmationTask(payload BookingChangeConfirmationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingChangeConfirmation, data), nil
}

func ParseBookingChangeConfirmationPayload(task *asynq.Task) (BookingChangeConfirmationPayload, error) {
	var payload BookingChangeConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BookingChangeConfirmationPayload{}, err
	}
	return payload, nil
}
