package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRecordShape is returned when a stored record matches neither
	// the confirmed-order nor the request shape.
	ErrUnknownRecordShape = errors.New("booking record has an unknown shape")
	// ErrBaseServiceToggle is returned when a toggle targets the base move.
	ErrBaseServiceToggle = errors.New("the base move service cannot be toggled")
	// ErrNegativePrice is returned for any negative price or total.
	ErrNegativePrice = errors.New("price must not be negative")
)

// NotAcceptedError reports a booking whose status does not allow self-service changes.
type NotAcceptedError struct {
	Status Status
}

func (e *NotAcceptedError) Error() string {
	status := string(e.Status)
	if status == "" {
		status = "unknown"
	}
	return fmt.Sprintf("booking must be accepted before it can be changed (status %s)", status)
}

// PriceResolutionError reports a record that carries no usable price.
type PriceResolutionError struct {
	BookingID string
}

func (e *PriceResolutionError) Error() string {
	return fmt.Sprintf("no price could be resolved for booking %s", e.BookingID)
}
