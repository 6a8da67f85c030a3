package domain

import (
	"errors"
	"math"
	"time"
)

// FreeCancellationWindow is how long before the move a booking can be
// cancelled without a fee.
const FreeCancellationWindow = 24 * time.Hour

// LateCancellationRate is the share of the total charged inside the window.
const LateCancellationRate = 0.5

// ErrMoveStarted is returned when cancelling at or after the move start.
var ErrMoveStarted = errors.New("the move has already started")

// CancellationTerms is what a cancellation would cost right now.
type CancellationTerms struct {
	Fee            int64
	Free           bool
	HoursUntilMove float64
}

// QuoteCancellation prices cancelling a booking that starts at moveStart.
func QuoteCancellation(total int64, moveStart, now time.Time) (CancellationTerms, error) {
	until := moveStart.Sub(now)
	if until <= 0 {
		return CancellationTerms{}, ErrMoveStarted
	}
	terms := CancellationTerms{HoursUntilMove: until.Hours()}
	if until >= FreeCancellationWindow {
		terms.Free = true
		return terms, nil
	}
	terms.Fee = int64(math.Round(float64(total) * LateCancellationRate))
	return terms, nil
}
