package email

import (
	"context"

	"booking_portal_backend/platform/config"
)

// BookingChange is the content of a change confirmation.
type BookingChange struct {
	CustomerName string
	Reference    string
	Kind         string
	Summary      []string
	OldTotal     int64
	NewTotal     int64
	PortalURL    string
}

// BookingCancellation is the content of a cancellation confirmation.
type BookingCancellation struct {
	CustomerName string
	Reference    string
	Fee          int64
	Reason       string
}

type Sender interface {
	SendBookingChangedEmail(ctx context.Context, toEmail string, change BookingChange) error
	SendBookingCancelledEmail(ctx context.Context, toEmail string, cancellation BookingCancellation) error
}

type NoopSender struct{}

func (NoopSender) SendBookingChangedEmail(ctx context.Context, toEmail string, change BookingChange) error {
	return nil
}

func (NoopSender) SendBookingCancelledEmail(ctx context.Context, toEmail string, cancellation BookingCancellation) error {
	return nil
}

// NewSender returns an SMTP sender, or a NoopSender when email is disabled.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() || cfg.GetSMTPHost() == "" {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
