// Package notification turns booking domain events into customer
// confirmations. Domain modules publish events and never talk to the email
// provider or the job queue directly.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booking_portal_backend/internal/events"
	"booking_portal_backend/internal/scheduler"
	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/logger"
)

// Module subscribes to booking events and enqueues confirmation emails.
type Module struct {
	queue scheduler.ConfirmationScheduler
	cfg   config.NotificationConfig
	log   *logger.Logger
}

func New(queue scheduler.ConfirmationScheduler, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{queue: queue, cfg: cfg, log: log}
}

// RegisterHandlers subscribes to booking events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.BookingChanged{}.EventName(), m)
	bus.Subscribe(events.BookingCancelled{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.BookingChanged:
		return m.handleBookingChanged(ctx, e)
	case events.BookingCancelled:
		return m.handleBookingCancelled(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleBookingChanged(ctx context.Context, e events.BookingChanged) error {
	if strings.TrimSpace(e.CustomerEmail) == "" {
		return nil
	}
	return m.enqueue(ctx, scheduler.BookingChangeConfirmationPayload{
		EventID:       e.EventID(),
		BookingID:     e.BookingID,
		Reference:     e.Reference,
		CustomerName:  e.CustomerName,
		CustomerEmail: e.CustomerEmail,
		Kind:          string(e.Kind),
		Summary:       e.Summary,
		OldTotal:      e.OldTotal,
		NewTotal:      e.NewTotal,
		PortalURL:     m.portalURL(e.BookingID),
	})
}

func (m *Module) handleBookingCancelled(ctx context.Context, e events.BookingCancelled) error {
	if strings.TrimSpace(e.CustomerEmail) == "" {
		return nil
	}
	return m.enqueue(ctx, scheduler.BookingChangeConfirmationPayload{
		EventID:       e.EventID(),
		BookingID:     e.BookingID,
		Reference:     e.Reference,
		CustomerName:  e.CustomerName,
		CustomerEmail: e.CustomerEmail,
		Kind:          scheduler.KindCancellation,
		Fee:           e.Fee,
		Reason:        e.Reason,
	})
}

func (m *Module) enqueue(ctx context.Context, payload scheduler.BookingChangeConfirmationPayload) error {
	if err := m.queue.EnqueueBookingChangeConfirmation(ctx, payload); err != nil {
		m.log.ExternalCallFailed("asynq", err)
		return fmt.Errorf("enqueue confirmation for booking %s: %w", payload.BookingID, err)
	}
	m.log.Info("booking_confirmation_enqueued",
		slog.String("booking_id", payload.BookingID),
		slog.String("kind", payload.Kind),
	)
	return nil
}

func (m *Module) portalURL(bookingID string) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	if base == "" {
		return ""
	}
	return base + "/order-confirmation/" + bookingID
}
