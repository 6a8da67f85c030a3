package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"booking_portal_backend/internal/email"
	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		sender: sender,
		log:    log,
	}
	w.mux.HandleFunc(TaskBookingChangeConfirmation, w.handleBookingChangeConfirmation)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleBookingChangeConfirmation(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseBookingChangeConfirmationPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return deliverConfirmation(ctx, w.sender, payload, w.log)
}

func deliverConfirmation(ctx context.Context, sender email.Sender, payload BookingChangeConfirmationPayload, log *logger.Logger) error {
	if payload.CustomerEmail == "" {
		return nil
	}

	var err error
	if payload.Kind == KindCancellation {
		err = sender.SendBookingCancelledEmail(ctx, payload.CustomerEmail, email.BookingCancellation{
			CustomerName: payload.CustomerName,
			Reference:    payload.Reference,
			Fee:          payload.Fee,
			Reason:       payload.Reason,
		})
	} else {
		err = sender.SendBookingChangedEmail(ctx, payload.CustomerEmail, email.BookingChange{
			CustomerName: payload.CustomerName,
			Reference:    payload.Reference,
			Kind:         payload.Kind,
			Summary:      payload.Summary,
			OldTotal:     payload.OldTotal,
			NewTotal:     payload.NewTotal,
			PortalURL:    payload.PortalURL,
		})
	}
	if err != nil {
		log.ExternalCallFailed("smtp", err)
		return err
	}

	log.Info("booking_confirmation_sent",
		slog.String("booking_id", payload.BookingID),
		slog.String("kind", payload.Kind),
	)
	return nil
}
