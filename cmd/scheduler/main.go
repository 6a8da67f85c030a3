package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"booking_portal_backend/internal/email"
	"booking_portal_backend/internal/scheduler"
	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := email.NewSender(cfg)
	if _, ok := sender.(email.NoopSender); ok {
		log.Warn("SMTP not configured; booking confirmations are dropped")
	}

	worker, err := scheduler.NewWorker(cfg, sender, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
