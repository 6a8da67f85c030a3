// Package http holds what the router needs from the composition root.
package http

import (
	"context"

	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/logger"
)

// RouterConfig is the slice of configuration the router reads: listen
// address and CORS policy for the portal frontend.
type RouterConfig interface {
	config.HTTPConfig
}

// HealthChecker backs the readiness endpoint. The booking database pool
// satisfies it.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled in cmd/api and handed to router.New. Event wiring stays
// in cmd/api; the router only mounts modules.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}
