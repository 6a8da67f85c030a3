// Package bookings provides the customer self-service portal for confirmed
// bookings: viewing a booking and changing its address, volume, date,
// add-on services or cancelling it.
package bookings

import (
	"booking_portal_backend/internal/bookings/guard"
	"booking_portal_backend/internal/bookings/handler"
	"booking_portal_backend/internal/bookings/repository"
	"booking_portal_backend/internal/bookings/service"
	"booking_portal_backend/internal/events"
	apphttp "booking_portal_backend/internal/http"
	"booking_portal_backend/internal/pricing"
	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/httpkit"
	"booking_portal_backend/platform/logger"
	"booking_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the bookings portal module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	limiter *httpkit.IPRateLimiter
}

// NewModule creates a new bookings module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, quoter service.Quoter, catalog *pricing.Catalog, eventBus events.Bus, cfg config.PortalConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, quoter, catalog, guard.New(log), eventBus, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		limiter: httpkit.NewQuoteRateLimiter(log),
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "bookings"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes on the portal group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Portal, m.limiter.RateLimit())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
