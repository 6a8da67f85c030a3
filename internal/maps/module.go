package maps

import (
	apphttp "booking_portal_backend/internal/http"
	"booking_portal_backend/platform/config"
	"booking_portal_backend/platform/httpkit"
	"booking_portal_backend/platform/logger"
)

// Module wires the address suggestion HTTP routes.
type Module struct {
	handler *Handler
	limiter *httpkit.IPRateLimiter
}

func NewModule(cfg config.MapsConfig, log *logger.Logger) *Module {
	svc := NewService(cfg, log)
	h := NewHandler(svc)
	return &Module{handler: h, limiter: httpkit.NewQuoteRateLimiter(log)}
}

func (m *Module) Name() string {
	return "maps"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Portal.Group("/maps")
	group.GET("/address-suggestions", m.limiter.RateLimit(), m.handler.Suggest)
}

var _ apphttp.Module = (*Module)(nil)
