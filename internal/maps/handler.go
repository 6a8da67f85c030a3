package maps

import (
	"net/http"

	"booking_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the address suggestion endpoint.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Suggest handles GET /api/v1/portal/maps/address-suggestions?q=...
func (h *Handler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required", nil)
		return
	}

	results, err := h.svc.Suggest(c.Request.Context(), req.Query)
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "address suggestions are unavailable right now, please type the full address", nil)
		return
	}

	httpkit.OK(c, gin.H{"candidates": results})
}
