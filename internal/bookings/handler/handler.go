package handler

import (
	"net/http"

	"booking_portal_backend/internal/bookings/service"
	"booking_portal_backend/internal/bookings/transport"
	"booking_portal_backend/platform/httpkit"
	"booking_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles the portal's booking HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new bookings handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the portal routes. limit guards the routes that
// call the pricing service.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.POST("/bookings/:bookingId/views", h.OpenView)

	views := rg.Group("/views/:viewId", withViewID)
	views.GET("", h.View)
	views.DELETE("", h.CloseView)
	views.GET("/additional-services", h.AdditionalServices)
	views.GET("/photos", h.Photos)
	views.POST("/edits", h.OpenEdit)

	edits := views.Group("/edits/:sessionId")
	edits.GET("", h.Session)
	edits.DELETE("", h.CloseEdit)
	edits.POST("/propose", limit, h.ProposeAddress)
	edits.POST("/undo", h.UndoAddress)
	edits.POST("/confirm", h.ConfirmAddress)
	edits.POST("/volume/preview", h.PreviewVolume)
	edits.POST("/volume", h.SaveVolume)
	edits.POST("/schedule", h.SaveSchedule)
	edits.POST("/services/toggle", h.ToggleService)
	edits.POST("/cancel-booking", h.CancelBooking)
	edits.POST("/checklist/toggle", h.ToggleChecklistItem)
	edits.POST("/review", h.SubmitReview)
}

// withViewID adds the view id to the request context for logging.
func withViewID(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request = c.Request.WithContext(contextWithViewID(ctx, c.Param("viewId")))
	c.Next()
}

func (h *Handler) OpenView(c *gin.Context) {
	key := c.Param("bookingId")
	if key == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.OpenView(c.Request.Context(), key)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) View(c *gin.Context) {
	result, err := h.svc.View(c.Param("viewId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) CloseView(c *gin.Context) {
	h.svc.CloseView(c.Param("viewId"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdditionalServices(c *gin.Context) {
	result, err := h.svc.AdditionalServices(c.Request.Context(), c.Param("viewId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Photos(c *gin.Context) {
	result, err := h.svc.Photos(c.Request.Context(), c.Param("viewId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) OpenEdit(c *gin.Context) {
	var req transport.OpenEditRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.OpenEdit(c.Request.Context(), c.Param("viewId"), req.Kind)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) Session(c *gin.Context) {
	result, err := h.svc.Session(c.Param("viewId"), c.Param("sessionId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) CloseEdit(c *gin.Context) {
	if httpkit.HandleError(c, h.svc.CloseEdit(c.Param("viewId"), c.Param("sessionId"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ProposeAddress(c *gin.Context) {
	var req transport.ProposeAddressRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.ProposeAddress(c.Request.Context(), c.Param("viewId"), c.Param("sessionId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) UndoAddress(c *gin.Context) {
	result, err := h.svc.UndoAddress(c.Param("viewId"), c.Param("sessionId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) ConfirmAddress(c *gin.Context) {
	var req transport.ConfirmAddressRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.ConfirmAddress(c.Request.Context(), c.Param("viewId"), c.Param("sessionId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) PreviewVolume(c *gin.Context) {
	var req transport.VolumePreviewRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.PreviewVolume(c.Param("viewId"), c.Param("sessionId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) SaveVolume(c *gin.Context) {
	var req transport.SaveVolumeRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.SaveVolume(c.Request.Context(), c.Param("viewId"), c.Param("sessionId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) SaveSchedule(c *gin.Context) {
	var req transport.SaveScheduleRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.SaveSchedule(c.Request.Context(), c.Param("viewId"), c.Param("sessionId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) ToggleService(c *gin.Context) {
	var req transport.ToggleServiceRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.ToggleService(c.Request.Context(), c.Param("viewId"), c.Param("sessionId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	var req transport.CancelBookingRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.CancelBooking(c.Request.Context(), c.Param("viewId"), c.Param("sessionId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) ToggleChecklistItem(c *gin.Context) {
	var req transport.ToggleChecklistItemRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.ToggleChecklistItem(c.Request.Context(), c.Param("viewId"), c.Param("sessionId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) SubmitReview(c *gin.Context) {
	var req transport.SubmitReviewRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.SubmitReview(c.Request.Context(), c.Param("viewId"), c.Param("sessionId"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// bind decodes and validates a JSON body, answering 400 on failure.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}
