package handler

import (
	"context"

	"booking_portal_backend/platform/logger"
)

func contextWithViewID(ctx context.Context, viewID string) context.Context {
	return context.WithValue(ctx, logger.ViewIDKey, viewID)
}
