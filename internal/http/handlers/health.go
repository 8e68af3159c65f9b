package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type HealthHandler struct {
	ping func(ctx context.Context) error
	now  func() time.Time
}

// NewHealthHandler builds the liveness and readiness handlers. A nil ping always reports ready.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{
		ping: ping,
		now:  time.Now,
	}
}

func (h *HealthHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "API is running!",
		"timestamp": h.now().UTC().Format(timestampLayout),
	})
}

func (h *HealthHandler) Ready(ctx *gin.Context) {
	if h.ping != nil {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
		defer cancel()

		if err := h.ping(cctx); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "Store unavailable",
				"error":   err.Error(),
			})
			return
		}
	}

	RespondMessage(ctx, http.StatusOK, "Store is reachable")
}
