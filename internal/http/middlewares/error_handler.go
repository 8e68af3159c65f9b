package middlewares

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/geocoder89/usershub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// ErrorHandler turns errors recorded with ctx.Error into a response when the handler
// chain did not write one. It must be the last middleware registered.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if len(ctx.Errors) == 0 || ctx.Writer.Written() {
			return
		}

		last := ctx.Errors.Last()

		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(last.Err, &tooLarge):
			handlers.RespondBodyTooLarge(ctx)
		case last.IsType(gin.ErrorTypeBind):
			handlers.RespondInvalidJSON(ctx, last.Err)
		default:
			log.ErrorContext(ctx.Request.Context(), "unhandled request error", "err", last.Err)
			handlers.RespondServerError(ctx, last.Err)
		}
	}
}

// Recovery answers a panic with the 500 envelope instead of letting gin write an empty 500.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(ctx *gin.Context, recovered any) {
		err := fmt.Errorf("panic: %v", recovered)

		log.ErrorContext(ctx.Request.Context(), "panic recovered",
			"err", err,
			"route", ctx.FullPath(),
			"request_id", ctx.GetString(CtxRequestID),
		)

		handlers.RespondServerError(ctx, err)
	})
}
