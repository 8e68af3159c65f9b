package middlewares

import (
	"net/http"

	"github.com/geocoder89/usershub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies at max bytes. A declared Content-Length over the cap is
// rejected before the handler runs; undeclared bodies fail while being read.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if max <= 0 {
			ctx.Next()
			return
		}

		if ctx.Request.ContentLength > max {
			handlers.RespondBodyTooLarge(ctx)
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
