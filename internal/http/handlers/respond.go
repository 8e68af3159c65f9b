package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusValidationFailed is the status clients of this API already expect for validation
// failures. It is not 400/422 and must stay that way.
const statusValidationFailed = http.StatusNotFound

const (
	msgServerError   = "Server Error"
	msgUserNotFound  = "User not found"
	msgValidation    = "Validation Error"
	msgDuplicate     = "Email already exists"
	msgInvalidJSON   = "Invalid JSON payload"
	msgBodyTooLarge  = "Request body too large"
	msgRouteNotFound = "Route not found"
)

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success": status < http.StatusBadRequest,
		"message": message,
	})
}

func RespondData(ctx *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success": true,
		"data":    data,
	}
	if message != "" {
		body["message"] = message
	}

	ctx.JSON(status, body)
}

func RespondServerError(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": msgServerError,
		"error":   errorText(err),
	})
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusNotFound, message)
}

func RespondValidation(ctx *gin.Context, messages []string) {
	ctx.JSON(statusValidationFailed, gin.H{
		"success": false,
		"message": msgValidation,
		"errors":  messages,
	})
}

func RespondDuplicate(ctx *gin.Context) {
	RespondMessage(ctx, http.StatusBadRequest, msgDuplicate)
}

func RespondInvalidJSON(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": msgInvalidJSON,
		"error":   errorText(err),
	})
}

func RespondBodyTooLarge(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
		"success": false,
		"message": msgBodyTooLarge,
	})
}

func RespondRouteNotFound(ctx *gin.Context) {
	RespondMessage(ctx, http.StatusNotFound, msgRouteNotFound)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
