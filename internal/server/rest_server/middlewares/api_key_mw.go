package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/openivms/telemetry-server/internal/cerrors"
	"github.com/openivms/telemetry-server/internal/constants"
)

// APIKeyMW guards the device-facing ingestion route with the pre-shared
// credential. A mismatch aborts with the exact body devices expect and
// produces no side effects.
func APIKeyMW(expected string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.GetHeader(constants.HeaderXAPIKey)
		if key != expected {
			ctx.AbortWithStatusJSON(cerrors.ErrUnauthorizedAPIKey.HTTPStatus, gin.H{
				"error": cerrors.ErrUnauthorizedAPIKey.Message,
			})
			return
		}
		ctx.Next()
	}
}
