package middleware

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "whisper-bridge/internal/api/errors"
)

// ErrorHandler recovers panics into a JSON APIError.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(RequestIDKey)

		apiErr, ok := recovered.(*apierrors.APIError)
		if !ok {
			logger.Error("Internal server error",
				zap.String("recovered", fmt.Sprint(recovered)),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Stack("stacktrace"),
			)
			apiErr = apierrors.NewInternalError("Internal server error")
		}

		apiErr.RequestID = requestID
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes err as an APIError response. Errors that are not
// APIErrors become a generic 500 and are attached to the context for logging.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		_ = c.Error(err)
		apiErr = apierrors.NewInternalError("Internal server error")
	}

	apiErr.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}
