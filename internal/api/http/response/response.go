// Package response renders the JSON envelope every auth endpoint answers with.
package response

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/primus-the-first/TutorMind-sub001/internal/apperrors"
	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
)

// Error aborts c with err rendered as {"success": false, "error": ...}. Errors
// that are not APIErrors are logged and replaced by a generic 500.
func Error(c *gin.Context, log *logger.Logger, err error) {
	apiErr, ok := apperrors.As(err)
	if !ok {
		log.Error("HTTP: unhandled error",
			"path", c.FullPath(),
			"error", err.Error())
		apiErr = apperrors.NewInternal()
	}

	body := gin.H{
		"success": false,
		"error":   apiErr.Message,
	}
	if apiErr.Kind == apperrors.KindRateLimited {
		body["retryAfterSeconds"] = apiErr.RetryAfter
		c.Header("Retry-After", strconv.Itoa(apiErr.RetryAfter))
	}

	c.AbortWithStatusJSON(apiErr.Status, body)
}

// OK writes {"success": true, "message": ...} merged with extra.
func OK(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
