package handlers

import (
	"techsupport-agent/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalError error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	requestID := middleware.RequestID(c)
	if logger != nil {
		fields = append(fields,
			zap.Error(technicalError),
			zap.String("request_id", requestID),
			zap.String("path", c.FullPath()))
		logger.Error("Request failed", fields...)
	}

	c.JSON(statusCode, gin.H{"error": userMessage, "request_id": requestID})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"error": userMessage})
}
