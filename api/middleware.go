package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeaderKey)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeaderKey, requestID)
		c.Set(RequestIDContextKey, requestID)
		c.Next()
	}
}

func loggerMiddleware(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDContextKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start),
			"client_ip":  c.ClientIP(),
		}).Info("request served")
	}
}
