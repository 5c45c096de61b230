package routes

import (
	"buildingclash/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID tags every request with an id, reusing a valid incoming header
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := util.RequestID(c.GetHeader(RequestIDHeader))
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
