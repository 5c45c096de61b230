package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupMainHandlers registers the liveness endpoint. info is echoed back
// and must not contain secrets.
func SetupMainHandlers(router *gin.RouterGroup, info map[string]string) {
	router.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		for k, v := range info {
			body[k] = v
		}
		c.JSON(http.StatusOK, body)
	})
}
