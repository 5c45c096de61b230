package api

import (
	routes "buildingclash/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine, tasks routes.TaskService, info map[string]string) {
	r.Use(routes.RequestID())

	// Setup main handlers
	routes.SetupMainHandlers(r.Group(""), info)

	// Setup clash handlers
	routes.SetupClashHandlers(r.Group(""), tasks)
}
