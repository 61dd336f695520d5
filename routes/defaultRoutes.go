package routes

import (
	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/gin-gonic/gin"
)

func DefaultRoutes(server *gin.Engine, c *controllers.Controller) {
	server.GET("/", c.GetHome)
	server.GET("/healthz", c.HealthCheck)
	server.GET("/metrics", c.Metrics.Handler())
}
