package routes

import (
	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/Kariqs/smartbite-api/middlewares"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(api *gin.RouterGroup, c *controllers.Controller, limiter *middlewares.RateLimiter) {
	auth := api.Group("/auth")
	if limiter != nil {
		auth.Use(limiter.Middleware())
	}
	{
		auth.POST("/register", c.Register)
		auth.POST("/login", c.Login)
	}
}
