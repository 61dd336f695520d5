package routes

import (
	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/gin-gonic/gin"
)

func CustomerRoutes(api *gin.RouterGroup, c *controllers.Controller) {
	api.GET("/customers/me", c.GetProfile)
	api.PUT("/customers/me", c.UpdateProfile)
}
