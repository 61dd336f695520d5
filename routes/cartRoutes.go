package routes

import (
	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/gin-gonic/gin"
)

func CartRoutes(api *gin.RouterGroup, c *controllers.Controller) {
	cart := api.Group("/cart")
	{
		cart.POST("/add", c.AddToCart)
		cart.GET("/:customerId", c.GetCart)
		cart.PUT("/update", c.UpdateCartItem)
		cart.DELETE("/:customerId/:dishId", c.RemoveCartItem)
		cart.DELETE("/:customerId", c.ClearCart)
	}
}
