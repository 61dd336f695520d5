package routes

import (
	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(api *gin.RouterGroup, c *controllers.Controller) {
	orders := api.Group("/orders")
	{
		orders.POST("/place", c.PlaceOrder)
		orders.GET("/:customerId", c.GetCustomerOrders)
		orders.GET("/:customerId/:orderId", c.GetCustomerOrder)
		orders.GET("/:customerId/:orderId/notifications", c.GetOrderNotifications)
	}
}
