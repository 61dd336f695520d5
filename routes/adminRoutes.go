package routes

import (
	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/gin-gonic/gin"
)

// AdminRoutes expects admin to already require an authenticated admin.
func AdminRoutes(admin *gin.RouterGroup, c *controllers.Controller) {
	admin.GET("/dishes", c.GetDishes)
	admin.POST("/dishes", c.CreateDish)
	admin.PUT("/dishes/:dishId", c.UpdateDish)
	admin.DELETE("/dishes/:dishId", c.DeleteDish)
	admin.POST("/dishes/:dishId/image", c.UploadDishImage)

	admin.POST("/menus", c.CreateMenu)
	admin.PUT("/menus/:menuId", c.UpdateMenu)
	admin.DELETE("/menus/:menuId", c.DeleteMenu)

	admin.GET("/orders", c.GetOrders)
	admin.PUT("/orders/:orderId/status", c.UpdateOrderStatus)

	admin.GET("/customers", c.GetCustomers)
	admin.PUT("/customers/:customerId/promote", c.PromoteCustomer)
	admin.PUT("/customers/:customerId/demote", c.DemoteCustomer)

	admin.GET("/stats", c.GetStats)
	admin.GET("/notifications", c.GetNotifications)
}
