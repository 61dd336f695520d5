package routes

import (
	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/gin-gonic/gin"
)

func DishRoutes(api *gin.RouterGroup, c *controllers.Controller) {
	api.GET("/menus", c.GetMenus)
	api.GET("/menus/:menuId/dishes", c.GetMenuDishes)
	api.GET("/dishes", c.GetDishes)
	api.GET("/dishes/:dishId", c.GetDish)
}
