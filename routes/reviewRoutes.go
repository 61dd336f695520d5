package routes

import (
	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/gin-gonic/gin"
)

// ReviewRoutes leaves a dish's reviews public; writing needs a token.
func ReviewRoutes(api *gin.RouterGroup, c *controllers.Controller, requireAuth gin.HandlerFunc) {
	reviews := api.Group("/reviews")
	{
		reviews.GET("/dish/:dishId", c.GetDishReviews)
		reviews.POST("/add", requireAuth, c.AddReview)
		reviews.PUT("/update", requireAuth, c.UpdateReview)
		reviews.GET("/customer/:customerId", requireAuth, c.GetCustomerReviews)
		reviews.DELETE("/:reviewId", requireAuth, c.DeleteReview)
	}
}
