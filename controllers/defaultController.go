package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const homeMessage = `Welcome to SmartBite API. Order your favourite dishes with ease.

The following are the endpoints for this API:

AUTH
- POST "/api/auth/register" - Create customer account
- POST "/api/auth/login" - Access customer account

MENU
- GET "/api/menus" - Get all menus
- GET "/api/menus/:menuId/dishes" - Get dishes in a menu
- GET "/api/dishes" - Get all dishes
- GET "/api/dishes/:dishId" - Get dish by ID

ORDER
- POST "/api/orders/place" - Place a new order
- GET "/api/orders/:customerId" - Get orders for a customer
- GET "/api/orders/:customerId/:orderId" - Get order by ID
- GET "/api/orders/:customerId/:orderId/notifications" - Get order email status

CART
- POST "/api/cart/add" - Add a dish to the cart
- GET "/api/cart/:customerId" - Get cart
- PUT "/api/cart/update" - Change a cart quantity
- DELETE "/api/cart/:customerId/:dishId" - Remove a dish from the cart
- DELETE "/api/cart/:customerId" - Clear cart

REVIEW
- POST "/api/reviews/add" - Review a dish
- PUT "/api/reviews/update" - Update a review
- GET "/api/reviews/dish/:dishId" - Get reviews for a dish
- GET "/api/reviews/customer/:customerId" - Get reviews by a customer
- DELETE "/api/reviews/:reviewId" - Delete a review

CUSTOMER
- GET "/api/customers/me" - Get profile
- PUT "/api/customers/me" - Update profile

ADMIN
- GET, POST "/api/admin/dishes" - List or create dishes
- PUT, DELETE "/api/admin/dishes/:dishId" - Update or delete a dish
- POST "/api/admin/dishes/:dishId/image" - Upload a dish image
- POST "/api/admin/menus" - Create menu
- PUT, DELETE "/api/admin/menus/:menuId" - Update or delete a menu
- GET "/api/admin/orders" - Get all orders
- PUT "/api/admin/orders/:orderId/status" - Update order status
- GET "/api/admin/customers" - Get all customers
- PUT "/api/admin/customers/:customerId/promote" - Grant admin rights
- PUT "/api/admin/customers/:customerId/demote" - Revoke admin rights
- GET "/api/admin/stats" - Store statistics
- GET "/api/admin/notifications" - Notification queue`

func (c *Controller) GetHome(ctx *gin.Context) {
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": homeMessage,
	})
}

// HealthCheck reports whether the database answers a ping.
func (c *Controller) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(pingCtx)
	}
	if err != nil {
		respondWithError(ctx, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"status": "ok"})
}
