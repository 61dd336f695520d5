package routes

import (
	"github.com/Kariqs/smartbite-api/controllers"
	"github.com/Kariqs/smartbite-api/middlewares"
	"github.com/Kariqs/smartbite-api/utils"
	"github.com/gin-gonic/gin"
)

// Setup installs the request pipeline and every route group on server.
// authLimiter may be nil to leave the auth endpoints unthrottled.
func Setup(server *gin.Engine, c *controllers.Controller, authLimiter *middlewares.RateLimiter) {
	utils.RegisterValidators()

	server.Use(middlewares.RequestLogger(c.Log), c.Metrics.Middleware())

	DefaultRoutes(server, c)

	api := server.Group("/api")
	requireAuth := middlewares.RequireAuth(c.Tokens)

	AuthRoutes(api, c, authLimiter)
	DishRoutes(api, c)
	OrderRoutes(api.Group("", requireAuth), c)
	CartRoutes(api.Group("", requireAuth), c)
	ReviewRoutes(api, c, requireAuth)
	CustomerRoutes(api.Group("", requireAuth), c)
	AdminRoutes(api.Group("/admin", requireAuth, middlewares.RequireAdmin(c.DB)), c)
}
