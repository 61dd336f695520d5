package middlewares

import (
	"net/http"

	"github.com/Kariqs/smartbite-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireAdmin must run after RequireAuth. Besides the token's admin flag it
// re-reads the customer so a demotion takes effect before the token expires.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, exists := ClaimsFrom(ctx)
		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		if !claims.IsAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		var customer models.Customer
		if err := db.WithContext(ctx.Request.Context()).Select("id", "is_admin").First(&customer, claims.CustomerID).Error; err != nil || !customer.IsAdmin {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		ctx.Next()
	}
}
