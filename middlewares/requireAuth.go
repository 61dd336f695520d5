package middlewares

import (
	"net/http"
	"strings"

	"github.com/Kariqs/smartbite-api/utils"
	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// RequireAuth verifies the bearer token and stores its claims on the context.
func RequireAuth(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			LoggerFrom(ctx).WithError(err).Debug("Rejected bearer token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		ctx.Set(claimsKey, claims)
		ctx.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireAuth.
func ClaimsFrom(ctx *gin.Context) (*utils.Claims, bool) {
	value, exists := ctx.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*utils.Claims)
	return claims, ok
}
