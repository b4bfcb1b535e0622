package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace/auth"
	"marketplace/models"
	"marketplace/services"
)

const callerKey = "caller"

// Verifier checks an access token and returns its claims
type Verifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthRequired validates the bearer token and injects the caller into context
func AuthRequired(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		c.Set(callerKey, services.Caller{ID: claims.UserID, Role: claims.Role, Name: claims.Name})
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := lookupCaller(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message": "Access denied. Required role(s): " + rolesString(roles),
		})
	}
}

func rolesString(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func lookupCaller(c *gin.Context) (services.Caller, bool) {
	val, exists := c.Get(callerKey)
	if !exists {
		return services.Caller{}, false
	}
	caller, ok := val.(services.Caller)
	return caller, ok
}

// GetCaller returns the verified caller; only valid behind AuthRequired
func GetCaller(c *gin.Context) services.Caller {
	caller, _ := lookupCaller(c)
	return caller
}
