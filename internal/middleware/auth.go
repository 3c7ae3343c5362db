package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"nutricare-server/internal/config"
	"nutricare-server/internal/models"
	"nutricare-server/internal/scheduling"
	"nutricare-server/internal/utils"
)

const identityKey = "identity"

// Identity is the authenticated caller, built from the access token.
type Identity struct {
	UserID string
	Name   string
	Role   models.Role
	// NutricionistaID is the owning nutritionist of a patient.
	NutricionistaID string
}

// Actor converts the identity into the scheduling actor passed to service calls.
func (i Identity) Actor() scheduling.Actor {
	return scheduling.Actor{UserID: i.UserID, Role: i.Role}
}

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		SetIdentity(c, Identity{
			UserID:          claims.UserID,
			Name:            claims.Name,
			Role:            claims.Role,
			NutricionistaID: claims.NutricionistaID,
		})

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c)
		if !ok {
			utils.InternalServerError(c, "Identity not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if id.Role == allowedRole {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

// IdentityFromContext returns the identity stored by AuthMiddleware.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// SetIdentity stores id on the context. Used by AuthMiddleware and by tests.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// OptionalAuth stores the identity when a valid bearer token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			if claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret); err == nil {
				SetIdentity(c, Identity{
					UserID:          claims.UserID,
					Name:            claims.Name,
					Role:            claims.Role,
					NutricionistaID: claims.NutricionistaID,
				})
			}
		}
		c.Next()
	}
}
