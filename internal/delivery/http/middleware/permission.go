package middleware

import (
	"context"
	"net/http"

	"go-occupational-backend/internal/authz"
	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PermissionSource interface {
	PermissionsOf(ctx context.Context, roleID int64) (map[string]bool, error)
}

// Guard builds permission checks for route groups and records every guarded action in the registry.
type Guard struct {
	registry *authz.Registry
	perms    PermissionSource
}

func NewGuard(registry *authz.Registry, perms PermissionSource) *Guard {
	return &Guard{registry: registry, perms: perms}
}

// Require registers code and rejects viewers whose role lacks it. Admins always pass.
func (g *Guard) Require(code, description string) gin.HandlerFunc {
	g.registry.Register(code, description)

	return func(c *gin.Context) {
		v, ok := ViewerFrom(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
			c.Abort()
			return
		}
		if v.IsAdmin() {
			c.Next()
			return
		}

		granted, err := g.perms.PermissionsOf(c.Request.Context(), v.RoleID)
		if err != nil {
			logger.FromContext(c).Error("failed to load role permissions", "role_id", v.RoleID, "error", err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			c.Abort()
			return
		}
		if !granted[code] {
			response.Error(c, http.StatusForbidden, "You do not have permission to perform this action", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin is for routes that manage access itself.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := ViewerFrom(c)
		if !ok || !v.IsAdmin() {
			response.Error(c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
