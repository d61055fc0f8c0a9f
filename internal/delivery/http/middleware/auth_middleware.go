package middleware

import (
	"net/http"
	"strings"

	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/auth"
	"go-occupational-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthCookie carries the access token for browser clients.
const AuthCookie = "auth_token"

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware verifies the access token, provisions first-time users and stores the viewer
// on the request context. The role always comes from the database, never from the token.
func AuthMiddleware(tokens TokenParser, users domain.UserUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			logger.FromContext(c).Warn("token validation failed", "error", err)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		user, err := users.EnsureUser(c.Request.Context(), claims.Subject, claims.Email)
		if err != nil {
			logger.FromContext(c).Error("failed to load user", "user_id", claims.Subject, "error", err)
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}
		if !user.Active {
			response.Error(c, http.StatusForbidden, "User account is disabled", nil)
			c.Abort()
			return
		}

		viewer := &domain.Viewer{
			UserID:    user.ID,
			Email:     user.Email,
			RoleID:    user.RoleID,
			Role:      user.Role,
			Global:    user.Global,
			Companies: user.Companies,
		}
		setViewer(c, viewer)
		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), user.Role)

		requestID, _ := c.Get("RequestID")
		reqIDStr, _ := requestID.(string)
		c.Request = c.Request.WithContext(logger.WithRequest(c.Request.Context(), reqIDStr, user.ID))

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return ""
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}
	return ""
}

// setViewer stores v on both the request context (for usecases) and the gin keys (for handlers).
func setViewer(c *gin.Context, v *domain.Viewer) {
	c.Request = c.Request.WithContext(domain.WithViewer(c.Request.Context(), v))
	c.Set(string(domain.KeyViewer), v)
}

// ViewerFrom returns the viewer stored by AuthMiddleware.
func ViewerFrom(c *gin.Context) (*domain.Viewer, bool) {
	return domain.ViewerFrom(c.Request.Context())
}
