package v1

import (
	"net/http"

	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/usecase"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/theme"
	"go-occupational-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	palette theme.Palette
	health  usecase.HealthUsecase
}

type passwordStrengthRequest struct {
	Password string `json:"password" binding:"max=128"`
}

// NewPublicHandler mounts the unauthenticated helpers: health, password strength and theme.
func NewPublicHandler(public *gin.RouterGroup, palette theme.Palette, health usecase.HealthUsecase) {
	handler := &PublicHandler{palette: palette, health: health}

	public.GET("/health", handler.Health)
	public.POST("/auth/password-strength", handler.PasswordStrength)

	themeGroup := public.Group("/theme")
	{
		themeGroup.GET("", handler.Palette)
		themeGroup.GET("/:category/:key", handler.Color)
	}
}

// Health godoc
// @Summary      Service health
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *PublicHandler) Health(c *gin.Context) {
	status, healthy := h.health.Check(c.Request.Context())
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// PasswordStrength godoc
// @Summary      Score a password
// @Description  One point per rule: length, lowercase, uppercase, digit and symbol
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordStrengthRequest  true  "Password"
// @Success      200   {object}  response.Response{data=validation.PasswordStrength}
// @Router       /auth/password-strength [post]
func (h *PublicHandler) PasswordStrength(c *gin.Context) {
	var req passwordStrengthRequest
	if !bindJSON(c, &req) {
		return
	}
	response.Success(c, http.StatusOK, "Password evaluated", validation.EvaluatePassword(req.Password))
}

// Palette godoc
// @Summary      Badge color palette
// @Tags         theme
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /theme [get]
func (h *PublicHandler) Palette(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	response.Success(c, http.StatusOK, "Palette retrieved", gin.H{
		"categories": h.palette.Categories(),
		"palette":    h.palette,
		"fallback":   theme.Fallback,
	})
}

// Color godoc
// @Summary      Look up one badge color
// @Description  Falls back to the category default, then to the global default
// @Tags         theme
// @Produce      json
// @Param        category  path      string  true  "Category, e.g. order_status"
// @Param        key       path      string  true  "Key, e.g. COMPLETED"
// @Success      200       {object}  response.Response{data=theme.Color}
// @Router       /theme/{category}/{key} [get]
func (h *PublicHandler) Color(c *gin.Context) {
	category, key := c.Param("category"), c.Param("key")
	if len(category) > 64 || len(key) > 64 {
		c.Error(apperror.BadRequest("category and key must be at most 64 characters"))
		return
	}
	response.Success(c, http.StatusOK, "Color retrieved", h.palette.Lookup(category, key))
}
