package middleware

import (
	"net/http"
	"strconv"

	"go-occupational-backend/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

const (
	CompanyHeader = "X-Company-ID"
	CompanyCookie = "selected_company"
)

// CompanyContext reads the selected company from the X-Company-ID header or the
// selected_company cookie. Non-global viewers must belong to it. Runs after AuthMiddleware.
func CompanyContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := ViewerFrom(c)
		if !ok {
			c.Next()
			return
		}

		raw := c.GetHeader(CompanyHeader)
		if raw == "" {
			raw, _ = c.Cookie(CompanyCookie)
		}
		if raw == "" {
			c.Next()
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, http.StatusBadRequest, "Invalid company id", nil)
			c.Abort()
			return
		}
		if !v.BelongsTo(id) {
			response.Error(c, http.StatusForbidden, "You do not belong to the selected company", nil)
			c.Abort()
			return
		}

		scoped := *v
		scoped.CompanyID = &id
		setViewer(c, &scoped)
		c.Next()
	}
}
