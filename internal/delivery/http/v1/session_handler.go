package v1

import (
	"net/http"
	"strconv"

	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// companyCookieMaxAge keeps the selection for 30 days.
const companyCookieMaxAge = 30 * 24 * 60 * 60

type SessionHandler struct {
	userUC       domain.UserUsecase
	secureCookie bool
}

type selectCompanyRequest struct {
	CompanyID int64 `json:"company_id" binding:"required,gt=0"`
}

func NewSessionHandler(protected *gin.RouterGroup, userUC domain.UserUsecase, secureCookie bool) {
	handler := &SessionHandler{userUC: userUC, secureCookie: secureCookie}

	protected.GET("/session", handler.Session)
	protected.PUT("/session/company", handler.SelectCompany)
}

// Session godoc
// @Summary      Current user, permissions and companies
// @Tags         session
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Session}
// @Failure      401  {object}  response.Response
// @Router       /session [get]
// @Security     BearerAuth
func (h *SessionHandler) Session(c *gin.Context) {
	session, err := h.userUC.Session(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Session retrieved", session)
}

// SelectCompany godoc
// @Summary      Select the company to work on
// @Description  Sets the selected_company cookie; clients may also send X-Company-ID
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      selectCompanyRequest  true  "Company"
// @Success      200   {object}  response.Response{data=domain.Company}
// @Failure      403   {object}  response.Response
// @Router       /session/company [put]
// @Security     BearerAuth
func (h *SessionHandler) SelectCompany(c *gin.Context) {
	var req selectCompanyRequest
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.userUC.SelectCompany(c.Request.Context(), req.CompanyID)
	if err != nil {
		c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CompanyCookie, strconv.FormatInt(company.ID, 10), companyCookieMaxAge, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, "Company selected", company)
}
