package v1

import (
	"net/http"

	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyUC domain.CompanyUsecase
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func NewCompanyHandler(protected *gin.RouterGroup, guard *middleware.Guard, companyUC domain.CompanyUsecase) {
	handler := &CompanyHandler{companyUC: companyUC}
	manage := guard.Require("companies.manage", "Create, edit, activate and delete companies and providers")

	companies := protected.Group("/companies")
	{
		companies.GET("", handler.List)
		companies.GET("/:id", handler.Get)
		companies.POST("", manage, handler.Create)
		companies.PUT("/:id", manage, handler.Update)
		companies.PATCH("/:id/status", manage, handler.SetActive)
		companies.DELETE("/:id", manage, handler.Delete)
	}
}

// List godoc
// @Summary      List companies and providers
// @Tags         companies
// @Produce      json
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Page size"
// @Param        kind    query     string  false  "EMPRESA or PRESTADOR"
// @Param        active  query     bool    false  "Active flag"
// @Param        search  query     string  false  "Name or NIT"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /companies [get]
// @Security     BearerAuth
func (h *CompanyHandler) List(c *gin.Context) {
	var f domain.CompanyFilter
	if !bindQuery(c, &f) {
		return
	}
	items, total, err := h.companyUC.List(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, "Companies retrieved", items, total, f.PageRequest)
}

// Get godoc
// @Summary      Get a company
// @Tags         companies
// @Produce      json
// @Param        id   path      int  true  "Company ID"
// @Success      200  {object}  response.Response{data=domain.Company}
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [get]
// @Security     BearerAuth
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	company, err := h.companyUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company retrieved", company)
}

// Create godoc
// @Summary      Create a company
// @Description  The verification digit is computed from the NIT and must match when supplied
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body      domain.CompanyInput  true  "Company"
// @Success      201   {object}  response.Response{data=domain.Company}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /companies [post]
// @Security     BearerAuth
func (h *CompanyHandler) Create(c *gin.Context) {
	var req domain.CompanyInput
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyUC.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Company created", company)
}

// Update godoc
// @Summary      Update a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Company ID"
// @Param        body  body      domain.CompanyInput  true  "Company"
// @Success      200   {object}  response.Response{data=domain.Company}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /companies/{id} [put]
// @Security     BearerAuth
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req domain.CompanyInput
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyUC.Update(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company updated", company)
}

// SetActive godoc
// @Summary      Activate or deactivate a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id    path      int            true  "Company ID"
// @Param        body  body      activeRequest  true  "Status"
// @Success      200   {object}  response.Response{data=domain.Company}
// @Router       /companies/{id}/status [patch]
// @Security     BearerAuth
func (h *CompanyHandler) SetActive(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req activeRequest
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyUC.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company status updated", company)
}

// Delete godoc
// @Summary      Delete a company
// @Description  Active companies and companies with candidates or orders cannot be deleted
// @Tags         companies
// @Produce      json
// @Param        id   path      int  true  "Company ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /companies/{id} [delete]
// @Security     BearerAuth
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.companyUC.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Company deleted", nil)
}
