package v1

import (
	"net/http"

	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type MedicalServiceHandler struct {
	serviceUC domain.MedicalServiceUsecase
}

func NewMedicalServiceHandler(protected *gin.RouterGroup, guard *middleware.Guard, serviceUC domain.MedicalServiceUsecase) {
	handler := &MedicalServiceHandler{serviceUC: serviceUC}
	manage := guard.Require("services.manage", "Maintain the medical services catalog and prices")

	services := protected.Group("/services")
	{
		services.GET("", handler.List)
		services.GET("/:id", handler.Get)
		services.POST("", manage, handler.Create)
		services.PUT("/:id", manage, handler.Update)
		services.PATCH("/:id/status", manage, handler.SetActive)
	}
}

// List godoc
// @Summary      List medical services
// @Tags         services
// @Produce      json
// @Param        page      query     int     false  "Page"
// @Param        limit     query     int     false  "Page size"
// @Param        category  query     string  false  "EXAM, LAB, IMAGING or OTHER"
// @Param        active    query     bool    false  "Active flag"
// @Param        search    query     string  false  "Code or name"
// @Success      200       {object}  response.Response{data=response.Page}
// @Router       /services [get]
// @Security     BearerAuth
func (h *MedicalServiceHandler) List(c *gin.Context) {
	var f domain.MedicalServiceFilter
	if !bindQuery(c, &f) {
		return
	}
	items, total, err := h.serviceUC.List(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, "Services retrieved", items, total, f.PageRequest)
}

// Get godoc
// @Summary      Get a medical service
// @Tags         services
// @Produce      json
// @Param        id   path      int  true  "Service ID"
// @Success      200  {object}  response.Response{data=domain.MedicalService}
// @Failure      404  {object}  response.Response
// @Router       /services/{id} [get]
// @Security     BearerAuth
func (h *MedicalServiceHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	svc, err := h.serviceUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Service retrieved", svc)
}

// Create godoc
// @Summary      Create a medical service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        body  body      domain.MedicalServiceInput  true  "Service"
// @Success      201   {object}  response.Response{data=domain.MedicalService}
// @Failure      409   {object}  response.Response
// @Router       /services [post]
// @Security     BearerAuth
func (h *MedicalServiceHandler) Create(c *gin.Context) {
	var req domain.MedicalServiceInput
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.serviceUC.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Service created", svc)
}

// Update godoc
// @Summary      Update a medical service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id    path      int                         true  "Service ID"
// @Param        body  body      domain.MedicalServiceInput  true  "Service"
// @Success      200   {object}  response.Response{data=domain.MedicalService}
// @Router       /services/{id} [put]
// @Security     BearerAuth
func (h *MedicalServiceHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req domain.MedicalServiceInput
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.serviceUC.Update(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Service updated", svc)
}

// SetActive godoc
// @Summary      Activate or deactivate a medical service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id    path      int            true  "Service ID"
// @Param        body  body      activeRequest  true  "Status"
// @Success      200   {object}  response.Response{data=domain.MedicalService}
// @Router       /services/{id}/status [patch]
// @Security     BearerAuth
func (h *MedicalServiceHandler) SetActive(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req activeRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := h.serviceUC.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Service status updated", svc)
}
