package v1

import (
	"net/http"

	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SolicitudHandler struct {
	solicitudUC domain.SolicitudUsecase
}

func NewSolicitudHandler(protected *gin.RouterGroup, guard *middleware.Guard, solicitudUC domain.SolicitudUsecase) {
	handler := &SolicitudHandler{solicitudUC: solicitudUC}
	manage := guard.Require("solicitudes.manage", "Review, assign and close solicitudes")

	solicitudes := protected.Group("/solicitudes")
	{
		solicitudes.GET("", handler.List)
		solicitudes.GET("/:id", handler.Get)
		solicitudes.POST("", guard.Require("solicitudes.create", "Open solicitudes"), handler.Create)
		solicitudes.PATCH("/:id/status", manage, handler.Transition)
		solicitudes.PUT("/:id/assignee", manage, handler.Assign)
	}
}

func solicitudIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.Error(apperror.BadRequest("Invalid solicitud id"))
		return "", false
	}
	return id, true
}

// List godoc
// @Summary      List solicitudes
// @Tags         solicitudes
// @Produce      json
// @Param        page         query     int     false  "Page"
// @Param        limit        query     int     false  "Page size"
// @Param        company_id   query     int     false  "Company"
// @Param        status       query     string  false  "Status"
// @Param        kind         query     string  false  "Kind"
// @Param        assigned_to  query     string  false  "Assignee user id"
// @Success      200          {object}  response.Response{data=response.Page}
// @Router       /solicitudes [get]
// @Security     BearerAuth
func (h *SolicitudHandler) List(c *gin.Context) {
	var f domain.SolicitudFilter
	if !bindQuery(c, &f) {
		return
	}
	items, total, err := h.solicitudUC.List(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, "Solicitudes retrieved", items, total, f.PageRequest)
}

// Get godoc
// @Summary      Get a solicitud with its history
// @Tags         solicitudes
// @Produce      json
// @Param        id   path      string  true  "Solicitud ID"
// @Success      200  {object}  response.Response{data=domain.Solicitud}
// @Failure      404  {object}  response.Response
// @Router       /solicitudes/{id} [get]
// @Security     BearerAuth
func (h *SolicitudHandler) Get(c *gin.Context) {
	id, ok := solicitudIDParam(c)
	if !ok {
		return
	}
	s, err := h.solicitudUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Solicitud retrieved", s)
}

// Create godoc
// @Summary      Open a solicitud
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        body  body      domain.SolicitudInput  true  "Solicitud"
// @Success      201   {object}  response.Response{data=domain.Solicitud}
// @Failure      400   {object}  response.Response
// @Router       /solicitudes [post]
// @Security     BearerAuth
func (h *SolicitudHandler) Create(c *gin.Context) {
	var req domain.SolicitudInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.solicitudUC.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Solicitud created", s)
}

// Transition godoc
// @Summary      Change the status of a solicitud
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "Solicitud ID"
// @Param        body  body      domain.TransitionInput  true  "New status"
// @Success      200   {object}  response.Response{data=domain.Solicitud}
// @Failure      409   {object}  response.Response
// @Router       /solicitudes/{id}/status [patch]
// @Security     BearerAuth
func (h *SolicitudHandler) Transition(c *gin.Context) {
	id, ok := solicitudIDParam(c)
	if !ok {
		return
	}
	var req domain.TransitionInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.solicitudUC.Transition(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Solicitud updated", s)
}

// Assign godoc
// @Summary      Assign or unassign a solicitud
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Solicitud ID"
// @Param        body  body      domain.AssignInput  true  "Assignee, null to clear"
// @Success      200   {object}  response.Response{data=domain.Solicitud}
// @Router       /solicitudes/{id}/assignee [put]
// @Security     BearerAuth
func (h *SolicitudHandler) Assign(c *gin.Context) {
	id, ok := solicitudIDParam(c)
	if !ok {
		return
	}
	var req domain.AssignInput
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.solicitudUC.Assign(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Solicitud assigned", s)
}
