package v1

import (
	"net/http"

	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleUC domain.RoleUsecase
}

// NewRoleHandler mounts role management. Admins only.
func NewRoleHandler(protected *gin.RouterGroup, roleUC domain.RoleUsecase) {
	handler := &RoleHandler{roleUC: roleUC}
	adminOnly := middleware.RequireAdmin()

	roles := protected.Group("/roles", adminOnly)
	{
		roles.GET("", handler.List)
		roles.GET("/:id", handler.Get)
		roles.POST("", handler.Create)
		roles.PUT("/:id", handler.Update)
		roles.DELETE("/:id", handler.Delete)
		roles.PUT("/:id/permissions", handler.SetPermissions)
	}
	protected.GET("/permissions", adminOnly, handler.ListPermissions)
}

// List godoc
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Role}
// @Router       /roles [get]
// @Security     BearerAuth
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleUC.ListRoles(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Roles retrieved", roles)
}

// Get godoc
// @Summary      Get a role with its permission codes
// @Tags         roles
// @Produce      json
// @Param        id   path      int  true  "Role ID"
// @Success      200  {object}  response.Response{data=domain.Role}
// @Failure      404  {object}  response.Response
// @Router       /roles/{id} [get]
// @Security     BearerAuth
func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	role, err := h.roleUC.GetRole(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role retrieved", role)
}

// Create godoc
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      domain.RoleInput  true  "Role"
// @Success      201   {object}  response.Response{data=domain.Role}
// @Failure      409   {object}  response.Response
// @Router       /roles [post]
// @Security     BearerAuth
func (h *RoleHandler) Create(c *gin.Context) {
	var req domain.RoleInput
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roleUC.CreateRole(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Role created", role)
}

// Update godoc
// @Summary      Update a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Role ID"
// @Param        body  body      domain.RoleInput  true  "Role"
// @Success      200   {object}  response.Response{data=domain.Role}
// @Router       /roles/{id} [put]
// @Security     BearerAuth
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req domain.RoleInput
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roleUC.UpdateRole(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role updated", role)
}

// Delete godoc
// @Summary      Delete a role
// @Description  System roles and roles still assigned to users cannot be deleted
// @Tags         roles
// @Produce      json
// @Param        id   path      int  true  "Role ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /roles/{id} [delete]
// @Security     BearerAuth
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.roleUC.DeleteRole(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role deleted", nil)
}

// SetPermissions godoc
// @Summary      Replace the permissions of a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id    path      int                          true  "Role ID"
// @Param        body  body      domain.RolePermissionsInput  true  "Permission codes"
// @Success      200   {object}  response.Response{data=domain.Role}
// @Failure      400   {object}  response.Response
// @Router       /roles/{id}/permissions [put]
// @Security     BearerAuth
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req domain.RolePermissionsInput
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roleUC.SetRolePermissions(c.Request.Context(), id, req.Permissions)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role permissions updated", role)
}

// ListPermissions godoc
// @Summary      List every action that can be granted
// @Tags         roles
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Permission}
// @Router       /permissions [get]
// @Security     BearerAuth
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	perms, err := h.roleUC.ListPermissions(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Permissions retrieved", perms)
}
