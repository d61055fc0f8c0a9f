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

type UserHandler struct {
	userUC domain.UserUsecase
}

func NewUserHandler(protected *gin.RouterGroup, guard *middleware.Guard, userUC domain.UserUsecase) {
	handler := &UserHandler{userUC: userUC}

	users := protected.Group("/users", guard.Require("users.manage", "Assign roles and companies to users"))
	{
		users.GET("", handler.List)
		users.GET("/:id", handler.Get)
		users.PUT("/:id/role", handler.AssignRole)
		users.PUT("/:id/companies", handler.SetCompanies)
		users.PATCH("/:id/status", handler.SetActive)
	}
}

func userIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.Error(apperror.BadRequest("Invalid user id"))
		return "", false
	}
	return id, true
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page     query     int     false  "Page"
// @Param        limit    query     int     false  "Page size"
// @Param        role_id  query     int     false  "Role"
// @Param        active   query     bool    false  "Active flag"
// @Param        search   query     string  false  "Email or name"
// @Success      200      {object}  response.Response{data=response.Page}
// @Router       /users [get]
// @Security     BearerAuth
func (h *UserHandler) List(c *gin.Context) {
	var f domain.UserFilter
	if !bindQuery(c, &f) {
		return
	}
	items, total, err := h.userUC.ListUsers(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, "Users retrieved", items, total, f.PageRequest)
}

// Get godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	user, err := h.userUC.GetUser(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User retrieved", user)
}

// AssignRole godoc
// @Summary      Assign a role to a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "User ID"
// @Param        body  body      domain.AssignRoleInput  true  "Role"
// @Success      200   {object}  response.Response{data=domain.User}
// @Router       /users/{id}/role [put]
// @Security     BearerAuth
func (h *UserHandler) AssignRole(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req domain.AssignRoleInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userUC.AssignRole(c.Request.Context(), id, req.RoleID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Role assigned", user)
}

// SetCompanies godoc
// @Summary      Replace the companies a user belongs to
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "User ID"
// @Param        body  body      domain.UserCompaniesInput  true  "Companies"
// @Success      200   {object}  response.Response{data=domain.User}
// @Router       /users/{id}/companies [put]
// @Security     BearerAuth
func (h *UserHandler) SetCompanies(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req domain.UserCompaniesInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userUC.SetCompanies(c.Request.Context(), id, req.CompanyIDs)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Companies updated", user)
}

// SetActive godoc
// @Summary      Activate or deactivate a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "User ID"
// @Param        body  body      domain.UserStatusInput  true  "Status"
// @Success      200   {object}  response.Response{data=domain.User}
// @Router       /users/{id}/status [patch]
// @Security     BearerAuth
func (h *UserHandler) SetActive(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req domain.UserStatusInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userUC.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User status updated", user)
}
