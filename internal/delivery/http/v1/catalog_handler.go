package v1

import (
	"net/http"

	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogUC domain.CatalogUsecase
}

func NewCatalogHandler(protected *gin.RouterGroup, guard *middleware.Guard, catalogUC domain.CatalogUsecase) {
	handler := &CatalogHandler{catalogUC: catalogUC}
	manage := guard.Require("catalogs.manage", "Manage candidate types, document types and requirements")

	catalog := protected.Group("/catalog")
	{
		catalog.GET("/candidate-types", handler.ListCandidateTypes)
		catalog.POST("/candidate-types", manage, handler.CreateCandidateType)
		catalog.PUT("/candidate-types/:id", manage, handler.UpdateCandidateType)
		catalog.GET("/candidate-types/:id/requirements", handler.ListRequirements)

		catalog.GET("/document-types", handler.ListDocumentTypes)
		catalog.POST("/document-types", manage, handler.CreateDocumentType)
		catalog.PUT("/document-types/:id", manage, handler.UpdateDocumentType)

		catalog.POST("/requirements", manage, handler.CreateRequirement)
		catalog.DELETE("/requirements/:id", manage, handler.DeleteRequirement)
	}
}

// ListCandidateTypes godoc
// @Summary      List candidate types
// @Tags         catalog
// @Produce      json
// @Param        active  query     bool  false  "Only active types"
// @Success      200     {object}  response.Response{data=[]domain.CandidateType}
// @Router       /catalog/candidate-types [get]
// @Security     BearerAuth
func (h *CatalogHandler) ListCandidateTypes(c *gin.Context) {
	onlyActive := c.Query("active") == "true"
	types, err := h.catalogUC.ListCandidateTypes(c.Request.Context(), onlyActive)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate types retrieved", types)
}

// CreateCandidateType godoc
// @Summary      Create a candidate type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body      domain.CandidateTypeInput  true  "Candidate type"
// @Success      201   {object}  response.Response{data=domain.CandidateType}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /catalog/candidate-types [post]
// @Security     BearerAuth
func (h *CatalogHandler) CreateCandidateType(c *gin.Context) {
	var req domain.CandidateTypeInput
	if !bindJSON(c, &req) {
		return
	}
	ct, err := h.catalogUC.CreateCandidateType(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Candidate type created", ct)
}

// UpdateCandidateType godoc
// @Summary      Update a candidate type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id    path      int                        true  "Candidate type ID"
// @Param        body  body      domain.CandidateTypeInput  true  "Candidate type"
// @Success      200   {object}  response.Response{data=domain.CandidateType}
// @Failure      404   {object}  response.Response
// @Router       /catalog/candidate-types/{id} [put]
// @Security     BearerAuth
func (h *CatalogHandler) UpdateCandidateType(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req domain.CandidateTypeInput
	if !bindJSON(c, &req) {
		return
	}
	ct, err := h.catalogUC.UpdateCandidateType(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate type updated", ct)
}

// ListRequirements godoc
// @Summary      List the documents a candidate type must provide
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Candidate type ID"
// @Success      200  {object}  response.Response{data=[]domain.DocumentRequirement}
// @Router       /catalog/candidate-types/{id}/requirements [get]
// @Security     BearerAuth
func (h *CatalogHandler) ListRequirements(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	reqs, err := h.catalogUC.ListRequirements(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Requirements retrieved", reqs)
}

// ListDocumentTypes godoc
// @Summary      List document types
// @Tags         catalog
// @Produce      json
// @Param        active  query     bool  false  "Only active types"
// @Success      200     {object}  response.Response{data=[]domain.DocumentType}
// @Router       /catalog/document-types [get]
// @Security     BearerAuth
func (h *CatalogHandler) ListDocumentTypes(c *gin.Context) {
	onlyActive := c.Query("active") == "true"
	types, err := h.catalogUC.ListDocumentTypes(c.Request.Context(), onlyActive)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Document types retrieved", types)
}

// CreateDocumentType godoc
// @Summary      Create a document type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body      domain.DocumentTypeInput  true  "Document type"
// @Success      201   {object}  response.Response{data=domain.DocumentType}
// @Failure      409   {object}  response.Response
// @Router       /catalog/document-types [post]
// @Security     BearerAuth
func (h *CatalogHandler) CreateDocumentType(c *gin.Context) {
	var req domain.DocumentTypeInput
	if !bindJSON(c, &req) {
		return
	}
	dt, err := h.catalogUC.CreateDocumentType(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Document type created", dt)
}

// UpdateDocumentType godoc
// @Summary      Update a document type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "Document type ID"
// @Param        body  body      domain.DocumentTypeInput  true  "Document type"
// @Success      200   {object}  response.Response{data=domain.DocumentType}
// @Router       /catalog/document-types/{id} [put]
// @Security     BearerAuth
func (h *CatalogHandler) UpdateDocumentType(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req domain.DocumentTypeInput
	if !bindJSON(c, &req) {
		return
	}
	dt, err := h.catalogUC.UpdateDocumentType(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Document type updated", dt)
}

// CreateRequirement godoc
// @Summary      Map a document type to a candidate type
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body      domain.RequirementInput  true  "Mapping"
// @Success      201   {object}  response.Response{data=domain.DocumentRequirement}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /catalog/requirements [post]
// @Security     BearerAuth
func (h *CatalogHandler) CreateRequirement(c *gin.Context) {
	var req domain.RequirementInput
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.catalogUC.CreateRequirement(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Requirement created", created)
}

// DeleteRequirement godoc
// @Summary      Remove a document mapping
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Requirement ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /catalog/requirements/{id} [delete]
// @Security     BearerAuth
func (h *CatalogHandler) DeleteRequirement(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogUC.DeleteRequirement(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Requirement deleted", nil)
}
