package v1

import (
	"net/http"

	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

func NewCandidateHandler(protected *gin.RouterGroup, guard *middleware.Guard, candidateUC domain.CandidateUsecase) {
	handler := &CandidateHandler{candidateUC: candidateUC}

	candidates := protected.Group("/candidates")
	{
		candidates.GET("", handler.List)
		candidates.GET("/:id", handler.Get)
		candidates.POST("", guard.Require("candidates.create", "Register candidates"), handler.Register)
		candidates.PUT("/:id", guard.Require("candidates.update", "Edit candidate data"), handler.Update)
		candidates.DELETE("/:id", guard.Require("candidates.delete", "Delete candidates without open orders"), handler.Delete)
	}
}

// List godoc
// @Summary      List candidates
// @Description  Non-global users only see candidates of their selected company
// @Tags         candidates
// @Produce      json
// @Param        page               query     int     false  "Page"
// @Param        limit              query     int     false  "Page size"
// @Param        company_id         query     int     false  "Company"
// @Param        candidate_type_id  query     int     false  "Candidate type"
// @Param        status             query     string  false  "Status"
// @Param        search             query     string  false  "Name or document"
// @Success      200                {object}  response.Response{data=response.Page}
// @Router       /candidates [get]
// @Security     BearerAuth
func (h *CandidateHandler) List(c *gin.Context) {
	var f domain.CandidateFilter
	if !bindQuery(c, &f) {
		return
	}
	items, total, err := h.candidateUC.List(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, "Candidates retrieved", items, total, f.PageRequest)
}

// Get godoc
// @Summary      Get a candidate
// @Tags         candidates
// @Produce      json
// @Param        id   path      int  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.Candidate}
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [get]
// @Security     BearerAuth
func (h *CandidateHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	candidate, err := h.candidateUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate retrieved", candidate)
}

// Register godoc
// @Summary      Register a candidate
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        body  body      domain.CandidateInput  true  "Candidate"
// @Success      201   {object}  response.Response{data=domain.Candidate}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /candidates [post]
// @Security     BearerAuth
func (h *CandidateHandler) Register(c *gin.Context) {
	var req domain.CandidateInput
	if !bindJSON(c, &req) {
		return
	}
	candidate, err := h.candidateUC.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Candidate registered", candidate)
}

// Update godoc
// @Summary      Update a candidate
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Candidate ID"
// @Param        body  body      domain.CandidateInput  true  "Candidate"
// @Success      200   {object}  response.Response{data=domain.Candidate}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /candidates/{id} [put]
// @Security     BearerAuth
func (h *CandidateHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req domain.CandidateInput
	if !bindJSON(c, &req) {
		return
	}
	candidate, err := h.candidateUC.Update(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate updated", candidate)
}

// Delete godoc
// @Summary      Delete a candidate
// @Description  Refused while the candidate has open orders
// @Tags         candidates
// @Produce      json
// @Param        id   path      int  true  "Candidate ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /candidates/{id} [delete]
// @Security     BearerAuth
func (h *CandidateHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.candidateUC.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate deleted", nil)
}
