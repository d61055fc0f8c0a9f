package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// multipartOverhead covers form fields and part headers on top of the file itself.
const multipartOverhead = 64 << 10

type DocumentHandler struct {
	documentUC domain.DocumentUsecase
	maxBytes   int64
}

// NewDocumentHandler mounts document routes. uploadLimits run after the permission check on uploads only.
func NewDocumentHandler(protected *gin.RouterGroup, guard *middleware.Guard, documentUC domain.DocumentUsecase, maxBytes int64, uploadLimits ...gin.HandlerFunc) {
	handler := &DocumentHandler{documentUC: documentUC, maxBytes: maxBytes}

	upload := append([]gin.HandlerFunc{guard.Require("documents.upload", "Upload candidate documents")}, uploadLimits...)
	upload = append(upload, handler.Upload)

	protected.GET("/candidates/:id/documents", handler.List)
	protected.GET("/candidates/:id/checklist", handler.Checklist)
	protected.POST("/candidates/:id/documents", upload...)

	documents := protected.Group("/documents")
	{
		documents.GET("/:id/download", handler.Download)
		documents.PUT("/:id/review", guard.Require("documents.review", "Approve or reject candidate documents"), handler.Review)
	}
}

// List godoc
// @Summary      List the documents uploaded for a candidate
// @Tags         documents
// @Produce      json
// @Param        id   path      int  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=[]domain.CandidateDocument}
// @Router       /candidates/{id}/documents [get]
// @Security     BearerAuth
func (h *DocumentHandler) List(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	docs, err := h.documentUC.List(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Documents retrieved", docs)
}

// Upload godoc
// @Summary      Upload a candidate document
// @Description  PDF, JPG or PNG. Replaces a pending or rejected upload of the same type.
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        id                path      int   true  "Candidate ID"
// @Param        document_type_id  formData  int   true  "Document type"
// @Param        file              formData  file  true  "File"
// @Success      201               {object}  response.Response{data=domain.CandidateDocument}
// @Failure      400               {object}  response.Response
// @Failure      413               {object}  response.Response
// @Failure      503               {object}  response.Response
// @Router       /candidates/{id}/documents [post]
// @Security     BearerAuth
func (h *DocumentHandler) Upload(c *gin.Context) {
	candidateID, ok := idParam(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(h.maxBytes + multipartOverhead); err != nil {
		if tooLarge(err) {
			c.Error(apperror.New(http.StatusRequestEntityTooLarge, "File is too large", err))
			return
		}
		c.Error(apperror.BadRequest("Invalid multipart form"))
		return
	}

	typeID, err := strconv.ParseInt(c.PostForm("document_type_id"), 10, 64)
	if err != nil || typeID <= 0 {
		c.Error(apperror.BadRequest("document_type_id is required"))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.Error(apperror.BadRequest("file could not be read"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.Error(apperror.BadRequest("file could not be read"))
		return
	}

	doc, err := h.documentUC.Upload(c.Request.Context(), domain.UploadInput{
		CandidateID:    candidateID,
		DocumentTypeID: typeID,
		FileName:       fh.Filename,
		Data:           data,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Document uploaded", doc)
}

// tooLarge also matches by message since mime/multipart does not always wrap the reader error.
func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// Review godoc
// @Summary      Approve or reject a document
// @Description  Only pending documents can be reviewed; rejections need notes
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Document ID"
// @Param        body  body      domain.ReviewInput  true  "Decision"
// @Success      200   {object}  response.Response{data=domain.CandidateDocument}
// @Failure      409   {object}  response.Response
// @Router       /documents/{id}/review [put]
// @Security     BearerAuth
func (h *DocumentHandler) Review(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req domain.ReviewInput
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.documentUC.Review(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Document reviewed", doc)
}

// Checklist godoc
// @Summary      Document checklist of a candidate
// @Tags         documents
// @Produce      json
// @Param        id   path      int  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.Checklist}
// @Router       /candidates/{id}/checklist [get]
// @Security     BearerAuth
func (h *DocumentHandler) Checklist(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := h.documentUC.Checklist(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Checklist retrieved", list)
}

// Download godoc
// @Summary      Get a temporary download link
// @Tags         documents
// @Produce      json
// @Param        id   path      int  true  "Document ID"
// @Success      200  {object}  response.Response
// @Router       /documents/{id}/download [get]
// @Security     BearerAuth
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	url, err := h.documentUC.DownloadURL(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Download link generated", gin.H{"url": url})
}
