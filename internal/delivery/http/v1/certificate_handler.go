package v1

import (
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

// maxSignatureBytes bounds the raw or data URL signature body.
const maxSignatureBytes = 2 << 20

type CertificateHandler struct {
	certificateUC domain.CertificateUsecase
}

type signatureRequest struct {
	Signature string `json:"signature" binding:"required"`
}

func NewCertificateHandler(public, protected *gin.RouterGroup, guard *middleware.Guard, certificateUC domain.CertificateUsecase) {
	handler := &CertificateHandler{certificateUC: certificateUC}

	public.GET("/public/certificates/:code/verify", handler.Verify)

	certificates := protected.Group("/certificates")
	{
		certificates.GET("", handler.List)
		certificates.GET("/expiring", handler.Expiring)
		certificates.GET("/export", guard.Require("certificates.export", "Download certificate reports"), handler.Export)
		certificates.GET("/:id", handler.Get)
		certificates.GET("/:id/signature", handler.SignatureURL)
		certificates.POST("", guard.Require("certificates.issue", "Issue aptitude certificates"), handler.Issue)
		certificates.PUT("/:id/signature", guard.Require("certificates.sign", "Attach the physician signature"), handler.AttachSignature)
	}
}

// List godoc
// @Summary      List certificates
// @Tags         certificates
// @Produce      json
// @Param        page                  query     int     false  "Page"
// @Param        limit                 query     int     false  "Page size"
// @Param        company_id            query     int     false  "Company"
// @Param        candidate_id          query     int     false  "Candidate"
// @Param        concept               query     string  false  "Concept"
// @Param        expiring_within_days  query     int     false  "Only certificates expiring in the next N days"
// @Success      200                   {object}  response.Response{data=response.Page}
// @Router       /certificates [get]
// @Security     BearerAuth
func (h *CertificateHandler) List(c *gin.Context) {
	var f domain.CertificateFilter
	if !bindQuery(c, &f) {
		return
	}
	items, total, err := h.certificateUC.List(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, "Certificates retrieved", items, total, f.PageRequest)
}

// Get godoc
// @Summary      Get a certificate
// @Tags         certificates
// @Produce      json
// @Param        id   path      int  true  "Certificate ID"
// @Success      200  {object}  response.Response{data=domain.Certificate}
// @Failure      404  {object}  response.Response
// @Router       /certificates/{id} [get]
// @Security     BearerAuth
func (h *CertificateHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	cert, err := h.certificateUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Certificate retrieved", cert)
}

// Issue godoc
// @Summary      Issue an aptitude certificate for an order
// @Description  Completes an in-progress order and marks the candidate completed
// @Tags         certificates
// @Accept       json
// @Produce      json
// @Param        body  body      domain.CertificateInput  true  "Certificate"
// @Success      201   {object}  response.Response{data=domain.Certificate}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /certificates [post]
// @Security     BearerAuth
func (h *CertificateHandler) Issue(c *gin.Context) {
	var req domain.CertificateInput
	if !bindJSON(c, &req) {
		return
	}
	cert, err := h.certificateUC.Issue(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Certificate issued", cert)
}

// AttachSignature godoc
// @Summary      Attach the physician signature
// @Description  Accepts a PNG body or JSON {"signature": "data:image/png;base64,..."}
// @Tags         certificates
// @Accept       image/png,json
// @Produce      json
// @Param        id   path      int  true  "Certificate ID"
// @Success      200  {object}  response.Response{data=domain.Certificate}
// @Failure      400  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /certificates/{id}/signature [put]
// @Security     BearerAuth
func (h *CertificateHandler) AttachSignature(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var raw []byte
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req signatureRequest
		if !bindJSON(c, &req) {
			return
		}
		raw = []byte(req.Signature)
	} else {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSignatureBytes))
		if err != nil {
			c.Error(apperror.BadRequest("Signature is too large or unreadable"))
			return
		}
		raw = body
	}

	cert, err := h.certificateUC.AttachSignature(c.Request.Context(), id, raw)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Signature attached", cert)
}

// SignatureURL godoc
// @Summary      Get a temporary link to the signature image
// @Tags         certificates
// @Produce      json
// @Param        id   path      int  true  "Certificate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /certificates/{id}/signature [get]
// @Security     BearerAuth
func (h *CertificateHandler) SignatureURL(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	url, err := h.certificateUC.SignatureURL(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Signature link generated", gin.H{"url": url})
}

// Expiring godoc
// @Summary      List certificates expiring soon
// @Tags         certificates
// @Produce      json
// @Param        days  query     int  false  "Window in days (default 30)"
// @Success      200   {object}  response.Response{data=[]domain.Certificate}
// @Router       /certificates/expiring [get]
// @Security     BearerAuth
func (h *CertificateHandler) Expiring(c *gin.Context) {
	days := 30
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			c.Error(apperror.BadRequest("days must be between 1 and 365"))
			return
		}
		days = n
	}
	certs, err := h.certificateUC.ListExpiring(c.Request.Context(), days)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Expiring certificates retrieved", certs)
}

// Export godoc
// @Summary      Export certificates
// @Tags         certificates
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        format   query     string  false  "xlsx (default) or csv"
// @Param        concept  query     string  false  "Concept"
// @Success      200      {file}    file
// @Router       /certificates/export [get]
// @Security     BearerAuth
func (h *CertificateHandler) Export(c *gin.Context) {
	var f domain.CertificateFilter
	if !bindQuery(c, &f) {
		return
	}
	file, err := h.certificateUC.Export(c.Request.Context(), f, c.Query("format"))
	if err != nil {
		c.Error(err)
		return
	}
	sendFile(c, file)
}

// Verify godoc
// @Summary      Verify a certificate code
// @Description  Public endpoint used by the QR code printed on certificates
// @Tags         certificates
// @Produce      json
// @Param        code  path      string  true  "Verification code"
// @Success      200   {object}  response.Response{data=domain.CertificateVerification}
// @Failure      404   {object}  response.Response
// @Router       /public/certificates/{code}/verify [get]
func (h *CertificateHandler) Verify(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if len(code) != 10 {
		c.Error(apperror.NotFound("Certificate not found"))
		return
	}
	v, err := h.certificateUC.Verify(c.Request.Context(), code)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Certificate verified", v)
}
