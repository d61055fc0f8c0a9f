// Package functions serves the two edge functions the web client calls outside the REST API:
// generate-token mints HS256 tokens for service callers and send-email relays mail over SMTP.
package functions

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go-occupational-backend/internal/delivery/http/middleware"
	"go-occupational-backend/internal/usecase"
	"go-occupational-backend/pkg/audit"
	"go-occupational-backend/pkg/email"
	"go-occupational-backend/pkg/logger"
	"go-occupational-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"
)

const (
	FunctionKeyHeader = "X-Function-Key"
	maxBodyBytes      = 256 << 10

	// maxLifetimeSeconds is the largest expires_in that still fits a time.Duration.
	maxLifetimeSeconds = int64(math.MaxInt64 / int64(time.Second))
)

// TokenSigner mints tokens from arbitrary claims.
type TokenSigner interface {
	Enabled() bool
	Sign(claims map[string]interface{}, lifetime time.Duration) (string, time.Time, error)
}

type Deps struct {
	Signer TokenSigner
	// FunctionKeyHash is the bcrypt hash of the X-Function-Key value; empty disables the token function.
	FunctionKeyHash string
	Mailer          usecase.Mailer
	Auditor         usecase.Auditor
}

type Handler struct {
	signer  TokenSigner
	keyHash []byte
	mailer  usecase.Mailer
	auditor usecase.Auditor
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type mailResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewHandler mounts generate-token and send-email. tokenChain and mailChain run before each
// handler; send-email must be given the auth middleware.
func NewHandler(fn *gin.RouterGroup, deps Deps, tokenChain, mailChain []gin.HandlerFunc) *Handler {
	h := &Handler{
		signer:  deps.Signer,
		keyHash: []byte(deps.FunctionKeyHash),
		mailer:  deps.Mailer,
		auditor: deps.Auditor,
	}

	fn.POST("/generate-token", append(append([]gin.HandlerFunc{}, tokenChain...), h.GenerateToken)...)
	fn.POST("/send-email", append(append([]gin.HandlerFunc{}, mailChain...), h.SendEmail)...)
	return h
}

func fail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, mailResponse{Success: false, Error: msg})
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		fail(c, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	if !gjson.ValidBytes(body) {
		fail(c, http.StatusBadRequest, "body must be valid JSON")
		return nil, false
	}
	return body, true
}

func (h *Handler) record(c *gin.Context, action audit.Action, target string, details map[string]interface{}) {
	if h.auditor == nil {
		return
	}
	e := audit.Event{
		Action:    action,
		Target:    target,
		IP:        c.ClientIP(),
		RequestID: c.GetString("RequestID"),
		Details:   details,
	}
	if v, ok := middleware.ViewerFrom(c); ok {
		e.ActorID = v.UserID
		e.ActorMail = v.Email
	}
	h.auditor.Record(c.Request.Context(), e)
}

// GenerateToken godoc
// @Summary      Mint a signed token
// @Description  Body is a JSON object of claims. sub is required and must be a user id; expires_in is optional, in seconds.
// @Tags         functions
// @Accept       json
// @Produce      json
// @Param        X-Function-Key  header    string  true  "Function key"
// @Success      200             {object}  tokenResponse
// @Failure      400             {object}  mailResponse
// @Failure      401             {object}  mailResponse
// @Failure      503             {object}  mailResponse
// @Router       /functions/v1/generate-token [post]
func (h *Handler) GenerateToken(c *gin.Context) {
	if len(h.keyHash) == 0 || h.signer == nil || !h.signer.Enabled() {
		fail(c, http.StatusServiceUnavailable, "token function is not configured")
		return
	}

	key := c.GetHeader(FunctionKeyHeader)
	if key == "" || bcrypt.CompareHashAndPassword(h.keyHash, []byte(key)) != nil {
		h.record(c, audit.ActionTokenRejected, "", nil)
		fail(c, http.StatusUnauthorized, "invalid function key")
		return
	}

	body, ok := readBody(c)
	if !ok {
		return
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		fail(c, http.StatusBadRequest, "claims must be a JSON object")
		return
	}

	sub := doc.Get("sub")
	if sub.Type != gjson.String || strings.TrimSpace(sub.String()) == "" {
		fail(c, http.StatusBadRequest, "sub claim is required")
		return
	}
	// the auth middleware resolves sub to a user id
	if _, err := uuid.Parse(sub.String()); err != nil {
		fail(c, http.StatusBadRequest, "sub claim must be a user id (uuid)")
		return
	}

	var lifetime time.Duration
	if exp := doc.Get("expires_in"); exp.Exists() {
		if exp.Type != gjson.Number || exp.Int() <= 0 {
			fail(c, http.StatusBadRequest, "expires_in must be a positive number of seconds")
			return
		}
		secs := exp.Int()
		if secs > maxLifetimeSeconds {
			secs = maxLifetimeSeconds
		}
		lifetime = time.Duration(secs) * time.Second
	}

	claims, _ := doc.Value().(map[string]interface{})
	delete(claims, "expires_in")

	token, expiresAt, err := h.signer.Sign(claims, lifetime)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("token signing failed", "error", err)
		fail(c, http.StatusInternalServerError, "token could not be signed")
		return
	}

	metrics.RecordTokenMinted()
	h.record(c, audit.ActionTokenMinted, sub.String(), map[string]interface{}{
		"expires_at": expiresAt,
		"claims":     len(claims),
	})

	c.JSON(http.StatusOK, tokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}

// parseMessage accepts "to" as a single address or an array of addresses.
func parseMessage(body []byte) email.Message {
	doc := gjson.ParseBytes(body)
	msg := email.Message{
		Subject: doc.Get("subject").String(),
		HTML:    doc.Get("html").String(),
		Text:    doc.Get("text").String(),
		ReplyTo: doc.Get("reply_to").String(),
	}
	to := doc.Get("to")
	if to.IsArray() {
		for _, r := range to.Array() {
			msg.To = append(msg.To, r.String())
		}
	} else if to.Type == gjson.String {
		for _, part := range strings.Split(to.String(), ",") {
			if p := strings.TrimSpace(part); p != "" {
				msg.To = append(msg.To, p)
			}
		}
	}
	return msg
}

// SendEmail godoc
// @Summary      Relay an email
// @Description  to may be a string or an array of strings
// @Tags         functions
// @Accept       json
// @Produce      json
// @Success      200  {object}  mailResponse
// @Failure      400  {object}  mailResponse
// @Failure      502  {object}  mailResponse
// @Failure      503  {object}  mailResponse
// @Router       /functions/v1/send-email [post]
// @Security     BearerAuth
func (h *Handler) SendEmail(c *gin.Context) {
	if h.mailer == nil || !h.mailer.IsConfigured() {
		fail(c, http.StatusServiceUnavailable, "email service is not configured")
		return
	}

	body, ok := readBody(c)
	if !ok {
		return
	}
	msg := parseMessage(body)
	if err := msg.Validate(); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	err := h.mailer.Send(ctx, msg)
	metrics.RecordMail("function", err)
	if err != nil {
		logger.FromContext(ctx).Error("mail relay failed", "error", err, "recipients", len(msg.To))
		switch {
		case errors.Is(err, email.ErrInvalidInput):
			fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, email.ErrNotConfigured):
			fail(c, http.StatusServiceUnavailable, "email service is not configured")
		default:
			fail(c, http.StatusBadGateway, "email could not be delivered")
		}
		return
	}

	h.record(c, audit.ActionMailRelayed, audit.MaskEmail(msg.To[0]), map[string]interface{}{
		"recipients": len(msg.To),
	})
	c.JSON(http.StatusOK, mailResponse{Success: true})
}
