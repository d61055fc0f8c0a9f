// Package audit writes an append-only trail of sensitive actions as JSON lines.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Action identifies what happened.
type Action string

const (
	ActionRolePermissionsChanged Action = "role_permissions_changed"
	ActionRoleDeleted            Action = "role_deleted"
	ActionUserRoleAssigned       Action = "user_role_assigned"
	ActionUserCompaniesChanged   Action = "user_companies_changed"
	ActionUserStatusChanged      Action = "user_status_changed"
	ActionUserProvisioned        Action = "user_provisioned"
	ActionTokenMinted            Action = "token_minted"
	ActionTokenRejected          Action = "token_rejected"
	ActionMailRelayed            Action = "mail_relayed"
	ActionDocumentReviewed       Action = "document_reviewed"
	ActionUploadBlocked          Action = "upload_blocked"
	ActionCertificateIssued      Action = "certificate_issued"
	ActionCompanyDeleted         Action = "company_deleted"
	ActionUnauthorizedAccess     Action = "unauthorized_access"
	ActionRateLimitTriggered     Action = "rate_limit_triggered"
)

// Event is one audit entry.
type Event struct {
	Action    Action
	ActorID   string
	ActorMail string
	Target    string
	IP        string
	RequestID string
	Details   map[string]interface{}
}

type Logger struct {
	zap         *zap.Logger
	service     string
	environment string
}

var defaultLogger = New("saludocupacional-api", "development")

// New builds a production zap logger writing to stdout.
func New(service, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	z, err := config.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return NewWithZap(z, service, environment)
}

func NewWithZap(z *zap.Logger, service, environment string) *Logger {
	return &Logger{zap: z, service: service, environment: environment}
}

// Init replaces the process-wide audit logger.
func Init(service, environment string) *Logger {
	defaultLogger = New(service, environment)
	return defaultLogger
}

func Default() *Logger {
	return defaultLogger
}

func level(a Action) zapcore.Level {
	switch a {
	case ActionUnauthorizedAccess, ActionTokenRejected, ActionRateLimitTriggered, ActionUploadBlocked:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Record writes the event. Emails in ActorMail are masked.
func (l *Logger) Record(_ context.Context, e Event) {
	fields := []zap.Field{
		zap.String("service", l.service),
		zap.String("env", l.environment),
		zap.String("action", string(e.Action)),
		zap.Time("at", time.Now().UTC()),
	}
	if e.ActorID != "" {
		fields = append(fields, zap.String("actor_id", e.ActorID))
	}
	if e.ActorMail != "" {
		fields = append(fields, zap.String("actor_email", MaskEmail(e.ActorMail)))
	}
	if e.Target != "" {
		fields = append(fields, zap.String("target", e.Target))
	}
	if e.IP != "" {
		fields = append(fields, zap.String("ip", e.IP))
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.RequestID))
	}
	if len(e.Details) > 0 {
		fields = append(fields, zap.Any("details", e.Details))
	}
	l.zap.Log(level(e.Action), "audit", fields...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return HashValue(email)
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue creates a short SHA256 fingerprint of a value
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
