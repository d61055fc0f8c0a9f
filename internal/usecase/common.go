package usecase

import (
	"context"
	"errors"
	"strings"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/audit"
	"go-occupational-backend/pkg/email"
	"go-occupational-backend/pkg/logger"
	"go-occupational-backend/pkg/metrics"
	"go-occupational-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// Mailer sends notification emails.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
	IsConfigured() bool
}

// Auditor records sensitive actions.
type Auditor interface {
	Record(ctx context.Context, e audit.Event)
}

func currentViewer(ctx context.Context) (*domain.Viewer, error) {
	v, ok := domain.ViewerFrom(ctx)
	if !ok || v.UserID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	return v, nil
}

// requireCompanyAccess fails with 403 unless the viewer may act on companyID.
// Non-global viewers are limited to the company selected for the request.
func requireCompanyAccess(v *domain.Viewer, companyID int64) error {
	if v.Global {
		return nil
	}
	if v.CompanyID == nil || *v.CompanyID != companyID {
		return apperror.Forbidden("You do not have access to this company")
	}
	return nil
}

// scopeCompany applies the viewer's company restriction to a list filter.
func scopeCompany(v *domain.Viewer, requested *int64) (*int64, error) {
	scope, ok := v.ScopedCompany(requested)
	if !ok {
		return nil, apperror.Forbidden("Select a company first")
	}
	return scope, nil
}

func validateInput(v *validator.Validate, in interface{}) error {
	if err := v.Struct(in); err != nil {
		return apperror.New(400, strings.Join(validation.FormatValidationErrors(err), "; "), err)
	}
	return nil
}

// notFound converts domain.ErrNotFound into a 404 and anything else into a 500.
func notFound(err error, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(message)
	}
	return apperror.Internal(err)
}

// repoError passes AppErrors through and wraps everything else as internal.
func repoError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err)
}

// notify sends a best effort notification. Failures are logged and counted, never returned.
func notify(ctx context.Context, mailer Mailer, msg email.Message, renderErr error) {
	log := logger.FromContext(ctx)
	if renderErr != nil {
		log.Error("failed to render notification", "error", renderErr)
		return
	}
	if mailer == nil || !mailer.IsConfigured() {
		log.Info("notification skipped, smtp not configured", "subject", msg.Subject)
		return
	}
	if len(msg.To) == 0 || msg.To[0] == "" {
		log.Warn("notification skipped, no recipient", "subject", msg.Subject)
		return
	}
	err := mailer.Send(ctx, msg)
	metrics.RecordMail("notification", err)
	if err != nil {
		log.Error("failed to send notification", "subject", msg.Subject, "error", err)
	}
}

func recordAudit(ctx context.Context, a Auditor, e audit.Event) {
	if a == nil {
		return
	}
	if v, ok := domain.ViewerFrom(ctx); ok {
		e.ActorID = v.UserID
		e.ActorMail = v.Email
	}
	a.Record(ctx, e)
}
