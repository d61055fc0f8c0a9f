package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/audit"
	"go-occupational-backend/pkg/email"
	"go-occupational-backend/pkg/export"
	"go-occupational-backend/pkg/logger"
	"go-occupational-backend/pkg/metrics"
	"go-occupational-backend/pkg/signature"
	"go-occupational-backend/pkg/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultValidity = 365 * 24 * time.Hour
	presignTTL      = 15 * time.Minute
	maxExpiringDays = 365
)

var certificateCodePattern = regexp.MustCompile(`^[0-9A-F]{10}$`)

type certificateUsecase struct {
	certRepo    domain.CertificateRepository
	orderRepo   domain.OrderRepository
	companyRepo domain.CompanyRepository
	store       storage.ObjectStore
	mailer      Mailer
	auditor     Auditor
	validate    *validator.Validate
	now         func() time.Time
}

// NewCertificateUsecase wires certificate issuance. store may be nil when object storage is not configured.
func NewCertificateUsecase(
	certRepo domain.CertificateRepository,
	orderRepo domain.OrderRepository,
	companyRepo domain.CompanyRepository,
	store storage.ObjectStore,
	mailer Mailer,
	auditor Auditor,
	validate *validator.Validate,
) domain.CertificateUsecase {
	return &certificateUsecase{
		certRepo:    certRepo,
		orderRepo:   orderRepo,
		companyRepo: companyRepo,
		store:       store,
		mailer:      mailer,
		auditor:     auditor,
		validate:    validate,
		now:         time.Now,
	}
}

func (u *certificateUsecase) Issue(ctx context.Context, in domain.CertificateInput) (*domain.Certificate, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}

	order, err := u.orderRepo.GetByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.BadRequest("invalid order")
		}
		return nil, apperror.Internal(err)
	}
	if requireCompanyAccess(v, order.CompanyID) != nil && requireCompanyAccess(v, order.ProviderID) != nil {
		return nil, apperror.Forbidden("You do not have access to this order")
	}
	if order.Status != domain.OrderInProgress && order.Status != domain.OrderCompleted {
		return nil, apperror.Conflict("certificates can only be issued for orders in progress or completed")
	}
	if _, err := u.certRepo.GetByOrderID(ctx, order.ID); err == nil {
		return nil, apperror.Conflict("order already has a certificate")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	concept := domain.Concept(in.Concept)
	restrictions := strings.TrimSpace(in.Restrictions)
	if concept == domain.ConceptAptoConRestricciones && restrictions == "" {
		return nil, apperror.BadRequest("restrictions are required for APTO_CON_RESTRICCIONES")
	}

	issuedAt := u.now()
	validUntil := issuedAt.Add(defaultValidity)
	if in.ValidUntil != nil {
		validUntil = *in.ValidUntil
	}
	if !validUntil.After(issuedAt) {
		return nil, apperror.BadRequest("valid_until must be after the issue date")
	}

	cert := &domain.Certificate{
		Code:             domain.NewCertificateCode(),
		OrderID:          order.ID,
		CandidateID:      order.CandidateID,
		CompanyID:        order.CompanyID,
		Concept:          concept,
		Restrictions:     restrictions,
		Recommendations:  strings.TrimSpace(in.Recommendations),
		PhysicianName:    strings.TrimSpace(in.PhysicianName),
		PhysicianLicense: strings.TrimSpace(in.PhysicianLicense),
		IssuedAt:         issuedAt,
		ValidUntil:       validUntil,
		CandidateName:    order.CandidateName,
		CompanyName:      order.CompanyName,
		OrderNumber:      order.Number,
	}
	if err := u.certRepo.Create(ctx, cert, order.Status == domain.OrderInProgress); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("order already has a certificate")
		}
		return nil, apperror.Internal(err)
	}

	metrics.RecordCertificateIssued(string(cert.Concept))
	recordAudit(ctx, u.auditor, audit.Event{
		Action:  audit.ActionCertificateIssued,
		Target:  cert.Code,
		Details: map[string]interface{}{"order_id": order.ID, "concept": string(cert.Concept)},
	})
	u.notifyCompany(ctx, cert)
	return cert, nil
}

func (u *certificateUsecase) notifyCompany(ctx context.Context, cert *domain.Certificate) {
	company, err := u.companyRepo.GetByID(ctx, cert.CompanyID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load company for certificate notification", "company_id", cert.CompanyID, "error", err)
		return
	}
	msg, err := email.CertificateIssued(company.Email, email.CertificateIssuedData{
		CompanyName:   company.DisplayName(),
		CandidateName: cert.CandidateName,
		Concept:       string(cert.Concept),
		Code:          cert.Code,
		ValidUntil:    cert.ValidUntil.Format("2006-01-02"),
	})
	notify(ctx, u.mailer, msg, err)
}

// load fetches a certificate owned by the viewer's company.
func (u *certificateUsecase) load(ctx context.Context, id int64) (*domain.Certificate, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	cert, err := u.certRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "certificate not found")
	}
	if requireCompanyAccess(v, cert.CompanyID) != nil {
		return nil, apperror.NotFound("certificate not found")
	}
	return cert, nil
}

// AttachSignature stores the physician signature captured on the canvas.
func (u *certificateUsecase) AttachSignature(ctx context.Context, id int64, raw []byte) (*domain.Certificate, error) {
	if u.store == nil {
		return nil, apperror.Unavailable("File storage is not configured", storage.ErrNotConfigured)
	}
	cert, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := signature.Normalize(raw)
	if err != nil {
		if errors.Is(err, signature.ErrBlank) {
			return nil, apperror.BadRequest("signature is blank")
		}
		if errors.Is(err, signature.ErrInvalid) {
			return nil, apperror.BadRequest("signature must be a PNG image")
		}
		return nil, apperror.Internal(err)
	}

	key := fmt.Sprintf("certificates/%d/signature-%s.png", cert.ID, uuid.NewString())
	if err := u.store.Put(ctx, key, "image/png", png); err != nil {
		return nil, apperror.Unavailable("Failed to store signature", err)
	}
	if err := u.certRepo.SetSignature(ctx, cert.ID, key); err != nil {
		return nil, notFound(err, "certificate not found")
	}

	previous := cert.SignatureKey
	cert.SignatureKey = key
	if previous != "" {
		if err := u.store.Delete(ctx, previous); err != nil {
			logger.FromContext(ctx).Warn("failed to delete replaced signature", "key", previous, "error", err)
		}
	}
	return cert, nil
}

func (u *certificateUsecase) SignatureURL(ctx context.Context, id int64) (string, error) {
	if u.store == nil {
		return "", apperror.Unavailable("File storage is not configured", storage.ErrNotConfigured)
	}
	cert, err := u.load(ctx, id)
	if err != nil {
		return "", err
	}
	if cert.SignatureKey == "" {
		return "", apperror.NotFound("certificate has no signature")
	}
	url, err := u.store.PresignGet(ctx, cert.SignatureKey, presignTTL)
	if err != nil {
		return "", apperror.Unavailable("Failed to create download link", err)
	}
	return url, nil
}

func (u *certificateUsecase) Get(ctx context.Context, id int64) (*domain.Certificate, error) {
	return u.load(ctx, id)
}

// Verify is public: it only exposes the reduced verification view.
func (u *certificateUsecase) Verify(ctx context.Context, code string) (*domain.CertificateVerification, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !certificateCodePattern.MatchString(code) {
		return nil, apperror.NotFound("certificate not found")
	}
	cert, err := u.certRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "certificate not found")
	}
	return &domain.CertificateVerification{
		Code:          cert.Code,
		Concept:       cert.Concept,
		CandidateName: cert.CandidateName,
		CompanyName:   cert.CompanyName,
		IssuedAt:      cert.IssuedAt,
		ValidUntil:    cert.ValidUntil,
		Valid:         u.now().Before(cert.ValidUntil),
	}, nil
}

func (u *certificateUsecase) scope(ctx context.Context, f domain.CertificateFilter) (domain.CertificateFilter, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return f, err
	}
	if f.CompanyID, err = scopeCompany(v, f.CompanyID); err != nil {
		return f, err
	}
	if f.ExpiringWithinDays < 0 || f.ExpiringWithinDays > maxExpiringDays {
		return f, apperror.BadRequest(fmt.Sprintf("expiring_within_days must be between 0 and %d", maxExpiringDays))
	}
	return f, nil
}

func (u *certificateUsecase) List(ctx context.Context, f domain.CertificateFilter) ([]domain.Certificate, int64, error) {
	f, err := u.scope(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	f.PageRequest = f.PageRequest.Normalize()
	items, total, err := u.certRepo.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

func (u *certificateUsecase) Export(ctx context.Context, f domain.CertificateFilter, format string) (*domain.ExportFile, error) {
	fmtType, err := export.ParseFormat(format)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	f, err = u.scope(ctx, f)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Sheet:   "Certificados",
		Headers: []string{"Código", "Orden", "Candidato", "Documento", "Empresa", "Concepto", "Restricciones", "Médico", "Emitido", "Vigente hasta"},
	}
	err = collectPages(ctx, func(ctx context.Context, page domain.PageRequest) (int, int64, error) {
		f.PageRequest = page
		items, total, err := u.certRepo.List(ctx, f)
		for _, c := range items {
			table.Rows = append(table.Rows, []interface{}{
				c.Code, c.OrderNumber, c.CandidateName, c.CandidateDoc, c.CompanyName, string(c.Concept),
				c.Restrictions, c.PhysicianName, c.IssuedAt, c.ValidUntil,
			})
		}
		return len(items), total, err
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	file, err := export.Render(fmtType, "certificados", table, u.now())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.ExportFile{Name: file.Name, ContentType: file.ContentType, Data: file.Data}, nil
}

// ListExpiring returns still valid certificates that expire within the next days, limited to the viewer's scope.
func (u *certificateUsecase) ListExpiring(ctx context.Context, days int) ([]domain.Certificate, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	if days < 1 || days > maxExpiringDays {
		return nil, apperror.BadRequest(fmt.Sprintf("days must be between 1 and %d", maxExpiringDays))
	}
	scope, err := scopeCompany(v, nil)
	if err != nil {
		return nil, err
	}

	now := u.now()
	certs, err := u.certRepo.ListExpiring(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if scope == nil {
		return certs, nil
	}
	out := make([]domain.Certificate, 0, len(certs))
	for _, c := range certs {
		if c.CompanyID == *scope {
			out = append(out, c)
		}
	}
	return out, nil
}
