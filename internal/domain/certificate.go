package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Concept string

const (
	ConceptApto                 Concept = "APTO"
	ConceptAptoConRestricciones Concept = "APTO_CON_RESTRICCIONES"
	ConceptNoApto               Concept = "NO_APTO"
	ConceptAplazado             Concept = "APLAZADO"
)

type Certificate struct {
	ID               int64     `json:"id"`
	Code             string    `json:"code"`
	OrderID          int64     `json:"order_id"`
	CandidateID      int64     `json:"candidate_id"`
	CompanyID        int64     `json:"company_id"`
	Concept          Concept   `json:"concept"`
	Restrictions     string    `json:"restrictions"`
	Recommendations  string    `json:"recommendations"`
	PhysicianName    string    `json:"physician_name"`
	PhysicianLicense string    `json:"physician_license"`
	IssuedAt         time.Time `json:"issued_at"`
	ValidUntil       time.Time `json:"valid_until"`
	SignatureKey     string    `json:"signature_key,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	CandidateName    string    `json:"candidate_name,omitempty"`
	CandidateDoc     string    `json:"candidate_document,omitempty"`
	CompanyName      string    `json:"company_name,omitempty"`
	OrderNumber      string    `json:"order_number,omitempty"`
}

// CertificateVerification is the public view returned when a code is verified.
type CertificateVerification struct {
	Code          string    `json:"code"`
	Concept       Concept   `json:"concept"`
	CandidateName string    `json:"candidate_name"`
	CompanyName   string    `json:"company_name"`
	IssuedAt      time.Time `json:"issued_at"`
	ValidUntil    time.Time `json:"valid_until"`
	Valid         bool      `json:"valid"`
}

// NewCertificateCode returns ten uppercase hex characters.
func NewCertificateCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
}

type CertificateInput struct {
	OrderID          int64      `json:"order_id" binding:"required,gt=0"`
	Concept          string     `json:"concept" binding:"required,oneof=APTO APTO_CON_RESTRICCIONES NO_APTO APLAZADO"`
	Restrictions     string     `json:"restrictions" binding:"max=2000"`
	Recommendations  string     `json:"recommendations" binding:"max=2000"`
	PhysicianName    string     `json:"physician_name" binding:"required,min=3,max=150,valid_name"`
	PhysicianLicense string     `json:"physician_license" binding:"required,min=3,max=50"`
	ValidUntil       *time.Time `json:"valid_until"`
}

type CertificateFilter struct {
	PageRequest
	CompanyID   *int64 `form:"company_id"`
	CandidateID *int64 `form:"candidate_id"`
	Concept     string `form:"concept"`
	// ExpiringWithinDays lists certificates still valid that expire in the next N days
	ExpiringWithinDays int `form:"expiring_within_days"`
}

type CertificateRepository interface {
	// Create inserts the certificate, completes the order and the candidate in one transaction.
	Create(ctx context.Context, c *Certificate, completeOrder bool) error
	GetByID(ctx context.Context, id int64) (*Certificate, error)
	GetByCode(ctx context.Context, code string) (*Certificate, error)
	GetByOrderID(ctx context.Context, orderID int64) (*Certificate, error)
	List(ctx context.Context, f CertificateFilter) ([]Certificate, int64, error)
	ListExpiring(ctx context.Context, from, to time.Time) ([]Certificate, error)
	SetSignature(ctx context.Context, id int64, key string) error
}

type CertificateUsecase interface {
	Issue(ctx context.Context, in CertificateInput) (*Certificate, error)
	AttachSignature(ctx context.Context, id int64, raw []byte) (*Certificate, error)
	SignatureURL(ctx context.Context, id int64) (string, error)
	Get(ctx context.Context, id int64) (*Certificate, error)
	Verify(ctx context.Context, code string) (*CertificateVerification, error)
	List(ctx context.Context, f CertificateFilter) ([]Certificate, int64, error)
	Export(ctx context.Context, f CertificateFilter, format string) (*ExportFile, error)
	ListExpiring(ctx context.Context, days int) ([]Certificate, error)
}
