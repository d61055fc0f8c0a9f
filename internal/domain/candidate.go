package domain

import (
	"context"
	"time"
)

// Document kinds accepted for candidates.
const (
	DocumentCC  = "CC"  // cédula de ciudadanía
	DocumentCE  = "CE"  // cédula de extranjería
	DocumentTI  = "TI"  // tarjeta de identidad
	DocumentPA  = "PA"  // pasaporte
	DocumentPPT = "PPT" // permiso por protección temporal
)

type CandidateStatus string

const (
	CandidateRegistered CandidateStatus = "REGISTERED"
	CandidateInProcess  CandidateStatus = "IN_PROCESS"
	CandidateCompleted  CandidateStatus = "COMPLETED"
	CandidateInactive   CandidateStatus = "INACTIVE"
)

type Candidate struct {
	ID              int64           `json:"id"`
	CompanyID       int64           `json:"company_id"`
	CandidateTypeID int64           `json:"candidate_type_id"`
	DocumentKind    string          `json:"document_kind"`
	DocumentNumber  string          `json:"document_number"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	BirthDate       *time.Time      `json:"birth_date"`
	Gender          string          `json:"gender"`
	CountryID       *int64          `json:"country_id"`
	DepartmentID    *int64          `json:"department_id"`
	CityID          *int64          `json:"city_id"`
	Address         string          `json:"address"`
	Position        string          `json:"position"`
	Status          CandidateStatus `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (c *Candidate) FullName() string {
	return c.FirstName + " " + c.LastName
}

func (c *Candidate) Location() LocationSelection {
	return LocationSelection{CountryID: c.CountryID, DepartmentID: c.DepartmentID, CityID: c.CityID}
}

type CandidateInput struct {
	CompanyID       int64   `json:"company_id"`
	CandidateTypeID int64   `json:"candidate_type_id" binding:"required,gt=0"`
	DocumentKind    string  `json:"document_kind" binding:"required,oneof=CC CE TI PA PPT"`
	DocumentNumber  string  `json:"document_number" binding:"required,document_number"`
	FirstName       string  `json:"first_name" binding:"required,min=2,max=100,valid_name,no_emoji"`
	LastName        string  `json:"last_name" binding:"required,min=2,max=100,valid_name,no_emoji"`
	Email           string  `json:"email" binding:"omitempty,email,max=150"`
	Phone           string  `json:"phone" binding:"omitempty,valid_phone"`
	BirthDate       string  `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`
	Gender          string  `json:"gender" binding:"omitempty,oneof=M F O"`
	CountryID       *int64  `json:"country_id"`
	DepartmentID    *int64  `json:"department_id"`
	CityID          *int64  `json:"city_id"`
	Address         string  `json:"address" binding:"max=200,no_emoji"`
	Position        string  `json:"position" binding:"max=120,no_emoji"`
	Status          *string `json:"status" binding:"omitempty,oneof=REGISTERED IN_PROCESS COMPLETED INACTIVE"`
}

func (in CandidateInput) Location() LocationSelection {
	return LocationSelection{CountryID: in.CountryID, DepartmentID: in.DepartmentID, CityID: in.CityID}
}

type CandidateFilter struct {
	PageRequest
	CompanyID       *int64 `form:"company_id"`
	CandidateTypeID *int64 `form:"candidate_type_id"`
	Status          string `form:"status"`
	Search          string `form:"search"`
}

type CandidateRepository interface {
	Create(ctx context.Context, c *Candidate) error
	GetByID(ctx context.Context, id int64) (*Candidate, error)
	GetByDocument(ctx context.Context, kind, number string) (*Candidate, error)
	List(ctx context.Context, f CandidateFilter) ([]Candidate, int64, error)
	Update(ctx context.Context, c *Candidate) error
	UpdateStatus(ctx context.Context, id int64, status CandidateStatus) error
	Delete(ctx context.Context, id int64) error
	// CountOpenOrders counts orders that are neither completed nor cancelled.
	CountOpenOrders(ctx context.Context, id int64) (int64, error)
}

type CandidateUsecase interface {
	Register(ctx context.Context, in CandidateInput) (*Candidate, error)
	Get(ctx context.Context, id int64) (*Candidate, error)
	List(ctx context.Context, f CandidateFilter) ([]Candidate, int64, error)
	Update(ctx context.Context, id int64, in CandidateInput) (*Candidate, error)
	Delete(ctx context.Context, id int64) error
}
