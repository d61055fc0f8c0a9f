package domain

import (
	"context"
	"time"
)

type CompanyKind string

const (
	// CompanyEmpresa is a client company that sends workers for evaluation
	CompanyEmpresa CompanyKind = "EMPRESA"
	// CompanyPrestador is a health provider that performs the services
	CompanyPrestador CompanyKind = "PRESTADOR"
)

type Company struct {
	ID                int64       `json:"id"`
	Kind              CompanyKind `json:"kind"`
	NIT               string      `json:"nit"`
	VerificationDigit int         `json:"verification_digit"`
	LegalName         string      `json:"legal_name"`
	TradeName         string      `json:"trade_name"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone"`
	Address           string      `json:"address"`
	CountryID         *int64      `json:"country_id"`
	DepartmentID      *int64      `json:"department_id"`
	CityID            *int64      `json:"city_id"`
	ContactName       string      `json:"contact_name"`
	Active            bool        `json:"active"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// DisplayName prefers the trade name.
func (c *Company) DisplayName() string {
	if c.TradeName != "" {
		return c.TradeName
	}
	return c.LegalName
}

type CompanyInput struct {
	Kind              string `json:"kind" binding:"required,oneof=EMPRESA PRESTADOR"`
	NIT               string `json:"nit" binding:"required,nit"`
	VerificationDigit *int   `json:"verification_digit" binding:"omitempty,min=0,max=9"`
	LegalName         string `json:"legal_name" binding:"required,min=2,max=200,valid_name,no_emoji"`
	TradeName         string `json:"trade_name" binding:"omitempty,max=200,valid_name,no_emoji"`
	Email             string `json:"email" binding:"omitempty,email,max=150"`
	Phone             string `json:"phone" binding:"omitempty,valid_phone"`
	Address           string `json:"address" binding:"max=200,no_emoji"`
	CountryID         *int64 `json:"country_id"`
	DepartmentID      *int64 `json:"department_id"`
	CityID            *int64 `json:"city_id"`
	ContactName       string `json:"contact_name" binding:"omitempty,max=150,valid_name"`
}

func (in CompanyInput) Location() LocationSelection {
	return LocationSelection{CountryID: in.CountryID, DepartmentID: in.DepartmentID, CityID: in.CityID}
}

type CompanyFilter struct {
	PageRequest
	Kind   string `form:"kind"`
	Active *bool  `form:"active"`
	Search string `form:"search"`
	// IDs restricts the result to these companies when non-nil
	IDs []int64 `form:"-"`
}

type CompanyRepository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id int64) (*Company, error)
	GetByNIT(ctx context.Context, nit string) (*Company, error)
	List(ctx context.Context, f CompanyFilter) ([]Company, int64, error)
	Update(ctx context.Context, c *Company) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	// CountReferences counts candidates and orders pointing at the company.
	CountReferences(ctx context.Context, id int64) (int64, error)
}

type CompanyUsecase interface {
	Create(ctx context.Context, in CompanyInput) (*Company, error)
	Get(ctx context.Context, id int64) (*Company, error)
	List(ctx context.Context, f CompanyFilter) ([]Company, int64, error)
	Update(ctx context.Context, id int64, in CompanyInput) (*Company, error)
	SetActive(ctx context.Context, id int64, active bool) (*Company, error)
	Delete(ctx context.Context, id int64) error
}
