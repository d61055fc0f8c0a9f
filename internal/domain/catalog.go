package domain

import (
	"context"
	"time"
)

type CandidateType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type DocumentType struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentRequirement maps a document type to the candidate type that must provide it.
type DocumentRequirement struct {
	ID               int64     `json:"id"`
	CandidateTypeID  int64     `json:"candidate_type_id"`
	DocumentTypeID   int64     `json:"document_type_id"`
	DocumentTypeCode string    `json:"document_type_code,omitempty"`
	DocumentTypeName string    `json:"document_type_name,omitempty"`
	Mandatory        bool      `json:"mandatory"`
	CreatedAt        time.Time `json:"created_at"`
}

type CandidateTypeInput struct {
	Name        string `json:"name" binding:"required,min=2,max=100,no_emoji"`
	Description string `json:"description" binding:"max=500"`
	Active      *bool  `json:"active"`
}

type DocumentTypeInput struct {
	Code        string `json:"code" binding:"required,min=2,max=30"`
	Name        string `json:"name" binding:"required,min=2,max=100,no_emoji"`
	Description string `json:"description" binding:"max=500"`
	Active      *bool  `json:"active"`
}

type RequirementInput struct {
	CandidateTypeID int64 `json:"candidate_type_id" binding:"required,gt=0"`
	DocumentTypeID  int64 `json:"document_type_id" binding:"required,gt=0"`
	Mandatory       *bool `json:"mandatory"`
}

type CatalogRepository interface {
	ListCandidateTypes(ctx context.Context, onlyActive bool) ([]CandidateType, error)
	GetCandidateType(ctx context.Context, id int64) (*CandidateType, error)
	CreateCandidateType(ctx context.Context, ct *CandidateType) error
	UpdateCandidateType(ctx context.Context, ct *CandidateType) error

	ListDocumentTypes(ctx context.Context, onlyActive bool) ([]DocumentType, error)
	GetDocumentType(ctx context.Context, id int64) (*DocumentType, error)
	CreateDocumentType(ctx context.Context, dt *DocumentType) error
	UpdateDocumentType(ctx context.Context, dt *DocumentType) error

	ListRequirements(ctx context.Context, candidateTypeID int64) ([]DocumentRequirement, error)
	GetRequirement(ctx context.Context, id int64) (*DocumentRequirement, error)
	FindRequirement(ctx context.Context, candidateTypeID, documentTypeID int64) (*DocumentRequirement, error)
	CreateRequirement(ctx context.Context, req *DocumentRequirement) error
	DeleteRequirement(ctx context.Context, id int64) error
}

type CatalogUsecase interface {
	ListCandidateTypes(ctx context.Context, onlyActive bool) ([]CandidateType, error)
	CreateCandidateType(ctx context.Context, in CandidateTypeInput) (*CandidateType, error)
	UpdateCandidateType(ctx context.Context, id int64, in CandidateTypeInput) (*CandidateType, error)

	ListDocumentTypes(ctx context.Context, onlyActive bool) ([]DocumentType, error)
	CreateDocumentType(ctx context.Context, in DocumentTypeInput) (*DocumentType, error)
	UpdateDocumentType(ctx context.Context, id int64, in DocumentTypeInput) (*DocumentType, error)

	ListRequirements(ctx context.Context, candidateTypeID int64) ([]DocumentRequirement, error)
	CreateRequirement(ctx context.Context, in RequirementInput) (*DocumentRequirement, error)
	DeleteRequirement(ctx context.Context, id int64) error
}
