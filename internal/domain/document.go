package domain

import (
	"context"
	"time"
)

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentApproved DocumentStatus = "APPROVED"
	DocumentRejected DocumentStatus = "REJECTED"
)

type CandidateDocument struct {
	ID               int64          `json:"id"`
	CandidateID      int64          `json:"candidate_id"`
	DocumentTypeID   int64          `json:"document_type_id"`
	DocumentTypeName string         `json:"document_type_name,omitempty"`
	FileKey          string         `json:"-"`
	FileName         string         `json:"file_name"`
	ContentType      string         `json:"content_type"`
	Size             int64          `json:"size"`
	Status           DocumentStatus `json:"status"`
	Notes            string         `json:"notes"`
	ReviewedBy       *string        `json:"reviewed_by"`
	ReviewedAt       *time.Time     `json:"reviewed_at"`
	CreatedAt        time.Time      `json:"created_at"`
}

// UploadInput carries an already read multipart file.
type UploadInput struct {
	CandidateID    int64
	DocumentTypeID int64
	FileName       string
	Data           []byte
}

type ReviewInput struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVE REJECT"`
	Notes    string `json:"notes" binding:"max=1000,no_emoji"`
}

// ChecklistItem is one requirement of the candidate's type and its latest document.
type ChecklistItem struct {
	DocumentTypeID   int64              `json:"document_type_id"`
	DocumentTypeCode string             `json:"document_type_code"`
	DocumentTypeName string             `json:"document_type_name"`
	Mandatory        bool               `json:"mandatory"`
	Document         *CandidateDocument `json:"document"`
}

type Checklist struct {
	CandidateID int64           `json:"candidate_id"`
	Items       []ChecklistItem `json:"items"`
	// Complete is true when every mandatory requirement has an approved document
	Complete bool `json:"complete"`
}

type DocumentRepository interface {
	Create(ctx context.Context, d *CandidateDocument) error
	GetByID(ctx context.Context, id int64) (*CandidateDocument, error)
	ListByCandidate(ctx context.Context, candidateID int64) ([]CandidateDocument, error)
	// LatestByType returns the most recent upload of a type, or ErrNotFound.
	LatestByType(ctx context.Context, candidateID, documentTypeID int64) (*CandidateDocument, error)
	Review(ctx context.Context, d *CandidateDocument) error
	Delete(ctx context.Context, id int64) error
}

type DocumentUsecase interface {
	Upload(ctx context.Context, in UploadInput) (*CandidateDocument, error)
	List(ctx context.Context, candidateID int64) ([]CandidateDocument, error)
	Review(ctx context.Context, id int64, in ReviewInput) (*CandidateDocument, error)
	Checklist(ctx context.Context, candidateID int64) (*Checklist, error)
	DownloadURL(ctx context.Context, id int64) (string, error)
}
