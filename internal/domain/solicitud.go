package domain

import (
	"context"
	"time"
)

type SolicitudKind string

const (
	SolicitudOrder                 SolicitudKind = "ORDER"
	SolicitudDocumentReview        SolicitudKind = "DOCUMENT_REVIEW"
	SolicitudCertificateCorrection SolicitudKind = "CERTIFICATE_CORRECTION"
	SolicitudOther                 SolicitudKind = "OTHER"
)

type SolicitudStatus string

const (
	SolicitudPending  SolicitudStatus = "PENDING"
	SolicitudInReview SolicitudStatus = "IN_REVIEW"
	SolicitudApproved SolicitudStatus = "APPROVED"
	SolicitudRejected SolicitudStatus = "REJECTED"
	SolicitudClosed   SolicitudStatus = "CLOSED"
)

var solicitudTransitions = map[SolicitudStatus][]SolicitudStatus{
	SolicitudPending:  {SolicitudInReview, SolicitudRejected, SolicitudClosed},
	SolicitudInReview: {SolicitudApproved, SolicitudRejected, SolicitudPending},
	SolicitudApproved: {SolicitudClosed},
	SolicitudRejected: {SolicitudClosed, SolicitudPending},
}

func (s SolicitudStatus) CanTransitionTo(to SolicitudStatus) bool {
	for _, next := range solicitudTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// SolicitudEvent records one status change.
type SolicitudEvent struct {
	ID          int64           `json:"id"`
	SolicitudID string          `json:"solicitud_id"`
	From        SolicitudStatus `json:"from"`
	To          SolicitudStatus `json:"to"`
	Actor       string          `json:"actor"`
	Note        string          `json:"note"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Solicitud struct {
	ID          string           `json:"id"`
	CompanyID   int64            `json:"company_id"`
	CandidateID *int64           `json:"candidate_id"`
	Kind        SolicitudKind    `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      SolicitudStatus  `json:"status"`
	AssignedTo  *string          `json:"assigned_to"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompanyName string           `json:"company_name,omitempty"`
	History     []SolicitudEvent `json:"history,omitempty"`
}

type SolicitudInput struct {
	CompanyID   int64  `json:"company_id"`
	CandidateID *int64 `json:"candidate_id"`
	Kind        string `json:"kind" binding:"required,oneof=ORDER DOCUMENT_REVIEW CERTIFICATE_CORRECTION OTHER"`
	Title       string `json:"title" binding:"required,min=3,max=200,no_emoji"`
	Description string `json:"description" binding:"max=4000"`
}

type TransitionInput struct {
	Status string `json:"status" binding:"required,oneof=PENDING IN_REVIEW APPROVED REJECTED CLOSED"`
	Note   string `json:"note" binding:"max=1000"`
}

type AssignInput struct {
	UserID *string `json:"user_id" binding:"omitempty,uuid"`
}

type SolicitudFilter struct {
	PageRequest
	CompanyID  *int64  `form:"company_id"`
	Status     string  `form:"status"`
	Kind       string  `form:"kind"`
	AssignedTo *string `form:"assigned_to"`
}

type SolicitudRepository interface {
	Create(ctx context.Context, s *Solicitud) error
	GetByID(ctx context.Context, id string) (*Solicitud, error)
	History(ctx context.Context, id string) ([]SolicitudEvent, error)
	List(ctx context.Context, f SolicitudFilter) ([]Solicitud, int64, error)
	// Transition updates the status and appends the event atomically.
	// It fails with ErrNotFound when the stored status no longer equals ev.From.
	Transition(ctx context.Context, ev *SolicitudEvent) error
	Assign(ctx context.Context, id string, userID *string) error
	ListStale(ctx context.Context, olderThan time.Time) ([]Solicitud, error)
}

type SolicitudUsecase interface {
	Create(ctx context.Context, in SolicitudInput) (*Solicitud, error)
	Get(ctx context.Context, id string) (*Solicitud, error)
	List(ctx context.Context, f SolicitudFilter) ([]Solicitud, int64, error)
	Transition(ctx context.Context, id string, in TransitionInput) (*Solicitud, error)
	Assign(ctx context.Context, id string, in AssignInput) (*Solicitud, error)
}
