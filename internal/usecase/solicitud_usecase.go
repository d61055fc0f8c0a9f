package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type solicitudUsecase struct {
	repo          domain.SolicitudRepository
	companyRepo   domain.CompanyRepository
	candidateRepo domain.CandidateRepository
	validate      *validator.Validate
}

func NewSolicitudUsecase(
	repo domain.SolicitudRepository,
	companyRepo domain.CompanyRepository,
	candidateRepo domain.CandidateRepository,
	validate *validator.Validate,
) domain.SolicitudUsecase {
	return &solicitudUsecase{repo: repo, companyRepo: companyRepo, candidateRepo: candidateRepo, validate: validate}
}

func (u *solicitudUsecase) Create(ctx context.Context, in domain.SolicitudInput) (*domain.Solicitud, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	if in.CompanyID, err = resolveCompany(v, in.CompanyID); err != nil {
		return nil, err
	}
	company, err := u.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.BadRequest("invalid company")
		}
		return nil, apperror.Internal(err)
	}
	if in.CandidateID != nil {
		c, err := u.candidateRepo.GetByID(ctx, *in.CandidateID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, apperror.BadRequest("invalid candidate")
			}
			return nil, apperror.Internal(err)
		}
		if c.CompanyID != company.ID {
			return nil, apperror.BadRequest("candidate does not belong to the company")
		}
	}

	s := &domain.Solicitud{
		ID:          uuid.NewString(),
		CompanyID:   company.ID,
		CandidateID: in.CandidateID,
		Kind:        domain.SolicitudKind(in.Kind),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      domain.SolicitudPending,
		CreatedBy:   v.UserID,
		CompanyName: company.DisplayName(),
	}
	if err := u.repo.Create(ctx, s); err != nil {
		return nil, apperror.Internal(err)
	}
	return s, nil
}

func (u *solicitudUsecase) load(ctx context.Context, id string) (*domain.Solicitud, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound("solicitud not found")
	}
	s, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "solicitud not found")
	}
	if requireCompanyAccess(v, s.CompanyID) != nil {
		return nil, apperror.NotFound("solicitud not found")
	}
	return s, nil
}

func (u *solicitudUsecase) withHistory(ctx context.Context, s *domain.Solicitud) (*domain.Solicitud, error) {
	history, err := u.repo.History(ctx, s.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	s.History = history
	return s, nil
}

func (u *solicitudUsecase) Get(ctx context.Context, id string) (*domain.Solicitud, error) {
	s, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.withHistory(ctx, s)
}

func (u *solicitudUsecase) List(ctx context.Context, f domain.SolicitudFilter) ([]domain.Solicitud, int64, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, 0, err
	}
	if f.CompanyID, err = scopeCompany(v, f.CompanyID); err != nil {
		return nil, 0, err
	}
	f.PageRequest = f.PageRequest.Normalize()
	items, total, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

// Transition moves the solicitud along its state machine and records the event.
func (u *solicitudUsecase) Transition(ctx context.Context, id string, in domain.TransitionInput) (*domain.Solicitud, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	s, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next := domain.SolicitudStatus(in.Status)
	if !s.Status.CanTransitionTo(next) {
		return nil, apperror.Conflict(fmt.Sprintf("solicitud cannot move from %s to %s", s.Status, next))
	}

	ev := &domain.SolicitudEvent{
		SolicitudID: s.ID,
		From:        s.Status,
		To:          next,
		Actor:       v.UserID,
		Note:        strings.TrimSpace(in.Note),
	}
	if err := u.repo.Transition(ctx, ev); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Conflict("solicitud was changed by someone else, reload and try again")
		}
		return nil, apperror.Internal(err)
	}
	logger.FromContext(ctx).Info("solicitud transitioned", "solicitud_id", s.ID, "from", ev.From, "to", ev.To)

	s.Status = next
	return u.withHistory(ctx, s)
}

func (u *solicitudUsecase) Assign(ctx context.Context, id string, in domain.AssignInput) (*domain.Solicitud, error) {
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	s, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status == domain.SolicitudClosed {
		return nil, apperror.Conflict("closed solicitudes cannot be reassigned")
	}
	if err := u.repo.Assign(ctx, s.ID, in.UserID); err != nil {
		if errors.Is(err, domain.ErrInUse) {
			return nil, apperror.BadRequest("invalid user")
		}
		return nil, notFound(err, "solicitud not found")
	}
	s.AssignedTo = in.UserID
	return s, nil
}
