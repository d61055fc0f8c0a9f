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
	"go-occupational-backend/pkg/cache"
	"go-occupational-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

const catalogTTL = 10 * time.Minute

var codePattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

type catalogUsecase struct {
	repo     domain.CatalogRepository
	cache    cache.Cache
	validate *validator.Validate
}

func NewCatalogUsecase(repo domain.CatalogRepository, c cache.Cache, validate *validator.Validate) domain.CatalogUsecase {
	return &catalogUsecase{repo: repo, cache: c, validate: validate}
}

func (u *catalogUsecase) invalidate(ctx context.Context) {
	if err := u.cache.DeletePrefix(ctx, "catalog:"); err != nil {
		logger.FromContext(ctx).Warn("catalog cache invalidation failed", "error", err)
	}
}

func (u *catalogUsecase) ListCandidateTypes(ctx context.Context, onlyActive bool) ([]domain.CandidateType, error) {
	key := fmt.Sprintf("catalog:candidate_types:%t", onlyActive)
	types, err := cache.Remember(ctx, u.cache, key, catalogTTL, func(ctx context.Context) ([]domain.CandidateType, error) {
		return u.repo.ListCandidateTypes(ctx, onlyActive)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return types, nil
}

func (u *catalogUsecase) CreateCandidateType(ctx context.Context, in domain.CandidateTypeInput) (*domain.CandidateType, error) {
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	ct := &domain.CandidateType{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Active:      in.Active == nil || *in.Active,
	}
	if err := u.repo.CreateCandidateType(ctx, ct); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("candidate type already exists")
		}
		return nil, apperror.Internal(err)
	}
	u.invalidate(ctx)
	return ct, nil
}

func (u *catalogUsecase) UpdateCandidateType(ctx context.Context, id int64, in domain.CandidateTypeInput) (*domain.CandidateType, error) {
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	ct, err := u.repo.GetCandidateType(ctx, id)
	if err != nil {
		return nil, notFound(err, "candidate type not found")
	}
	ct.Name = strings.TrimSpace(in.Name)
	ct.Description = strings.TrimSpace(in.Description)
	if in.Active != nil {
		ct.Active = *in.Active
	}
	if err := u.repo.UpdateCandidateType(ctx, ct); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("candidate type already exists")
		}
		return nil, apperror.Internal(err)
	}
	u.invalidate(ctx)
	return ct, nil
}

func (u *catalogUsecase) ListDocumentTypes(ctx context.Context, onlyActive bool) ([]domain.DocumentType, error) {
	key := fmt.Sprintf("catalog:document_types:%t", onlyActive)
	types, err := cache.Remember(ctx, u.cache, key, catalogTTL, func(ctx context.Context) ([]domain.DocumentType, error) {
		return u.repo.ListDocumentTypes(ctx, onlyActive)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return types, nil
}

func (u *catalogUsecase) checkDocumentType(in domain.DocumentTypeInput) (string, error) {
	if err := validateInput(u.validate, in); err != nil {
		return "", err
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if !codePattern.MatchString(code) {
		return "", apperror.BadRequest("code may only contain letters, digits and underscores")
	}
	return code, nil
}

func (u *catalogUsecase) CreateDocumentType(ctx context.Context, in domain.DocumentTypeInput) (*domain.DocumentType, error) {
	code, err := u.checkDocumentType(in)
	if err != nil {
		return nil, err
	}
	dt := &domain.DocumentType{
		Code:        code,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Active:      in.Active == nil || *in.Active,
	}
	if err := u.repo.CreateDocumentType(ctx, dt); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("document type code already exists")
		}
		return nil, apperror.Internal(err)
	}
	u.invalidate(ctx)
	return dt, nil
}

func (u *catalogUsecase) UpdateDocumentType(ctx context.Context, id int64, in domain.DocumentTypeInput) (*domain.DocumentType, error) {
	code, err := u.checkDocumentType(in)
	if err != nil {
		return nil, err
	}
	dt, err := u.repo.GetDocumentType(ctx, id)
	if err != nil {
		return nil, notFound(err, "document type not found")
	}
	dt.Code = code
	dt.Name = strings.TrimSpace(in.Name)
	dt.Description = strings.TrimSpace(in.Description)
	if in.Active != nil {
		dt.Active = *in.Active
	}
	if err := u.repo.UpdateDocumentType(ctx, dt); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("document type code already exists")
		}
		return nil, apperror.Internal(err)
	}
	u.invalidate(ctx)
	return dt, nil
}

func (u *catalogUsecase) ListRequirements(ctx context.Context, candidateTypeID int64) ([]domain.DocumentRequirement, error) {
	if _, err := u.repo.GetCandidateType(ctx, candidateTypeID); err != nil {
		return nil, notFound(err, "candidate type not found")
	}
	key := fmt.Sprintf("catalog:requirements:%d", candidateTypeID)
	reqs, err := cache.Remember(ctx, u.cache, key, catalogTTL, func(ctx context.Context) ([]domain.DocumentRequirement, error) {
		return u.repo.ListRequirements(ctx, candidateTypeID)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return reqs, nil
}

// CreateRequirement maps a document type to a candidate type. Both must exist.
func (u *catalogUsecase) CreateRequirement(ctx context.Context, in domain.RequirementInput) (*domain.DocumentRequirement, error) {
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetCandidateType(ctx, in.CandidateTypeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.BadRequest("invalid candidate type")
		}
		return nil, apperror.Internal(err)
	}
	dt, err := u.repo.GetDocumentType(ctx, in.DocumentTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.BadRequest("invalid document type")
		}
		return nil, apperror.Internal(err)
	}

	if _, err := u.repo.FindRequirement(ctx, in.CandidateTypeID, in.DocumentTypeID); err == nil {
		return nil, apperror.Conflict("document type is already mapped to this candidate type")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	req := &domain.DocumentRequirement{
		CandidateTypeID:  in.CandidateTypeID,
		DocumentTypeID:   in.DocumentTypeID,
		DocumentTypeCode: dt.Code,
		DocumentTypeName: dt.Name,
		Mandatory:        in.Mandatory == nil || *in.Mandatory,
	}
	if err := u.repo.CreateRequirement(ctx, req); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			return nil, apperror.Conflict("document type is already mapped to this candidate type")
		case errors.Is(err, domain.ErrInUse):
			return nil, apperror.BadRequest("invalid candidate type")
		}
		return nil, apperror.Internal(err)
	}
	u.invalidate(ctx)
	return req, nil
}

func (u *catalogUsecase) DeleteRequirement(ctx context.Context, id int64) error {
	if err := u.repo.DeleteRequirement(ctx, id); err != nil {
		return notFound(err, "requirement not found")
	}
	u.invalidate(ctx)
	return nil
}
