package usecase

import (
	"context"
	"errors"
	"strings"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type medicalServiceUsecase struct {
	repo     domain.MedicalServiceRepository
	validate *validator.Validate
}

func NewMedicalServiceUsecase(repo domain.MedicalServiceRepository, validate *validator.Validate) domain.MedicalServiceUsecase {
	return &medicalServiceUsecase{repo: repo, validate: validate}
}

func (u *medicalServiceUsecase) check(in domain.MedicalServiceInput) (string, error) {
	if err := validateInput(u.validate, in); err != nil {
		return "", err
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if !codePattern.MatchString(code) {
		return "", apperror.BadRequest("code may only contain letters, digits and underscores")
	}
	return code, nil
}

func (u *medicalServiceUsecase) Create(ctx context.Context, in domain.MedicalServiceInput) (*domain.MedicalService, error) {
	code, err := u.check(in)
	if err != nil {
		return nil, err
	}
	s := &domain.MedicalService{
		Code:     code,
		Name:     strings.TrimSpace(in.Name),
		Category: in.Category,
		Price:    in.Price,
		Active:   in.Active == nil || *in.Active,
	}
	if err := u.repo.Create(ctx, s); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("a service with this code already exists")
		}
		return nil, apperror.Internal(err)
	}
	return s, nil
}

func (u *medicalServiceUsecase) Get(ctx context.Context, id int64) (*domain.MedicalService, error) {
	s, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "service not found")
	}
	return s, nil
}

func (u *medicalServiceUsecase) List(ctx context.Context, f domain.MedicalServiceFilter) ([]domain.MedicalService, int64, error) {
	f.PageRequest = f.PageRequest.Normalize()
	f.Search = strings.TrimSpace(f.Search)
	items, total, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

func (u *medicalServiceUsecase) Update(ctx context.Context, id int64, in domain.MedicalServiceInput) (*domain.MedicalService, error) {
	code, err := u.check(in)
	if err != nil {
		return nil, err
	}
	s, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "service not found")
	}
	s.Code = code
	s.Name = strings.TrimSpace(in.Name)
	s.Category = in.Category
	s.Price = in.Price
	if in.Active != nil {
		s.Active = *in.Active
	}
	if err := u.repo.Update(ctx, s); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("a service with this code already exists")
		}
		return nil, notFound(err, "service not found")
	}
	return s, nil
}

func (u *medicalServiceUsecase) SetActive(ctx context.Context, id int64, active bool) (*domain.MedicalService, error) {
	s, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "service not found")
	}
	if err := u.repo.SetActive(ctx, id, active); err != nil {
		return nil, notFound(err, "service not found")
	}
	s.Active = active
	return s, nil
}
