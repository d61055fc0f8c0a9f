package usecase

import (
	"context"
	"errors"
	"strings"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/audit"
	"go-occupational-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type companyUsecase struct {
	repo      domain.CompanyRepository
	locations domain.LocationUsecase
	auditor   Auditor
	validate  *validator.Validate
}

func NewCompanyUsecase(repo domain.CompanyRepository, locations domain.LocationUsecase, auditor Auditor, validate *validator.Validate) domain.CompanyUsecase {
	return &companyUsecase{repo: repo, locations: locations, auditor: auditor, validate: validate}
}

// normalizeNIT returns the bare NIT number and its DIAN verification digit.
// A digit given inline ("900373115-3") or in verification_digit must match the computed one.
func normalizeNIT(in domain.CompanyInput) (string, int, error) {
	number, inline, hasInline, err := validation.SplitNIT(in.NIT)
	if err != nil {
		return "", 0, apperror.BadRequest("nit must contain between 6 and 15 digits")
	}
	digit, err := validation.NITCheckDigit(number)
	if err != nil {
		return "", 0, apperror.BadRequest("nit must contain between 6 and 15 digits")
	}
	if hasInline && inline != digit {
		return "", 0, apperror.BadRequest("nit verification digit does not match")
	}
	if in.VerificationDigit != nil && *in.VerificationDigit != digit {
		return "", 0, apperror.BadRequest("nit verification digit does not match")
	}
	return number, digit, nil
}

func applyCompanyInput(c *domain.Company, in domain.CompanyInput, nit string, digit int) {
	c.Kind = domain.CompanyKind(in.Kind)
	c.NIT = nit
	c.VerificationDigit = digit
	c.LegalName = strings.TrimSpace(in.LegalName)
	c.TradeName = strings.TrimSpace(in.TradeName)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = strings.TrimSpace(in.Phone)
	c.Address = strings.TrimSpace(in.Address)
	c.CountryID, c.DepartmentID, c.CityID = in.CountryID, in.DepartmentID, in.CityID
	c.ContactName = strings.TrimSpace(in.ContactName)
}

func (u *companyUsecase) Create(ctx context.Context, in domain.CompanyInput) (*domain.Company, error) {
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	nit, digit, err := normalizeNIT(in)
	if err != nil {
		return nil, err
	}
	if err := u.locations.ValidateSelection(ctx, in.Location()); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetByNIT(ctx, nit); err == nil {
		return nil, apperror.Conflict("a company with this NIT already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	c := &domain.Company{Active: true}
	applyCompanyInput(c, in, nit, digit)
	if err := u.repo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("a company with this NIT already exists")
		}
		return nil, apperror.Internal(err)
	}
	return c, nil
}

func (u *companyUsecase) load(ctx context.Context, id int64) (*domain.Company, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	if !v.BelongsTo(id) {
		return nil, apperror.NotFound("company not found")
	}
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "company not found")
	}
	return c, nil
}

func (u *companyUsecase) Get(ctx context.Context, id int64) (*domain.Company, error) {
	return u.load(ctx, id)
}

// List shows every company to global viewers and only their memberships to the rest.
func (u *companyUsecase) List(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, int64, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, 0, err
	}
	f.IDs = nil
	if !v.Global {
		f.IDs = append([]int64{}, v.Companies...)
		if len(f.IDs) == 0 {
			return []domain.Company{}, 0, nil
		}
	}
	f.PageRequest = f.PageRequest.Normalize()
	f.Search = strings.TrimSpace(f.Search)
	items, total, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

func (u *companyUsecase) Update(ctx context.Context, id int64, in domain.CompanyInput) (*domain.Company, error) {
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	nit, digit, err := normalizeNIT(in)
	if err != nil {
		return nil, err
	}
	if err := u.locations.ValidateSelection(ctx, in.Location()); err != nil {
		return nil, err
	}
	if nit != c.NIT {
		if other, err := u.repo.GetByNIT(ctx, nit); err == nil && other.ID != c.ID {
			return nil, apperror.Conflict("a company with this NIT already exists")
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Internal(err)
		}
	}
	applyCompanyInput(c, in, nit, digit)
	if err := u.repo.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("a company with this NIT already exists")
		}
		return nil, notFound(err, "company not found")
	}
	return c, nil
}

func (u *companyUsecase) SetActive(ctx context.Context, id int64, active bool) (*domain.Company, error) {
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.repo.SetActive(ctx, id, active); err != nil {
		return nil, notFound(err, "company not found")
	}
	c.Active = active
	return c, nil
}

// Delete only removes inactive companies that nothing references.
func (u *companyUsecase) Delete(ctx context.Context, id int64) error {
	c, err := u.load(ctx, id)
	if err != nil {
		return err
	}
	if c.Active {
		return apperror.Conflict("company cannot be deleted while active")
	}
	refs, err := u.repo.CountReferences(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if refs > 0 {
		return apperror.Conflict("company has candidates or orders and cannot be deleted")
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrInUse) {
			return apperror.Conflict("company has candidates or orders and cannot be deleted")
		}
		return notFound(err, "company not found")
	}
	recordAudit(ctx, u.auditor, audit.Event{
		Action:  audit.ActionCompanyDeleted,
		Target:  c.NIT,
		Details: map[string]interface{}{"company_id": c.ID, "legal_name": c.LegalName},
	})
	return nil
}
