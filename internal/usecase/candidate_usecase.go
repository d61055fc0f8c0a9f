package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type candidateUsecase struct {
	candidateRepo domain.CandidateRepository
	companyRepo   domain.CompanyRepository
	catalogRepo   domain.CatalogRepository
	locations     domain.LocationUsecase
	validate      *validator.Validate
}

func NewCandidateUsecase(
	candidateRepo domain.CandidateRepository,
	companyRepo domain.CompanyRepository,
	catalogRepo domain.CatalogRepository,
	locations domain.LocationUsecase,
	validate *validator.Validate,
) domain.CandidateUsecase {
	return &candidateUsecase{
		candidateRepo: candidateRepo,
		companyRepo:   companyRepo,
		catalogRepo:   catalogRepo,
		locations:     locations,
		validate:      validate,
	}
}

// resolveCompany picks the company a write applies to. Non-global viewers always write to their selected company.
func resolveCompany(v *domain.Viewer, requested int64) (int64, error) {
	if !v.Global {
		if v.CompanyID == nil {
			return 0, apperror.Forbidden("Select a company first")
		}
		return *v.CompanyID, nil
	}
	if requested <= 0 {
		return 0, apperror.BadRequest("company_id is required")
	}
	return requested, nil
}

func (u *candidateUsecase) checkReferences(ctx context.Context, in domain.CandidateInput, currentTypeID int64) error {
	company, err := u.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.BadRequest("invalid company")
		}
		return apperror.Internal(err)
	}
	if company.Kind != domain.CompanyEmpresa {
		return apperror.BadRequest("candidates can only be registered for an EMPRESA")
	}
	if !company.Active {
		return apperror.Unprocessable("company is inactive")
	}

	ct, err := u.catalogRepo.GetCandidateType(ctx, in.CandidateTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.BadRequest("invalid candidate type")
		}
		return apperror.Internal(err)
	}
	// an existing candidate may keep a type that was deactivated after registration
	if !ct.Active && ct.ID != currentTypeID {
		return apperror.BadRequest("candidate type is inactive")
	}
	return u.locations.ValidateSelection(ctx, in.Location())
}

func applyCandidateInput(c *domain.Candidate, in domain.CandidateInput) error {
	c.CompanyID = in.CompanyID
	c.CandidateTypeID = in.CandidateTypeID
	c.DocumentKind = in.DocumentKind
	c.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = strings.TrimSpace(in.Phone)
	c.Gender = in.Gender
	c.CountryID, c.DepartmentID, c.CityID = in.CountryID, in.DepartmentID, in.CityID
	c.Address = strings.TrimSpace(in.Address)
	c.Position = strings.TrimSpace(in.Position)
	c.BirthDate = nil
	if in.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", in.BirthDate)
		if err != nil {
			return apperror.BadRequest("birth_date must be YYYY-MM-DD")
		}
		if bd.After(time.Now()) {
			return apperror.BadRequest("birth_date cannot be in the future")
		}
		c.BirthDate = &bd
	}
	return nil
}

func (u *candidateUsecase) Register(ctx context.Context, in domain.CandidateInput) (*domain.Candidate, error) {
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
	if err := u.checkReferences(ctx, in, 0); err != nil {
		return nil, err
	}

	if _, err := u.candidateRepo.GetByDocument(ctx, in.DocumentKind, strings.TrimSpace(in.DocumentNumber)); err == nil {
		return nil, apperror.Conflict("a candidate with this document is already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	c := &domain.Candidate{Status: domain.CandidateRegistered}
	if err := applyCandidateInput(c, in); err != nil {
		return nil, err
	}
	if err := u.candidateRepo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("a candidate with this document is already registered")
		}
		return nil, apperror.Internal(err)
	}
	return c, nil
}

// load fetches a candidate the viewer may see.
func (u *candidateUsecase) load(ctx context.Context, id int64) (*domain.Candidate, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	c, err := u.candidateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "candidate not found")
	}
	if err := requireCompanyAccess(v, c.CompanyID); err != nil {
		// do not leak existence across companies
		return nil, apperror.NotFound("candidate not found")
	}
	return c, nil
}

func (u *candidateUsecase) Get(ctx context.Context, id int64) (*domain.Candidate, error) {
	return u.load(ctx, id)
}

func (u *candidateUsecase) List(ctx context.Context, f domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, 0, err
	}
	if f.CompanyID, err = scopeCompany(v, f.CompanyID); err != nil {
		return nil, 0, err
	}
	f.PageRequest = f.PageRequest.Normalize()
	f.Search = strings.TrimSpace(f.Search)
	items, total, err := u.candidateRepo.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

func (u *candidateUsecase) Update(ctx context.Context, id int64, in domain.CandidateInput) (*domain.Candidate, error) {
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	// candidates do not move between companies
	in.CompanyID = c.CompanyID
	if err := u.checkReferences(ctx, in, c.CandidateTypeID); err != nil {
		return nil, err
	}

	number := strings.TrimSpace(in.DocumentNumber)
	if in.DocumentKind != c.DocumentKind || number != c.DocumentNumber {
		if other, err := u.candidateRepo.GetByDocument(ctx, in.DocumentKind, number); err == nil && other.ID != c.ID {
			return nil, apperror.Conflict("a candidate with this document is already registered")
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Internal(err)
		}
	}

	if err := applyCandidateInput(c, in); err != nil {
		return nil, err
	}
	if in.Status != nil {
		c.Status = domain.CandidateStatus(*in.Status)
	}
	if err := u.candidateRepo.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("a candidate with this document is already registered")
		}
		return nil, notFound(err, "candidate not found")
	}
	return c, nil
}

// Delete refuses while the candidate still has open orders.
func (u *candidateUsecase) Delete(ctx context.Context, id int64) error {
	c, err := u.load(ctx, id)
	if err != nil {
		return err
	}
	open, err := u.candidateRepo.CountOpenOrders(ctx, c.ID)
	if err != nil {
		return apperror.Internal(err)
	}
	if open > 0 {
		return apperror.Conflict("candidate has open service orders")
	}
	if err := u.candidateRepo.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, domain.ErrInUse) {
			return apperror.Conflict("candidate is referenced by other records")
		}
		return notFound(err, "candidate not found")
	}
	return nil
}
