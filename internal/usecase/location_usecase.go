package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/cache"
)

const locationTTL = time.Hour

type locationUsecase struct {
	repo  domain.LocationRepository
	cache cache.Cache
}

func NewLocationUsecase(repo domain.LocationRepository, c cache.Cache) domain.LocationUsecase {
	return &locationUsecase{repo: repo, cache: c}
}

func (u *locationUsecase) ListCountries(ctx context.Context) ([]domain.Country, error) {
	countries, err := cache.Remember(ctx, u.cache, "locations:countries", locationTTL, u.repo.ListCountries)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return countries, nil
}

func (u *locationUsecase) ListDepartments(ctx context.Context, countryID int64) ([]domain.Department, error) {
	if countryID <= 0 {
		return nil, apperror.BadRequest("country_id is required")
	}
	key := fmt.Sprintf("locations:departments:%d", countryID)
	depts, err := cache.Remember(ctx, u.cache, key, locationTTL, func(ctx context.Context) ([]domain.Department, error) {
		return u.repo.ListDepartments(ctx, countryID)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return depts, nil
}

func (u *locationUsecase) ListCities(ctx context.Context, departmentID int64) ([]domain.City, error) {
	if departmentID <= 0 {
		return nil, apperror.BadRequest("department_id is required")
	}
	key := fmt.Sprintf("locations:cities:%d", departmentID)
	cities, err := cache.Remember(ctx, u.cache, key, locationTTL, func(ctx context.Context) ([]domain.City, error) {
		return u.repo.ListCities(ctx, departmentID)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return cities, nil
}

func (u *locationUsecase) ValidateSelection(ctx context.Context, sel domain.LocationSelection) error {
	if sel.CityID != nil && sel.DepartmentID == nil {
		return apperror.BadRequest("department_id is required when city_id is set")
	}
	if sel.DepartmentID != nil && sel.CountryID == nil {
		return apperror.BadRequest("country_id is required when department_id is set")
	}

	if sel.CountryID != nil {
		if _, err := u.repo.GetCountry(ctx, *sel.CountryID); err != nil {
			return invalidLocation(err, "invalid country")
		}
	}
	if sel.DepartmentID != nil {
		dept, err := u.repo.GetDepartment(ctx, *sel.DepartmentID)
		if err != nil {
			return invalidLocation(err, "invalid department")
		}
		if dept.CountryID != *sel.CountryID {
			return apperror.BadRequest("department does not belong to the selected country")
		}
	}
	if sel.CityID != nil {
		city, err := u.repo.GetCity(ctx, *sel.CityID)
		if err != nil {
			return invalidLocation(err, "invalid city")
		}
		if city.DepartmentID != *sel.DepartmentID {
			return apperror.BadRequest("city does not belong to the selected department")
		}
	}
	return nil
}

func invalidLocation(err error, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.BadRequest(message)
	}
	return apperror.Internal(err)
}
