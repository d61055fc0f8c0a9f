package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/internal/usecase"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLocationListsAreCached(t *testing.T) {
	repo := new(MockLocationRepo)
	uc := usecase.NewLocationUsecase(repo, cache.NewMemory())
	ctx := context.Background()

	repo.On("ListDepartments", mock.Anything, int64(1)).
		Return([]domain.Department{{ID: 11, CountryID: 1, Name: "Antioquia"}}, nil).Once()

	first, err := uc.ListDepartments(ctx, 1)
	require.NoError(t, err)
	second, err := uc.ListDepartments(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "ListDepartments", 1)
}

func TestLocationListRequiresParent(t *testing.T) {
	uc := usecase.NewLocationUsecase(new(MockLocationRepo), cache.NewMemory())

	_, err := uc.ListCities(context.Background(), 0)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
}

func TestValidateSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("Should accept a consistent chain", func(t *testing.T) {
		repo := new(MockLocationRepo)
		repo.On("GetCountry", mock.Anything, int64(1)).Return(&domain.Country{ID: 1}, nil)
		repo.On("GetDepartment", mock.Anything, int64(11)).Return(&domain.Department{ID: 11, CountryID: 1}, nil)
		repo.On("GetCity", mock.Anything, int64(111)).Return(&domain.City{ID: 111, DepartmentID: 11}, nil)
		uc := usecase.NewLocationUsecase(repo, cache.NewMemory())

		err := uc.ValidateSelection(ctx, domain.LocationSelection{CountryID: i64(1), DepartmentID: i64(11), CityID: i64(111)})
		assert.NoError(t, err)
	})

	t.Run("Should reject a city from another department", func(t *testing.T) {
		repo := new(MockLocationRepo)
		repo.On("GetCountry", mock.Anything, int64(1)).Return(&domain.Country{ID: 1}, nil)
		repo.On("GetDepartment", mock.Anything, int64(11)).Return(&domain.Department{ID: 11, CountryID: 1}, nil)
		repo.On("GetCity", mock.Anything, int64(222)).Return(&domain.City{ID: 222, DepartmentID: 22}, nil)
		uc := usecase.NewLocationUsecase(repo, cache.NewMemory())

		err := uc.ValidateSelection(ctx, domain.LocationSelection{CountryID: i64(1), DepartmentID: i64(11), CityID: i64(222)})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
		assert.Contains(t, err.Error(), "city does not belong")
	})

	t.Run("Should reject a city without department", func(t *testing.T) {
		uc := usecase.NewLocationUsecase(new(MockLocationRepo), cache.NewMemory())
		err := uc.ValidateSelection(ctx, domain.LocationSelection{CountryID: i64(1), CityID: i64(111)})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	})

	t.Run("Should turn a missing country into a bad request", func(t *testing.T) {
		repo := new(MockLocationRepo)
		repo.On("GetCountry", mock.Anything, int64(9)).Return(nil, domain.ErrNotFound)
		uc := usecase.NewLocationUsecase(repo, cache.NewMemory())

		err := uc.ValidateSelection(ctx, domain.LocationSelection{CountryID: i64(9)})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
		assert.Contains(t, err.Error(), "invalid country")
	})

	t.Run("Should accept an empty selection", func(t *testing.T) {
		uc := usecase.NewLocationUsecase(new(MockLocationRepo), cache.NewMemory())
		assert.NoError(t, uc.ValidateSelection(ctx, domain.LocationSelection{}))
	})
}
