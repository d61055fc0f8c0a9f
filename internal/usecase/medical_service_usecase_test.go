package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/internal/usecase"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMedicalServiceCreate(t *testing.T) {
	in := domain.MedicalServiceInput{Code: " audio_01 ", Name: "Audiometría", Category: "EXAM", Price: 45000}

	t.Run("Should normalize the code and default to active", func(t *testing.T) {
		repo := new(MockServiceRepo)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.MedicalService) bool {
			return s.Code == "AUDIO_01" && s.Active && s.Price == 45000
		})).Return(nil)

		uc := usecase.NewMedicalServiceUsecase(repo, validation.New())
		s, err := uc.Create(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, "AUDIO_01", s.Code)
		repo.AssertExpectations(t)
	})

	t.Run("Should reject codes with symbols", func(t *testing.T) {
		repo := new(MockServiceRepo)
		bad := in
		bad.Code = "AUDIO-01"

		uc := usecase.NewMedicalServiceUsecase(repo, validation.New())
		_, err := uc.Create(context.Background(), bad)
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject an unknown category", func(t *testing.T) {
		bad := in
		bad.Category = "SURGERY"

		uc := usecase.NewMedicalServiceUsecase(new(MockServiceRepo), validation.New())
		_, err := uc.Create(context.Background(), bad)
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	})

	t.Run("Should map a duplicate code to conflict", func(t *testing.T) {
		repo := new(MockServiceRepo)
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicate)

		uc := usecase.NewMedicalServiceUsecase(repo, validation.New())
		_, err := uc.Create(context.Background(), in)
		assert.Equal(t, http.StatusConflict, apperror.StatusOf(err))
	})
}

func TestMedicalServiceUpdateAndStatus(t *testing.T) {
	t.Run("Should keep the active flag when omitted", func(t *testing.T) {
		repo := new(MockServiceRepo)
		repo.On("GetByID", mock.Anything, int64(4)).Return(&domain.MedicalService{ID: 4, Code: "LAB_01", Active: false}, nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.MedicalService")).Return(nil)

		uc := usecase.NewMedicalServiceUsecase(repo, validation.New())
		s, err := uc.Update(context.Background(), 4, domain.MedicalServiceInput{Code: "LAB_01", Name: "Hemograma", Category: "LAB", Price: 18000})
		require.NoError(t, err)
		assert.False(t, s.Active)
		assert.Equal(t, "Hemograma", s.Name)
	})

	t.Run("Should return not found for a missing service", func(t *testing.T) {
		repo := new(MockServiceRepo)
		repo.On("GetByID", mock.Anything, int64(9)).Return(nil, domain.ErrNotFound)

		uc := usecase.NewMedicalServiceUsecase(repo, validation.New())
		_, err := uc.SetActive(context.Background(), 9, false)
		assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))
	})

	t.Run("Should deactivate", func(t *testing.T) {
		repo := new(MockServiceRepo)
		repo.On("GetByID", mock.Anything, int64(4)).Return(&domain.MedicalService{ID: 4, Active: true}, nil)
		repo.On("SetActive", mock.Anything, int64(4), false).Return(nil)

		uc := usecase.NewMedicalServiceUsecase(repo, validation.New())
		s, err := uc.SetActive(context.Background(), 4, false)
		require.NoError(t, err)
		assert.False(t, s.Active)
	})
}

func TestMedicalServiceListNormalizesPaging(t *testing.T) {
	repo := new(MockServiceRepo)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f domain.MedicalServiceFilter) bool {
		return f.Page == 1 && f.Limit == domain.MaxPageSize && f.Search == "rx"
	})).Return([]domain.MedicalService{{ID: 1}}, int64(1), nil)

	uc := usecase.NewMedicalServiceUsecase(repo, validation.New())
	items, total, err := uc.List(context.Background(), domain.MedicalServiceFilter{
		PageRequest: domain.PageRequest{Page: 0, Limit: 1000},
		Search:      "  rx ",
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), total)
}
