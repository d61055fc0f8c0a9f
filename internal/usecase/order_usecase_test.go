package usecase_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/internal/usecase"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/email"
	"go-occupational-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders     *MockOrderRepo
	candidates *MockCandidateRepo
	companies  *MockCompanyRepo
	services   *MockServiceRepo
	mailer     *MockMailer
	uc         domain.OrderUsecase
}

func newOrderFixture() orderFixture {
	f := orderFixture{
		orders:     new(MockOrderRepo),
		candidates: new(MockCandidateRepo),
		companies:  new(MockCompanyRepo),
		services:   new(MockServiceRepo),
		mailer:     new(MockMailer),
	}
	f.uc = usecase.NewOrderUsecase(f.orders, f.candidates, f.companies, f.services, f.mailer, validation.New())
	return f
}

func (f orderFixture) expectParties() {
	f.companies.On("GetByID", mock.Anything, int64(3)).Return(&domain.Company{ID: 3, Kind: domain.CompanyEmpresa, LegalName: "Andina", Active: true}, nil)
	f.companies.On("GetByID", mock.Anything, int64(5)).Return(&domain.Company{ID: 5, Kind: domain.CompanyPrestador, LegalName: "IPS Salud", Email: "ips@example.co", Active: true}, nil)
	f.candidates.On("GetByID", mock.Anything, int64(10)).Return(&domain.Candidate{ID: 10, CompanyID: 3, FirstName: "Ana", LastName: "Ruiz"}, nil)
}

func TestCreateOrder(t *testing.T) {
	in := domain.OrderInput{ProviderID: 5, CandidateID: 10, ServiceIDs: []int64{2, 1}}

	t.Run("Should snapshot prices, total and notify the provider", func(t *testing.T) {
		f := newOrderFixture()
		f.expectParties()
		f.services.On("GetByIDs", mock.Anything, []int64{2, 1}).Return([]domain.MedicalService{
			{ID: 1, Code: "EMO", Name: "Examen médico", Price: 45000, Active: true},
			{ID: 2, Code: "AUDIO", Name: "Audiometría", Price: 30000, Active: true},
		}, nil)
		f.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.ServiceOrder")).Return(nil)
		f.mailer.On("IsConfigured").Return(true)
		f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool {
			return len(m.To) == 1 && m.To[0] == "ips@example.co" && strings.Contains(m.HTML, "Audiometría")
		})).Return(nil)

		o, err := f.uc.Create(companyCtx(3), in)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderCreated, o.Status)
		assert.Equal(t, int64(75000), o.Total)
		require.Len(t, o.Items, 2)
		assert.Equal(t, int64(2), o.Items[0].ServiceID)
		assert.True(t, strings.HasPrefix(o.Number, "ORD-"))
		assert.Equal(t, "user-1", o.CreatedBy)
		f.mailer.AssertExpectations(t)
	})

	t.Run("Should not fail when mail is not configured", func(t *testing.T) {
		f := newOrderFixture()
		f.expectParties()
		f.services.On("GetByIDs", mock.Anything, []int64{2, 1}).Return([]domain.MedicalService{
			{ID: 1, Price: 1, Active: true}, {ID: 2, Price: 1, Active: true},
		}, nil)
		f.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.ServiceOrder")).Return(nil)
		f.mailer.On("IsConfigured").Return(false)

		_, err := f.uc.Create(companyCtx(3), in)
		require.NoError(t, err)
		f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Should reject a provider that is not a PRESTADOR", func(t *testing.T) {
		f := newOrderFixture()
		f.companies.On("GetByID", mock.Anything, int64(3)).Return(&domain.Company{ID: 3, Kind: domain.CompanyEmpresa, Active: true}, nil)
		f.candidates.On("GetByID", mock.Anything, int64(10)).Return(&domain.Candidate{ID: 10, CompanyID: 3}, nil)

		_, err := f.uc.Create(companyCtx(3), domain.OrderInput{ProviderID: 3, CandidateID: 10, ServiceIDs: []int64{1}})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	})

	t.Run("Should reject repeated services", func(t *testing.T) {
		f := newOrderFixture()
		f.expectParties()

		_, err := f.uc.Create(companyCtx(3), domain.OrderInput{ProviderID: 5, CandidateID: 10, ServiceIDs: []int64{1, 1}})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	})

	t.Run("Should reject an inactive service", func(t *testing.T) {
		f := newOrderFixture()
		f.expectParties()
		f.services.On("GetByIDs", mock.Anything, []int64{1}).Return([]domain.MedicalService{{ID: 1, Code: "EMO"}}, nil)

		_, err := f.uc.Create(companyCtx(3), domain.OrderInput{ProviderID: 5, CandidateID: 10, ServiceIDs: []int64{1}})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
		assert.Contains(t, err.Error(), "EMO")
	})

	t.Run("Should reject a candidate from another company", func(t *testing.T) {
		f := newOrderFixture()
		f.companies.On("GetByID", mock.Anything, int64(3)).Return(&domain.Company{ID: 3, Active: true}, nil)
		f.candidates.On("GetByID", mock.Anything, int64(10)).Return(&domain.Candidate{ID: 10, CompanyID: 4}, nil)

		_, err := f.uc.Create(companyCtx(3), in)
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	})
}

func TestChangeOrderStatus(t *testing.T) {
	t.Run("Should reject an invalid transition", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{ID: 1, CompanyID: 3, Status: domain.OrderCompleted}, nil)

		_, err := f.uc.ChangeStatus(adminCtx(), 1, domain.OrderStatusInput{Status: "CANCELLED"})
		assert.Equal(t, http.StatusConflict, apperror.StatusOf(err))
	})

	t.Run("Should require a date to schedule", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{ID: 1, CompanyID: 3, Status: domain.OrderCreated}, nil)

		_, err := f.uc.ChangeStatus(adminCtx(), 1, domain.OrderStatusInput{Status: "SCHEDULED"})
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	})

	t.Run("Should schedule with a date", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{ID: 1, CompanyID: 3, Status: domain.OrderCreated}, nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.AnythingOfType("*domain.ServiceOrder"), domain.OrderCreated).Return(nil)
		when := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)

		o, err := f.uc.ChangeStatus(adminCtx(), 1, domain.OrderStatusInput{Status: "SCHEDULED", ScheduledAt: &when})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderScheduled, o.Status)
		assert.Equal(t, when, *o.ScheduledAt)
	})

	t.Run("Should mark a registered candidate in process", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{ID: 1, CompanyID: 3, ProviderID: 5, CandidateID: 10, Status: domain.OrderScheduled}, nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.AnythingOfType("*domain.ServiceOrder"), domain.OrderScheduled).Return(nil)
		f.candidates.On("GetByID", mock.Anything, int64(10)).Return(&domain.Candidate{ID: 10, Status: domain.CandidateRegistered}, nil)
		f.candidates.On("UpdateStatus", mock.Anything, int64(10), domain.CandidateInProcess).Return(nil)

		_, err := f.uc.ChangeStatus(companyCtx(5), 1, domain.OrderStatusInput{Status: "IN_PROGRESS"})
		require.NoError(t, err)
		f.candidates.AssertExpectations(t)
	})

	t.Run("Should report a concurrent change as conflict", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{ID: 1, CompanyID: 3, Status: domain.OrderInProgress}, nil)
		f.orders.On("UpdateStatus", mock.Anything, mock.AnythingOfType("*domain.ServiceOrder"), domain.OrderInProgress).Return(domain.ErrNotFound)

		_, err := f.uc.ChangeStatus(adminCtx(), 1, domain.OrderStatusInput{Status: "CANCELLED"})
		assert.Equal(t, http.StatusConflict, apperror.StatusOf(err))
		f.candidates.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should hide orders of unrelated companies", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{ID: 1, CompanyID: 3, ProviderID: 5}, nil)

		_, err := f.uc.Get(companyCtx(8), 1)
		assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))
	})
}

func TestListOrdersUsesParty(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("List", mock.Anything, mock.MatchedBy(func(flt domain.OrderFilter) bool {
		return flt.PartyID != nil && *flt.PartyID == 5
	})).Return([]domain.ServiceOrder{}, int64(0), nil)

	_, _, err := f.uc.List(companyCtx(5), domain.OrderFilter{})
	require.NoError(t, err)
	f.orders.AssertExpectations(t)
}

func TestExportOrders(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("List", mock.Anything, mock.AnythingOfType("domain.OrderFilter")).Return([]domain.ServiceOrder{
		{Number: "ORD-20261018-ABCDEF", Status: domain.OrderCreated, CompanyName: "Andina", Total: 75000},
	}, int64(1), nil)

	file, err := f.uc.Export(adminCtx(), domain.OrderFilter{}, "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(file.Name, "ordenes_"))
	assert.True(t, strings.HasSuffix(file.Name, ".csv"))
	assert.Contains(t, string(file.Data), "ORD-20261018-ABCDEF")

	_, err = f.uc.Export(adminCtx(), domain.OrderFilter{}, "pdf")
	assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
}
