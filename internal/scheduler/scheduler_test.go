package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)

type MockCertRepo struct {
	mock.Mock
	domain.CertificateRepository
}

func (m *MockCertRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]domain.Certificate, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Certificate), args.Error(1)
}

type MockCompanyRepo struct {
	mock.Mock
	domain.CompanyRepository
}

func (m *MockCompanyRepo) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
	domain.UserRepository
}

func (m *MockUserRepo) ListByCompany(ctx context.Context, companyID int64) ([]domain.User, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockSolicitudRepo struct {
	mock.Mock
	domain.SolicitudRepository
}

func (m *MockSolicitudRepo) ListStale(ctx context.Context, olderThan time.Time) ([]domain.Solicitud, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Solicitud), args.Error(1)
}

type fakeMailer struct {
	mu         sync.Mutex
	configured bool
	fail       map[string]error
	sent       []email.Message
}

func (f *fakeMailer) IsConfigured() bool { return f.configured }

func (f *fakeMailer) Send(_ context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[msg.To[0]]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fixture struct {
	certs      *MockCertRepo
	companies  *MockCompanyRepo
	users      *MockUserRepo
	solicitude *MockSolicitudRepo
	mailer     *fakeMailer
	s          *Scheduler
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		certs:      new(MockCertRepo),
		companies:  new(MockCompanyRepo),
		users:      new(MockUserRepo),
		solicitude: new(MockSolicitudRepo),
		mailer:     &fakeMailer{configured: true},
	}
	if cfg.CertificateExpiryCron == "" {
		cfg.CertificateExpiryCron = "0 7 * * *"
	}
	if cfg.StaleSolicitudCron == "" {
		cfg.StaleSolicitudCron = "@hourly"
	}
	s, err := New(cfg, Deps{
		Certificates: f.certs,
		Companies:    f.companies,
		Users:        f.users,
		Solicitudes:  f.solicitude,
		Mailer:       f.mailer,
	})
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	f.s = s
	return f
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	_, err := New(Config{CertificateExpiryCron: "every day", StaleSolicitudCron: "@hourly"}, Deps{})
	assert.Error(t, err)

	_, err = New(Config{CertificateExpiryCron: "@daily", StaleSolicitudCron: "61 * * * *"}, Deps{})
	assert.Error(t, err)
}

func TestCertificateExpiry(t *testing.T) {
	t.Run("One mail per company with deduplicated recipients", func(t *testing.T) {
		f := newFixture(t, Config{ExpiryWindowDays: 30})
		f.certs.On("ListExpiring", mock.Anything, fixedNow, fixedNow.AddDate(0, 0, 30)).Return([]domain.Certificate{
			{CompanyID: 1, Code: "AAA", CandidateName: "Ana", ValidUntil: fixedNow.AddDate(0, 0, 3)},
			{CompanyID: 2, Code: "BBB", CandidateName: "Luis", ValidUntil: fixedNow.AddDate(0, 0, 9)},
			{CompanyID: 1, Code: "CCC", CandidateName: "Eva", ValidUntil: fixedNow.AddDate(0, 0, 20)},
		}, nil)
		f.companies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1, LegalName: "Acme", Email: "rrhh@acme.co"}, nil)
		f.companies.On("GetByID", mock.Anything, int64(2)).Return(&domain.Company{ID: 2, LegalName: "Beta", Email: "info@beta.co"}, nil)
		f.users.On("ListByCompany", mock.Anything, int64(1)).Return([]domain.User{
			{Email: "RRHH@acme.co"}, {Email: "jefe@acme.co"},
		}, nil)
		f.users.On("ListByCompany", mock.Anything, int64(2)).Return([]domain.User{}, nil)

		require.NoError(t, f.s.CertificateExpiry(context.Background()))

		require.Len(t, f.mailer.sent, 2)
		acme := f.mailer.sent[0]
		assert.Equal(t, []string{"rrhh@acme.co", "jefe@acme.co"}, acme.To)
		assert.Contains(t, acme.HTML, "AAA")
		assert.Contains(t, acme.HTML, "CCC")
		assert.NotContains(t, acme.HTML, "BBB")
		assert.Equal(t, []string{"info@beta.co"}, f.mailer.sent[1].To)
	})

	t.Run("A failing company does not stop the others", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.mailer.fail = map[string]error{"a@one.co": errors.New("smtp down")}
		f.certs.On("ListExpiring", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Certificate{
			{CompanyID: 1, Code: "AAA"}, {CompanyID: 2, Code: "BBB"},
		}, nil)
		f.companies.On("GetByID", mock.Anything, int64(1)).Return(&domain.Company{ID: 1, Email: "a@one.co"}, nil)
		f.companies.On("GetByID", mock.Anything, int64(2)).Return(&domain.Company{ID: 2, Email: "b@two.co"}, nil)
		f.users.On("ListByCompany", mock.Anything, mock.Anything).Return([]domain.User{}, nil)

		err := f.s.CertificateExpiry(context.Background())
		assert.ErrorContains(t, err, "company 1")
		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, []string{"b@two.co"}, f.mailer.sent[0].To)
	})

	t.Run("Skipped without SMTP", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.mailer.configured = false
		f.certs.On("ListExpiring", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Certificate{{CompanyID: 1}}, nil)

		assert.NoError(t, f.s.CertificateExpiry(context.Background()))
		f.companies.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Repository error", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.certs.On("ListExpiring", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
		assert.Error(t, f.s.CertificateExpiry(context.Background()))
	})
}

func TestStaleSolicitudes(t *testing.T) {
	t.Run("Digest to operations", func(t *testing.T) {
		f := newFixture(t, Config{OperationsEmail: "ops@example.co", StaleAfter: 24 * time.Hour})
		f.solicitude.On("ListStale", mock.Anything, fixedNow.Add(-24*time.Hour)).Return([]domain.Solicitud{
			{Title: "Corregir certificado", CompanyName: "Acme", CreatedAt: fixedNow.Add(-72 * time.Hour)},
		}, nil)

		require.NoError(t, f.s.StaleSolicitudes(context.Background()))
		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, []string{"ops@example.co"}, f.mailer.sent[0].To)
		assert.Contains(t, f.mailer.sent[0].HTML, "Corregir certificado")
	})

	t.Run("Disabled without an operations address", func(t *testing.T) {
		f := newFixture(t, Config{})
		require.NoError(t, f.s.StaleSolicitudes(context.Background()))
		f.solicitude.AssertNotCalled(t, "ListStale", mock.Anything, mock.Anything)
	})

	t.Run("Nothing stale sends nothing", func(t *testing.T) {
		f := newFixture(t, Config{OperationsEmail: "ops@example.co"})
		f.solicitude.On("ListStale", mock.Anything, mock.Anything).Return([]domain.Solicitud{}, nil)
		require.NoError(t, f.s.StaleSolicitudes(context.Background()))
		assert.Empty(t, f.mailer.sent)
	})
}

func TestStartStop(t *testing.T) {
	f := newFixture(t, Config{})
	f.s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, f.s.Stop(ctx))
}
