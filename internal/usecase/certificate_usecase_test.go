package usecase_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/internal/usecase"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/audit"
	"go-occupational-backend/pkg/email"
	"go-occupational-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type certFixture struct {
	certs     *MockCertificateRepo
	orders    *MockOrderRepo
	companies *MockCompanyRepo
	store     *MockStore
	mailer    *MockMailer
	auditor   *RecordingAuditor
	uc        domain.CertificateUsecase
}

func newCertFixture(withStore bool) certFixture {
	f := certFixture{
		certs:     new(MockCertificateRepo),
		orders:    new(MockOrderRepo),
		companies: new(MockCompanyRepo),
		store:     new(MockStore),
		mailer:    new(MockMailer),
		auditor:   &RecordingAuditor{},
	}
	if withStore {
		f.uc = usecase.NewCertificateUsecase(f.certs, f.orders, f.companies, f.store, f.mailer, f.auditor, validation.New())
	} else {
		f.uc = usecase.NewCertificateUsecase(f.certs, f.orders, f.companies, nil, f.mailer, f.auditor, validation.New())
	}
	return f
}

func certInput(concept string) domain.CertificateInput {
	return domain.CertificateInput{
		OrderID:          1,
		Concept:          concept,
		PhysicianName:    "Dra. Laura Peña",
		PhysicianLicense: "RM-12345",
	}
}

func TestIssueCertificate(t *testing.T) {
	t.Run("Should refuse orders that are not in progress", func(t *testing.T) {
		f := newCertFixture(true)
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{ID: 1, CompanyID: 3, Status: domain.OrderCreated}, nil)

		_, err := f.uc.Issue(adminCtx(), certInput("APTO"))
		assert.Equal(t, http.StatusConflict, apperror.StatusOf(err))
	})

	t.Run("Should refuse a second certificate for the order", func(t *testing.T) {
		f := newCertFixture(true)
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{ID: 1, CompanyID: 3, Status: domain.OrderCompleted}, nil)
		f.certs.On("GetByOrderID", mock.Anything, int64(1)).Return(&domain.Certificate{ID: 4}, nil)

		_, err := f.uc.Issue(adminCtx(), certInput("APTO"))
		assert.Equal(t, http.StatusConflict, apperror.StatusOf(err))
	})

	t.Run("Should require restrictions for a restricted concept", func(t *testing.T) {
		f := newCertFixture(true)
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{ID: 1, CompanyID: 3, Status: domain.OrderInProgress}, nil)
		f.certs.On("GetByOrderID", mock.Anything, int64(1)).Return(nil, domain.ErrNotFound)

		_, err := f.uc.Issue(adminCtx(), certInput("APTO_CON_RESTRICCIONES"))
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	})

	t.Run("Should reject a validity in the past", func(t *testing.T) {
		f := newCertFixture(true)
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{ID: 1, CompanyID: 3, Status: domain.OrderInProgress}, nil)
		f.certs.On("GetByOrderID", mock.Anything, int64(1)).Return(nil, domain.ErrNotFound)
		in := certInput("APTO")
		past := time.Now().Add(-time.Hour)
		in.ValidUntil = &past

		_, err := f.uc.Issue(adminCtx(), in)
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
	})

	t.Run("Should issue, complete the order and notify the company", func(t *testing.T) {
		f := newCertFixture(true)
		f.orders.On("GetByID", mock.Anything, int64(1)).Return(&domain.ServiceOrder{
			ID: 1, Number: "ORD-1", CompanyID: 3, ProviderID: 5, CandidateID: 10, Status: domain.OrderInProgress, CandidateName: "Ana Ruiz",
		}, nil)
		f.certs.On("GetByOrderID", mock.Anything, int64(1)).Return(nil, domain.ErrNotFound)
		f.certs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Certificate"), true).Return(nil)
		f.companies.On("GetByID", mock.Anything, int64(3)).Return(&domain.Company{ID: 3, LegalName: "Andina", Email: "rrhh@andina.co"}, nil)
		f.mailer.On("IsConfigured").Return(true)
		f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool {
			return m.To[0] == "rrhh@andina.co"
		})).Return(nil)

		cert, err := f.uc.Issue(companyCtx(5), certInput("APTO"))
		require.NoError(t, err)
		assert.Len(t, cert.Code, 10)
		assert.Equal(t, strings.ToUpper(cert.Code), cert.Code)
		assert.Equal(t, int64(10), cert.CandidateID)
		assert.WithinDuration(t, cert.IssuedAt.AddDate(1, 0, 0), cert.ValidUntil, 48*time.Hour)
		require.Len(t, f.auditor.Events, 1)
		assert.Equal(t, audit.ActionCertificateIssued, f.auditor.Events[0].Action)
		f.mailer.AssertExpectations(t)
	})
}

func TestVerifyCertificate(t *testing.T) {
	f := newCertFixture(false)
	f.certs.On("GetByCode", mock.Anything, "ABCDEF1234").Return(&domain.Certificate{
		Code: "ABCDEF1234", Concept: domain.ConceptApto, ValidUntil: time.Now().Add(24 * time.Hour), CandidateName: "Ana Ruiz",
	}, nil)
	f.certs.On("GetByCode", mock.Anything, "0000000000").Return(nil, domain.ErrNotFound)

	v, err := f.uc.Verify(adminCtx(), " abcdef1234 ")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, "Ana Ruiz", v.CandidateName)

	_, err = f.uc.Verify(adminCtx(), "0000000000")
	assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))

	for _, malformed := range []string{"short", "ZZZZZZZZZZ", "ABCDEF12345", "ABCDE-1234"} {
		_, err = f.uc.Verify(adminCtx(), malformed)
		assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err), malformed)
	}
	f.certs.AssertNumberOfCalls(t, "GetByCode", 2)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAttachSignature(t *testing.T) {
	t.Run("Should be unavailable without storage", func(t *testing.T) {
		f := newCertFixture(false)
		_, err := f.uc.AttachSignature(adminCtx(), 1, []byte("x"))
		assert.Equal(t, http.StatusServiceUnavailable, apperror.StatusOf(err))
	})

	t.Run("Should reject a blank canvas", func(t *testing.T) {
		f := newCertFixture(true)
		f.certs.On("GetByID", mock.Anything, int64(1)).Return(&domain.Certificate{ID: 1, CompanyID: 3}, nil)

		blank := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 300, 100)))
		_, err := f.uc.AttachSignature(adminCtx(), 1, blank)
		assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
		f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should store the normalized signature and drop the old one", func(t *testing.T) {
		f := newCertFixture(true)
		f.certs.On("GetByID", mock.Anything, int64(1)).Return(&domain.Certificate{ID: 1, CompanyID: 3, SignatureKey: "certificates/1/old.png"}, nil)
		f.store.On("Put", mock.Anything, mock.MatchedBy(func(k string) bool {
			return strings.HasPrefix(k, "certificates/1/signature-")
		}), "image/png", mock.Anything).Return(nil)
		f.certs.On("SetSignature", mock.Anything, int64(1), mock.AnythingOfType("string")).Return(nil)
		f.store.On("Delete", mock.Anything, "certificates/1/old.png").Return(nil)

		img := image.NewRGBA(image.Rect(0, 0, 300, 100))
		for x := 50; x < 150; x++ {
			img.Set(x, 50, color.Black)
		}
		cert, err := f.uc.AttachSignature(adminCtx(), 1, encodePNG(t, img))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(cert.SignatureKey, ".png"))
		f.store.AssertExpectations(t)
	})
}

func TestListExpiringScopesToCompany(t *testing.T) {
	f := newCertFixture(false)
	f.certs.On("ListExpiring", mock.Anything, mock.Anything, mock.Anything).Return([]domain.Certificate{
		{ID: 1, CompanyID: 3}, {ID: 2, CompanyID: 4},
	}, nil)

	certs, err := f.uc.ListExpiring(companyCtx(3), 30)
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, int64(1), certs[0].ID)

	_, err = f.uc.ListExpiring(adminCtx(), 0)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
}
