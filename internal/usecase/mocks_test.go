package usecase_test

import (
	"context"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/audit"
	"go-occupational-backend/pkg/email"

	"github.com/stretchr/testify/mock"
)

func viewerCtx(v *domain.Viewer) context.Context {
	return domain.WithViewer(context.Background(), v)
}

func adminCtx() context.Context {
	return viewerCtx(&domain.Viewer{UserID: "admin-1", Email: "admin@example.co", Role: domain.RoleAdmin, Global: true})
}

func companyCtx(companyID int64) context.Context {
	id := companyID
	return viewerCtx(&domain.Viewer{
		UserID:    "user-1",
		Email:     "user@example.co",
		Role:      domain.RoleCompanyUser,
		Companies: []int64{companyID},
		CompanyID: &id,
	})
}

func i64(v int64) *int64 { return &v }

type MockLocationRepo struct {
	mock.Mock
}

func (m *MockLocationRepo) ListCountries(ctx context.Context) ([]domain.Country, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Country), args.Error(1)
}

func (m *MockLocationRepo) ListDepartments(ctx context.Context, countryID int64) ([]domain.Department, error) {
	args := m.Called(ctx, countryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Department), args.Error(1)
}

func (m *MockLocationRepo) ListCities(ctx context.Context, departmentID int64) ([]domain.City, error) {
	args := m.Called(ctx, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.City), args.Error(1)
}

func (m *MockLocationRepo) GetCountry(ctx context.Context, id int64) (*domain.Country, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Country), args.Error(1)
}

func (m *MockLocationRepo) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Department), args.Error(1)
}

func (m *MockLocationRepo) GetCity(ctx context.Context, id int64) (*domain.City, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.City), args.Error(1)
}

// StubLocations accepts every selection.
type StubLocations struct {
	Err error
}

func (s StubLocations) ListCountries(context.Context) ([]domain.Country, error) { return nil, nil }
func (s StubLocations) ListDepartments(context.Context, int64) ([]domain.Department, error) { return nil, nil }
func (s StubLocations) ListCities(context.Context, int64) ([]domain.City, error) { return nil, nil }
func (s StubLocations) ValidateSelection(context.Context, domain.LocationSelection) error { return s.Err }

type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) ListCandidateTypes(ctx context.Context, onlyActive bool) ([]domain.CandidateType, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateType), args.Error(1)
}

func (m *MockCatalogRepo) GetCandidateType(ctx context.Context, id int64) (*domain.CandidateType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateType), args.Error(1)
}

func (m *MockCatalogRepo) CreateCandidateType(ctx context.Context, ct *domain.CandidateType) error {
	return m.Called(ctx, ct).Error(0)
}

func (m *MockCatalogRepo) UpdateCandidateType(ctx context.Context, ct *domain.CandidateType) error {
	return m.Called(ctx, ct).Error(0)
}

func (m *MockCatalogRepo) ListDocumentTypes(ctx context.Context, onlyActive bool) ([]domain.DocumentType, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentType), args.Error(1)
}

func (m *MockCatalogRepo) GetDocumentType(ctx context.Context, id int64) (*domain.DocumentType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentType), args.Error(1)
}

func (m *MockCatalogRepo) CreateDocumentType(ctx context.Context, dt *domain.DocumentType) error {
	return m.Called(ctx, dt).Error(0)
}

func (m *MockCatalogRepo) UpdateDocumentType(ctx context.Context, dt *domain.DocumentType) error {
	return m.Called(ctx, dt).Error(0)
}

func (m *MockCatalogRepo) ListRequirements(ctx context.Context, candidateTypeID int64) ([]domain.DocumentRequirement, error) {
	args := m.Called(ctx, candidateTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentRequirement), args.Error(1)
}

func (m *MockCatalogRepo) GetRequirement(ctx context.Context, id int64) (*domain.DocumentRequirement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentRequirement), args.Error(1)
}

func (m *MockCatalogRepo) FindRequirement(ctx context.Context, candidateTypeID, documentTypeID int64) (*domain.DocumentRequirement, error) {
	args := m.Called(ctx, candidateTypeID, documentTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentRequirement), args.Error(1)
}

func (m *MockCatalogRepo) CreateRequirement(ctx context.Context, req *domain.DocumentRequirement) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockCatalogRepo) DeleteRequirement(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) Create(ctx context.Context, c *domain.Candidate) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCandidateRepo) GetByID(ctx context.Context, id int64) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) GetByDocument(ctx context.Context, kind, number string) (*domain.Candidate, error) {
	args := m.Called(ctx, kind, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) List(ctx context.Context, f domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Candidate), args.Get(1).(int64), args.Error(2)
}

func (m *MockCandidateRepo) Update(ctx context.Context, c *domain.Candidate) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCandidateRepo) UpdateStatus(ctx context.Context, id int64, status domain.CandidateStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockCandidateRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCandidateRepo) CountOpenOrders(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockCompanyRepo struct {
	mock.Mock
}

func (m *MockCompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepo) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepo) GetByNIT(ctx context.Context, nit string) (*domain.Company, error) {
	args := m.Called(ctx, nit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepo) List(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Company), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyRepo) Update(ctx context.Context, c *domain.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockCompanyRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCompanyRepo) CountReferences(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockServiceRepo struct {
	mock.Mock
}

func (m *MockServiceRepo) Create(ctx context.Context, s *domain.MedicalService) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockServiceRepo) GetByID(ctx context.Context, id int64) (*domain.MedicalService, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MedicalService), args.Error(1)
}

func (m *MockServiceRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.MedicalService, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MedicalService), args.Error(1)
}

func (m *MockServiceRepo) List(ctx context.Context, f domain.MedicalServiceFilter) ([]domain.MedicalService, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.MedicalService), args.Get(1).(int64), args.Error(2)
}

func (m *MockServiceRepo) Update(ctx context.Context, s *domain.MedicalService) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockServiceRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, o *domain.ServiceOrder) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.ServiceOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceOrder), args.Error(1)
}

func (m *MockOrderRepo) List(ctx context.Context, f domain.OrderFilter) ([]domain.ServiceOrder, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.ServiceOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, o *domain.ServiceOrder, from domain.OrderStatus) error {
	return m.Called(ctx, o, from).Error(0)
}

type MockCertificateRepo struct {
	mock.Mock
}

func (m *MockCertificateRepo) Create(ctx context.Context, c *domain.Certificate, completeOrder bool) error {
	return m.Called(ctx, c, completeOrder).Error(0)
}

func (m *MockCertificateRepo) GetByID(ctx context.Context, id int64) (*domain.Certificate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Certificate), args.Error(1)
}

func (m *MockCertificateRepo) GetByCode(ctx context.Context, code string) (*domain.Certificate, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Certificate), args.Error(1)
}

func (m *MockCertificateRepo) GetByOrderID(ctx context.Context, orderID int64) (*domain.Certificate, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Certificate), args.Error(1)
}

func (m *MockCertificateRepo) List(ctx context.Context, f domain.CertificateFilter) ([]domain.Certificate, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Certificate), args.Get(1).(int64), args.Error(2)
}

func (m *MockCertificateRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]domain.Certificate, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Certificate), args.Error(1)
}

func (m *MockCertificateRepo) SetSignature(ctx context.Context, id int64, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, d *domain.CandidateDocument) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, id int64) (*domain.CandidateDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateDocument), args.Error(1)
}

func (m *MockDocumentRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.CandidateDocument, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CandidateDocument), args.Error(1)
}

func (m *MockDocumentRepo) LatestByType(ctx context.Context, candidateID, documentTypeID int64) (*domain.CandidateDocument, error) {
	args := m.Called(ctx, candidateID, documentTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateDocument), args.Error(1)
}

func (m *MockDocumentRepo) Review(ctx context.Context, d *domain.CandidateDocument) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDocumentRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockSolicitudRepo struct {
	mock.Mock
}

func (m *MockSolicitudRepo) Create(ctx context.Context, s *domain.Solicitud) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSolicitudRepo) GetByID(ctx context.Context, id string) (*domain.Solicitud, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Solicitud), args.Error(1)
}

func (m *MockSolicitudRepo) History(ctx context.Context, id string) ([]domain.SolicitudEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SolicitudEvent), args.Error(1)
}

func (m *MockSolicitudRepo) List(ctx context.Context, f domain.SolicitudFilter) ([]domain.Solicitud, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Solicitud), args.Get(1).(int64), args.Error(2)
}

func (m *MockSolicitudRepo) Transition(ctx context.Context, ev *domain.SolicitudEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *MockSolicitudRepo) Assign(ctx context.Context, id string, userID *string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockSolicitudRepo) ListStale(ctx context.Context, olderThan time.Time) ([]domain.Solicitud, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Solicitud), args.Error(1)
}

type MockRoleRepo struct {
	mock.Mock
}

func (m *MockRoleRepo) List(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Role), args.Error(1)
}

func (m *MockRoleRepo) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockRoleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockRoleRepo) Create(ctx context.Context, r *domain.Role) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRoleRepo) Update(ctx context.Context, r *domain.Role) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRoleRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoleRepo) CountUsers(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleRepo) Permissions(ctx context.Context, roleID int64) ([]string, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRoleRepo) SetPermissions(ctx context.Context, roleID int64, codes []string) error {
	return m.Called(ctx, roleID, codes).Error(0)
}

func (m *MockRoleRepo) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Permission), args.Error(1)
}

func (m *MockRoleRepo) UpsertPermissions(ctx context.Context, perms []domain.Permission) error {
	return m.Called(ctx, perms).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User, roleName string) error {
	return m.Called(ctx, user, roleName).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepo) SetRole(ctx context.Context, id string, roleID int64) error {
	return m.Called(ctx, id, roleID).Error(0)
}

func (m *MockUserRepo) SetCompanies(ctx context.Context, id string, companyIDs []int64) error {
	return m.Called(ctx, id, companyIDs).Error(0)
}

func (m *MockUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockUserRepo) ListByCompany(ctx context.Context, companyID int64) ([]domain.User, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMailer) IsConfigured() bool {
	return m.Called().Bool(0)
}

// RecordingAuditor keeps every event in memory.
type RecordingAuditor struct {
	Events []audit.Event
}

func (a *RecordingAuditor) Record(_ context.Context, e audit.Event) {
	a.Events = append(a.Events, e)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	return m.Called(ctx, key, contentType, body).Error(0)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
