package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/email"
	"go-occupational-backend/pkg/export"
	"go-occupational-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// maxExportRows bounds a single export.
const maxExportRows = 10000

type orderUsecase struct {
	orderRepo     domain.OrderRepository
	candidateRepo domain.CandidateRepository
	companyRepo   domain.CompanyRepository
	serviceRepo   domain.MedicalServiceRepository
	mailer        Mailer
	validate      *validator.Validate
	now           func() time.Time
}

func NewOrderUsecase(
	orderRepo domain.OrderRepository,
	candidateRepo domain.CandidateRepository,
	companyRepo domain.CompanyRepository,
	serviceRepo domain.MedicalServiceRepository,
	mailer Mailer,
	validate *validator.Validate,
) domain.OrderUsecase {
	return &orderUsecase{
		orderRepo:     orderRepo,
		candidateRepo: candidateRepo,
		companyRepo:   companyRepo,
		serviceRepo:   serviceRepo,
		mailer:        mailer,
		validate:      validate,
		now:           time.Now,
	}
}

func (u *orderUsecase) Create(ctx context.Context, in domain.OrderInput) (*domain.ServiceOrder, error) {
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

	company, err := u.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.BadRequest("invalid company")
		}
		return nil, apperror.Internal(err)
	}
	if !company.Active {
		return nil, apperror.Unprocessable("company is inactive")
	}

	candidate, err := u.candidateRepo.GetByID(ctx, in.CandidateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.BadRequest("invalid candidate")
		}
		return nil, apperror.Internal(err)
	}
	if candidate.CompanyID != company.ID {
		return nil, apperror.BadRequest("candidate does not belong to the company")
	}

	provider, err := u.companyRepo.GetByID(ctx, in.ProviderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.BadRequest("invalid provider")
		}
		return nil, apperror.Internal(err)
	}
	if provider.Kind != domain.CompanyPrestador {
		return nil, apperror.BadRequest("provider must be a PRESTADOR")
	}
	if !provider.Active {
		return nil, apperror.Unprocessable("provider is inactive")
	}

	seen := make(map[int64]bool, len(in.ServiceIDs))
	for _, id := range in.ServiceIDs {
		if seen[id] {
			return nil, apperror.BadRequest("services must not repeat")
		}
		seen[id] = true
	}
	services, err := u.serviceRepo.GetByIDs(ctx, in.ServiceIDs)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	byID := make(map[int64]domain.MedicalService, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}

	now := u.now()
	order := &domain.ServiceOrder{
		Number:        domain.NewOrderNumber(now),
		CompanyID:     company.ID,
		ProviderID:    provider.ID,
		CandidateID:   candidate.ID,
		Status:        domain.OrderCreated,
		ScheduledAt:   in.ScheduledAt,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedBy:     v.UserID,
		CompanyName:   company.DisplayName(),
		ProviderName:  provider.DisplayName(),
		CandidateName: candidate.FullName(),
	}
	// items keep the requested order and snapshot the current price
	for _, id := range in.ServiceIDs {
		s, ok := byID[id]
		if !ok {
			return nil, apperror.BadRequest(fmt.Sprintf("service %d does not exist", id))
		}
		if !s.Active {
			return nil, apperror.BadRequest(fmt.Sprintf("service %s is inactive", s.Code))
		}
		order.Items = append(order.Items, domain.OrderItem{ServiceID: s.ID, ServiceName: s.Name, Price: s.Price})
		order.Total += s.Price
	}

	if err := u.orderRepo.Create(ctx, order); err != nil {
		return nil, apperror.Internal(err)
	}
	logger.FromContext(ctx).Info("service order created", "order_id", order.ID, "number", order.Number)

	u.notifyProvider(ctx, order, provider)
	return order, nil
}

func (u *orderUsecase) notifyProvider(ctx context.Context, o *domain.ServiceOrder, provider *domain.Company) {
	data := email.OrderCreatedData{
		ProviderName:  provider.DisplayName(),
		OrderNumber:   o.Number,
		CompanyName:   o.CompanyName,
		CandidateName: o.CandidateName,
		Total:         formatPesos(o.Total),
	}
	if o.ScheduledAt != nil {
		data.ScheduledAt = o.ScheduledAt.Format("2006-01-02 15:04")
	}
	for _, it := range o.Items {
		data.Services = append(data.Services, it.ServiceName)
	}
	msg, err := email.OrderCreated(provider.Email, data)
	notify(ctx, u.mailer, msg, err)
}

// formatPesos renders 1250000 as "$1.250.000".
func formatPesos(amount int64) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}

// load fetches an order visible to the viewer: client and provider companies both see it.
func (u *orderUsecase) load(ctx context.Context, id int64) (*domain.ServiceOrder, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	o, err := u.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order not found")
	}
	if requireCompanyAccess(v, o.CompanyID) != nil && requireCompanyAccess(v, o.ProviderID) != nil {
		return nil, apperror.NotFound("order not found")
	}
	return o, nil
}

func (u *orderUsecase) Get(ctx context.Context, id int64) (*domain.ServiceOrder, error) {
	return u.load(ctx, id)
}

func (u *orderUsecase) scope(ctx context.Context, f domain.OrderFilter) (domain.OrderFilter, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return f, err
	}
	f.PartyID = nil
	if !v.Global {
		if v.CompanyID == nil {
			return f, apperror.Forbidden("Select a company first")
		}
		id := *v.CompanyID
		f.PartyID = &id
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, apperror.BadRequest("to must not be before from")
	}
	return f, nil
}

func (u *orderUsecase) List(ctx context.Context, f domain.OrderFilter) ([]domain.ServiceOrder, int64, error) {
	f, err := u.scope(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	f.PageRequest = f.PageRequest.Normalize()
	items, total, err := u.orderRepo.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

// ChangeStatus walks the order state machine.
func (u *orderUsecase) ChangeStatus(ctx context.Context, id int64, in domain.OrderStatusInput) (*domain.ServiceOrder, error) {
	if err := validateInput(u.validate, in); err != nil {
		return nil, err
	}
	o, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next := domain.OrderStatus(in.Status)
	if !o.Status.CanTransitionTo(next) {
		return nil, apperror.Conflict(fmt.Sprintf("order cannot move from %s to %s", o.Status, next))
	}
	if in.ScheduledAt != nil {
		o.ScheduledAt = in.ScheduledAt
	}
	if next == domain.OrderScheduled && o.ScheduledAt == nil {
		return nil, apperror.BadRequest("scheduled_at is required to schedule an order")
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		o.Notes = notes
	}
	from := o.Status
	o.Status = next
	if err := u.orderRepo.UpdateStatus(ctx, o, from); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Conflict("order was changed by someone else, reload and try again")
		}
		return nil, apperror.Internal(err)
	}

	if next == domain.OrderInProgress {
		u.markCandidateInProcess(ctx, o.CandidateID)
	}
	return o, nil
}

func (u *orderUsecase) markCandidateInProcess(ctx context.Context, candidateID int64) {
	c, err := u.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load candidate for status update", "candidate_id", candidateID, "error", err)
		return
	}
	if c.Status != domain.CandidateRegistered {
		return
	}
	if err := u.candidateRepo.UpdateStatus(ctx, candidateID, domain.CandidateInProcess); err != nil {
		logger.FromContext(ctx).Error("failed to mark candidate in process", "candidate_id", candidateID, "error", err)
	}
}

func (u *orderUsecase) Export(ctx context.Context, f domain.OrderFilter, format string) (*domain.ExportFile, error) {
	fmtType, err := export.ParseFormat(format)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	f, err = u.scope(ctx, f)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Sheet:   "Ordenes",
		Headers: []string{"Número", "Estado", "Empresa", "Prestador", "Candidato", "Programada", "Total", "Creada"},
	}
	err = collectPages(ctx, func(ctx context.Context, page domain.PageRequest) (int, int64, error) {
		f.PageRequest = page
		items, total, err := u.orderRepo.List(ctx, f)
		for _, o := range items {
			var scheduled interface{}
			if o.ScheduledAt != nil {
				scheduled = *o.ScheduledAt
			}
			table.Rows = append(table.Rows, []interface{}{
				o.Number, string(o.Status), o.CompanyName, o.ProviderName, o.CandidateName, scheduled, o.Total, o.CreatedAt,
			})
		}
		return len(items), total, err
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	file, err := export.Render(fmtType, "ordenes", table, u.now())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.ExportFile{Name: file.Name, ContentType: file.ContentType, Data: file.Data}, nil
}

// collectPages walks a paginated list until it is exhausted or maxExportRows is reached.
func collectPages(ctx context.Context, fetch func(context.Context, domain.PageRequest) (int, int64, error)) error {
	seen := 0
	for page := 1; seen < maxExportRows; page++ {
		n, total, err := fetch(ctx, domain.PageRequest{Page: page, Limit: domain.MaxPageSize})
		if err != nil {
			return err
		}
		seen += n
		if n < domain.MaxPageSize || int64(seen) >= total {
			return nil
		}
	}
	return nil
}
