package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderCreated    OrderStatus = "CREATED"
	OrderScheduled  OrderStatus = "SCHEDULED"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderCreated:    {OrderScheduled, OrderCancelled},
	OrderScheduled:  {OrderInProgress, OrderCancelled},
	OrderInProgress: {OrderCompleted, OrderCancelled},
}

// CanTransitionTo reports whether the order state machine allows from -> to.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

type OrderItem struct {
	ServiceID   int64  `json:"service_id"`
	ServiceName string `json:"service_name"`
	Price       int64  `json:"price"`
}

type ServiceOrder struct {
	ID            int64       `json:"id"`
	Number        string      `json:"number"`
	CompanyID     int64       `json:"company_id"`
	ProviderID    int64       `json:"provider_id"`
	CandidateID   int64       `json:"candidate_id"`
	Status        OrderStatus `json:"status"`
	ScheduledAt   *time.Time  `json:"scheduled_at"`
	Notes         string      `json:"notes"`
	Items         []OrderItem `json:"items"`
	Total         int64       `json:"total"`
	CreatedBy     string      `json:"created_by"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	CompanyName   string      `json:"company_name,omitempty"`
	ProviderName  string      `json:"provider_name,omitempty"`
	CandidateName string      `json:"candidate_name,omitempty"`
}

// NewOrderNumber builds ORD-YYYYMMDD-XXXXXX from the creation date and a random suffix.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

type OrderInput struct {
	CompanyID   int64      `json:"company_id"`
	ProviderID  int64      `json:"provider_id" binding:"required,gt=0"`
	CandidateID int64      `json:"candidate_id" binding:"required,gt=0"`
	ServiceIDs  []int64    `json:"service_ids" binding:"required,min=1,max=30,dive,gt=0"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Notes       string     `json:"notes" binding:"max=1000,no_emoji"`
}

type OrderStatusInput struct {
	Status      string     `json:"status" binding:"required,oneof=SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Notes       string     `json:"notes" binding:"max=1000,no_emoji"`
}

type OrderFilter struct {
	PageRequest
	CompanyID   *int64     `form:"company_id"`
	ProviderID  *int64     `form:"provider_id"`
	CandidateID *int64     `form:"candidate_id"`
	Status      string     `form:"status"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	// PartyID matches orders where the company is either client or provider
	PartyID *int64 `form:"-"`
}

type OrderRepository interface {
	// Create inserts the order and its items in one transaction.
	Create(ctx context.Context, o *ServiceOrder) error
	GetByID(ctx context.Context, id int64) (*ServiceOrder, error)
	List(ctx context.Context, f OrderFilter) ([]ServiceOrder, int64, error)
	// UpdateStatus only applies while the stored status is still from; otherwise it returns ErrNotFound.
	UpdateStatus(ctx context.Context, o *ServiceOrder, from OrderStatus) error
}

type OrderUsecase interface {
	Create(ctx context.Context, in OrderInput) (*ServiceOrder, error)
	Get(ctx context.Context, id int64) (*ServiceOrder, error)
	List(ctx context.Context, f OrderFilter) ([]ServiceOrder, int64, error)
	ChangeStatus(ctx context.Context, id int64, in OrderStatusInput) (*ServiceOrder, error)
	Export(ctx context.Context, f OrderFilter, format string) (*ExportFile, error)
}

// ExportFile is a generated report ready to download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}
