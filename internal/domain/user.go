package domain

import (
	"context"
	"time"
)

type User struct {
	ID        string    `json:"id"` // Supabase UUID
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	RoleID    int64     `json:"role_id"`
	Role      string    `json:"role"`
	Global    bool      `json:"global"`
	Active    bool      `json:"active"`
	Companies []int64   `json:"companies"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserFilter struct {
	PageRequest
	RoleID *int64 `form:"role_id"`
	Active *bool  `form:"active"`
	Search string `form:"search"`
}

type AssignRoleInput struct {
	RoleID int64 `json:"role_id" binding:"required,gt=0"`
}

type UserCompaniesInput struct {
	CompanyIDs []int64 `json:"company_ids" binding:"omitempty,dive,gt=0"`
}

type UserStatusInput struct {
	Active *bool `json:"active" binding:"required"`
}

type UserRepository interface {
	// Create inserts the user with the given role name.
	Create(ctx context.Context, user *User, roleName string) error
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]User, int64, error)
	SetRole(ctx context.Context, id string, roleID int64) error
	SetCompanies(ctx context.Context, id string, companyIDs []int64) error
	SetActive(ctx context.Context, id string, active bool) error
	ListByCompany(ctx context.Context, companyID int64) ([]User, error)
}

// Session is what the client needs after login.
type Session struct {
	User            *User     `json:"user"`
	Permissions     []string  `json:"permissions"`
	Companies       []Company `json:"companies"`
	SelectedCompany *Company  `json:"selected_company"`
}

type UserUsecase interface {
	// EnsureUser returns the stored user, provisioning it with the default role on first sight.
	EnsureUser(ctx context.Context, id, email string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context, f UserFilter) ([]User, int64, error)
	AssignRole(ctx context.Context, id string, roleID int64) (*User, error)
	SetCompanies(ctx context.Context, id string, companyIDs []int64) (*User, error)
	SetActive(ctx context.Context, id string, active bool) (*User, error)
	Session(ctx context.Context) (*Session, error)
	// SelectCompany validates that the viewer may work on the company.
	SelectCompany(ctx context.Context, companyID int64) (*Company, error)
}
