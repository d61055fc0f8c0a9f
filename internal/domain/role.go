package domain

import (
	"context"
	"time"
)

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	System      bool      `json:"system"`
	Global      bool      `json:"global"`
	Permissions []string  `json:"permissions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Permission is an action a route guards, e.g. "orders.create".
type Permission struct {
	Code        string `json:"code"`
	Module      string `json:"module"`
	Description string `json:"description"`
}

type RoleInput struct {
	Name        string `json:"name" binding:"required,min=3,max=50"`
	Description string `json:"description" binding:"max=300"`
	Global      bool   `json:"global"`
}

type RolePermissionsInput struct {
	Permissions []string `json:"permissions" binding:"omitempty,dive,required,max=100"`
}

type RoleRepository interface {
	List(ctx context.Context) ([]Role, error)
	GetByID(ctx context.Context, id int64) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	Create(ctx context.Context, r *Role) error
	Update(ctx context.Context, r *Role) error
	Delete(ctx context.Context, id int64) error
	CountUsers(ctx context.Context, id int64) (int64, error)

	Permissions(ctx context.Context, roleID int64) ([]string, error)
	SetPermissions(ctx context.Context, roleID int64, codes []string) error
	ListPermissions(ctx context.Context) ([]Permission, error)
	// UpsertPermissions syncs the registered actions into storage.
	UpsertPermissions(ctx context.Context, perms []Permission) error
}

type RoleUsecase interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (*Role, error)
	CreateRole(ctx context.Context, in RoleInput) (*Role, error)
	UpdateRole(ctx context.Context, id int64, in RoleInput) (*Role, error)
	DeleteRole(ctx context.Context, id int64) error
	ListPermissions(ctx context.Context) ([]Permission, error)
	SetRolePermissions(ctx context.Context, id int64, codes []string) (*Role, error)
	// PermissionsOf returns the role's permission codes, served from cache when possible.
	PermissionsOf(ctx context.Context, roleID int64) (map[string]bool, error)
	SyncPermissions(ctx context.Context, perms []Permission) error
}
