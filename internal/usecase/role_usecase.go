package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/audit"
	"go-occupational-backend/pkg/cache"
	"go-occupational-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

const permissionTTL = 5 * time.Minute

var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{2,49}$`)

type roleUsecase struct {
	repo     domain.RoleRepository
	cache    cache.Cache
	auditor  Auditor
	validate *validator.Validate
}

func NewRoleUsecase(repo domain.RoleRepository, c cache.Cache, auditor Auditor, validate *validator.Validate) domain.RoleUsecase {
	return &roleUsecase{repo: repo, cache: c, auditor: auditor, validate: validate}
}

func permissionKey(roleID int64) string {
	return fmt.Sprintf("perms:role:%d", roleID)
}

func (u *roleUsecase) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := u.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return roles, nil
}

func (u *roleUsecase) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	role, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "role not found")
	}
	perms, err := u.repo.Permissions(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	role.Permissions = perms
	return role, nil
}

func (u *roleUsecase) checkInput(in domain.RoleInput) (string, error) {
	if err := validateInput(u.validate, in); err != nil {
		return "", err
	}
	name := strings.ToLower(strings.TrimSpace(in.Name))
	if !roleNamePattern.MatchString(name) {
		return "", apperror.BadRequest("role name must be lowercase letters, digits or underscores")
	}
	return name, nil
}

func (u *roleUsecase) CreateRole(ctx context.Context, in domain.RoleInput) (*domain.Role, error) {
	name, err := u.checkInput(in)
	if err != nil {
		return nil, err
	}
	if _, err := u.repo.GetByName(ctx, name); err == nil {
		return nil, apperror.Conflict("a role with this name already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	role := &domain.Role{Name: name, Description: strings.TrimSpace(in.Description), Global: in.Global}
	if err := u.repo.Create(ctx, role); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("a role with this name already exists")
		}
		return nil, apperror.Internal(err)
	}
	role.Permissions = []string{}
	return role, nil
}

// UpdateRole changes name, description and scope. System roles keep their name and scope.
func (u *roleUsecase) UpdateRole(ctx context.Context, id int64, in domain.RoleInput) (*domain.Role, error) {
	name, err := u.checkInput(in)
	if err != nil {
		return nil, err
	}
	role, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "role not found")
	}
	if role.System && (name != role.Name || in.Global != role.Global) {
		return nil, apperror.Forbidden("system roles cannot be renamed or rescoped")
	}
	role.Name = name
	role.Description = strings.TrimSpace(in.Description)
	role.Global = in.Global
	if err := u.repo.Update(ctx, role); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.Conflict("a role with this name already exists")
		}
		return nil, notFound(err, "role not found")
	}
	return role, nil
}

func (u *roleUsecase) DeleteRole(ctx context.Context, id int64) error {
	role, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "role not found")
	}
	if role.System {
		return apperror.Forbidden("system roles cannot be deleted")
	}
	users, err := u.repo.CountUsers(ctx, id)
	if err != nil {
		return apperror.Internal(err)
	}
	if users > 0 {
		return apperror.Conflict(fmt.Sprintf("role is assigned to %d users", users))
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrInUse) {
			return apperror.Conflict("role is still assigned to users")
		}
		return notFound(err, "role not found")
	}
	u.invalidate(ctx, id)
	recordAudit(ctx, u.auditor, audit.Event{Action: audit.ActionRoleDeleted, Target: role.Name})
	return nil
}

func (u *roleUsecase) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	perms, err := u.repo.ListPermissions(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return perms, nil
}

// SetRolePermissions replaces the role's permission set. Every code must be a registered action.
func (u *roleUsecase) SetRolePermissions(ctx context.Context, id int64, codes []string) (*domain.Role, error) {
	role, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "role not found")
	}
	known, err := u.repo.ListPermissions(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	valid := make(map[string]bool, len(known))
	for _, p := range known {
		valid[p.Code] = true
	}

	unique := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	var unknown []string
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if seen[code] {
			continue
		}
		seen[code] = true
		if !valid[code] {
			unknown = append(unknown, code)
			continue
		}
		unique = append(unique, code)
	}
	if len(unknown) > 0 {
		return nil, apperror.BadRequest("unknown permissions: " + strings.Join(unknown, ", "))
	}
	sort.Strings(unique)

	if err := u.repo.SetPermissions(ctx, id, unique); err != nil {
		return nil, apperror.Internal(err)
	}
	u.invalidate(ctx, id)
	recordAudit(ctx, u.auditor, audit.Event{
		Action:  audit.ActionRolePermissionsChanged,
		Target:  role.Name,
		Details: map[string]interface{}{"permissions": unique},
	})
	role.Permissions = unique
	return role, nil
}

func (u *roleUsecase) PermissionsOf(ctx context.Context, roleID int64) (map[string]bool, error) {
	codes, err := cache.Remember(ctx, u.cache, permissionKey(roleID), permissionTTL, func(ctx context.Context) ([]string, error) {
		return u.repo.Permissions(ctx, roleID)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set, nil
}

func (u *roleUsecase) SyncPermissions(ctx context.Context, perms []domain.Permission) error {
	if err := u.repo.UpsertPermissions(ctx, perms); err != nil {
		return fmt.Errorf("sync permissions: %w", err)
	}
	return nil
}

func (u *roleUsecase) invalidate(ctx context.Context, roleID int64) {
	if err := u.cache.Delete(ctx, permissionKey(roleID)); err != nil {
		logger.FromContext(ctx).Warn("permission cache invalidation failed", "role_id", roleID, "error", err)
	}
}
