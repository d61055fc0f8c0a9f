package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/apperror"
	"go-occupational-backend/pkg/audit"
	"go-occupational-backend/pkg/logger"
)

type userUsecase struct {
	userRepo    domain.UserRepository
	roleRepo    domain.RoleRepository
	companyRepo domain.CompanyRepository
	roles       domain.RoleUsecase
	auditor     Auditor
	defaultRole string
}

func NewUserUsecase(
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	companyRepo domain.CompanyRepository,
	roles domain.RoleUsecase,
	auditor Auditor,
	defaultRole string,
) domain.UserUsecase {
	if defaultRole == "" {
		defaultRole = domain.RolePending
	}
	return &userUsecase{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		companyRepo: companyRepo,
		roles:       roles,
		auditor:     auditor,
		defaultRole: defaultRole,
	}
}

// EnsureUser is called on every authenticated request. Unknown users get the default role.
func (u *userUsecase) EnsureUser(ctx context.Context, id, email string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	user = &domain.User{ID: id, Email: email, Active: true}
	if err := u.userRepo.Create(ctx, user, u.defaultRole); err != nil && !errors.Is(err, domain.ErrDuplicate) {
		return nil, apperror.Internal(err)
	}
	if u.auditor != nil {
		u.auditor.Record(ctx, audit.Event{Action: audit.ActionUserProvisioned, ActorID: id, ActorMail: email, Target: u.defaultRole})
	}
	logger.FromContext(ctx).Info("user provisioned", "user_id", id, "role", u.defaultRole)

	user, err = u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (u *userUsecase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return user, nil
}

func (u *userUsecase) ListUsers(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	f.PageRequest = f.PageRequest.Normalize()
	users, total, err := u.userRepo.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return users, total, nil
}

func (u *userUsecase) AssignRole(ctx context.Context, id string, roleID int64) (*domain.User, error) {
	role, err := u.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.BadRequest("invalid role")
		}
		return nil, apperror.Internal(err)
	}
	// only admins hand out admin
	if role.Name == domain.RoleAdmin {
		v, err := currentViewer(ctx)
		if err != nil {
			return nil, err
		}
		if !v.IsAdmin() {
			return nil, apperror.Forbidden("Only administrators can assign the admin role")
		}
	}
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	if err := u.userRepo.SetRole(ctx, id, role.ID); err != nil {
		return nil, notFound(err, "user not found")
	}
	recordAudit(ctx, u.auditor, audit.Event{
		Action:  audit.ActionUserRoleAssigned,
		Target:  id,
		Details: map[string]interface{}{"from": user.Role, "to": role.Name},
	})
	user.RoleID, user.Role, user.Global = role.ID, role.Name, role.Global
	return user, nil
}

func (u *userUsecase) SetCompanies(ctx context.Context, id string, companyIDs []int64) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	unique := make([]int64, 0, len(companyIDs))
	seen := make(map[int64]bool, len(companyIDs))
	for _, cid := range companyIDs {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		if _, err := u.companyRepo.GetByID(ctx, cid); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, apperror.BadRequest(fmt.Sprintf("company %d does not exist", cid))
			}
			return nil, apperror.Internal(err)
		}
		unique = append(unique, cid)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	if err := u.userRepo.SetCompanies(ctx, id, unique); err != nil {
		return nil, apperror.Internal(err)
	}
	recordAudit(ctx, u.auditor, audit.Event{
		Action:  audit.ActionUserCompaniesChanged,
		Target:  id,
		Details: map[string]interface{}{"companies": unique},
	})
	user.Companies = unique
	return user, nil
}

func (u *userUsecase) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	if v.UserID == id && !active {
		return nil, apperror.BadRequest("you cannot deactivate your own account")
	}
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	if err := u.userRepo.SetActive(ctx, id, active); err != nil {
		return nil, notFound(err, "user not found")
	}
	recordAudit(ctx, u.auditor, audit.Event{
		Action:  audit.ActionUserStatusChanged,
		Target:  id,
		Details: map[string]interface{}{"active": active},
	})
	user.Active = active
	return user, nil
}

// Session assembles what the client shows after login.
func (u *userUsecase) Session(ctx context.Context) (*domain.Session, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	user, err := u.userRepo.GetByID(ctx, v.UserID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}

	set, err := u.roles.PermissionsOf(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	perms := make([]string, 0, len(set))
	for code := range set {
		perms = append(perms, code)
	}
	sort.Strings(perms)

	session := &domain.Session{User: user, Permissions: perms, Companies: []domain.Company{}}
	if v.Global {
		active := true
		companies, _, err := u.companyRepo.List(ctx, domain.CompanyFilter{
			PageRequest: domain.PageRequest{Page: 1, Limit: domain.MaxPageSize},
			Active:      &active,
		})
		if err != nil {
			return nil, apperror.Internal(err)
		}
		session.Companies = companies
	} else {
		for _, id := range user.Companies {
			c, err := u.companyRepo.GetByID(ctx, id)
			if err != nil {
				logger.FromContext(ctx).Warn("session company not found", "company_id", id, "error", err)
				continue
			}
			session.Companies = append(session.Companies, *c)
		}
	}

	if v.CompanyID != nil {
		c, err := u.companyRepo.GetByID(ctx, *v.CompanyID)
		if err == nil {
			session.SelectedCompany = c
		}
	}
	return session, nil
}

func (u *userUsecase) SelectCompany(ctx context.Context, companyID int64) (*domain.Company, error) {
	v, err := currentViewer(ctx)
	if err != nil {
		return nil, err
	}
	if !v.BelongsTo(companyID) {
		return nil, apperror.Forbidden("You do not belong to this company")
	}
	c, err := u.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, notFound(err, "company not found")
	}
	if !c.Active {
		return nil, apperror.Unprocessable("company is inactive")
	}
	return c, nil
}
