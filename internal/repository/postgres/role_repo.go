package postgres

import (
	"context"
	"fmt"

	"go-occupational-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type roleRepo struct {
	db *pgxpool.Pool
}

func NewRoleRepository(db *pgxpool.Pool) domain.RoleRepository {
	return &roleRepo{db: db}
}

const roleColumns = `id, name, description, system, global, created_at`

func scanRole(row pgx.Row) (domain.Role, error) {
	var role domain.Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.System, &role.Global, &role.CreatedAt)
	return role, err
}

func (r *roleRepo) List(ctx context.Context) ([]domain.Role, error) {
	return queryList(ctx, r.db, psql.Select(roleColumns).From("roles").OrderBy("name"), scanRole)
}

func (r *roleRepo) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	role, err := scanRole(r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &role, nil
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	role, err := scanRole(r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
	if err != nil {
		return nil, mapErr(err)
	}
	return &role, nil
}

func (r *roleRepo) Create(ctx context.Context, role *domain.Role) error {
	query := `INSERT INTO roles (name, description, system, global) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, role.Name, role.Description, role.System, role.Global).
		Scan(&role.ID, &role.CreatedAt)
	return mapErr(err)
}

func (r *roleRepo) Update(ctx context.Context, role *domain.Role) error {
	return affected(r.db.Exec(ctx,
		`UPDATE roles SET name = $2, description = $3, global = $4 WHERE id = $1`,
		role.ID, role.Name, role.Description, role.Global))
}

func (r *roleRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id))
}

func (r *roleRepo) CountUsers(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role_id = $1`, id).Scan(&n)
	return n, err
}

func (r *roleRepo) Permissions(ctx context.Context, roleID int64) ([]string, error) {
	codes := []string{}
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(array_agg(permission_code ORDER BY permission_code), '{}') FROM role_permissions WHERE role_id = $1`,
		roleID).Scan(&codes)
	return codes, err
}

// SetPermissions replaces the role's grants.
func (r *roleRepo) SetPermissions(ctx context.Context, roleID int64, codes []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return err
	}
	if len(codes) > 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_code) SELECT $1, unnest($2::text[])`,
			roleID, pq.Array(codes))
		if err != nil {
			return mapErr(err)
		}
	}
	return tx.Commit(ctx)
}

func (r *roleRepo) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	q := psql.Select("code", "module", "description").From("permissions").OrderBy("module", "code")
	return queryList(ctx, r.db, q, func(row pgx.Row) (domain.Permission, error) {
		var p domain.Permission
		err := row.Scan(&p.Code, &p.Module, &p.Description)
		return p, err
	})
}

// UpsertPermissions makes the permissions table mirror perms. Codes no longer registered are
// removed together with their grants.
func (r *roleRepo) UpsertPermissions(ctx context.Context, perms []domain.Permission) error {
	codes := make([]string, len(perms))
	modules := make([]string, len(perms))
	descriptions := make([]string, len(perms))
	for i, p := range perms {
		codes[i], modules[i], descriptions[i] = p.Code, p.Module, p.Description
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO permissions (code, module, description)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[])
		ON CONFLICT (code) DO UPDATE SET module = EXCLUDED.module, description = EXCLUDED.description`,
		pq.Array(codes), pq.Array(modules), pq.Array(descriptions))
	if err != nil {
		return fmt.Errorf("failed to upsert permissions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM permissions WHERE code <> ALL($1::text[])`, pq.Array(codes)); err != nil {
		return fmt.Errorf("failed to prune permissions: %w", err)
	}
	return tx.Commit(ctx)
}
