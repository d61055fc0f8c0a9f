package postgres

import (
	"context"
	"fmt"

	"go-occupational-backend/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

const userColumns = `u.id::text, u.email, u.full_name, u.role_id, r.name, r.global, u.active, u.created_at, u.updated_at,
	COALESCE((SELECT array_agg(uc.company_id ORDER BY uc.company_id) FROM user_companies uc WHERE uc.user_id = u.id), '{}')`

const userJoins = `users u JOIN roles r ON r.id = u.role_id`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	u.Companies = []int64{}
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.RoleID, &u.Role, &u.Global, &u.Active,
		&u.CreatedAt, &u.UpdatedAt, &u.Companies)
	return u, err
}

// Create provisions the user with the named role. A concurrent first login surfaces as ErrDuplicate.
func (r *userRepo) Create(ctx context.Context, user *domain.User, roleName string) error {
	query := `INSERT INTO users (id, email, full_name, role_id, active)
		SELECT $1::uuid, $2, $3, r.id, TRUE FROM roles r WHERE r.name = $4`
	return affected(r.db.Exec(ctx, query, user.ID, user.Email, user.FullName, roleName))
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM `+userJoins+` WHERE u.id = $1::uuid`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	where := squirrel.And{}
	if f.RoleID != nil {
		where = append(where, squirrel.Eq{"u.role_id": *f.RoleID})
	}
	if f.Active != nil {
		where = append(where, squirrel.Eq{"u.active": *f.Active})
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"u.email": pattern},
			squirrel.ILike{"u.full_name": pattern},
		})
	}

	total, err := countRows(ctx, r.db, psql.Select("COUNT(*)").From("users u").Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := psql.Select(userColumns).From(userJoins).Where(where).OrderBy("u.created_at DESC")
	users, err := queryList(ctx, r.db, paginate(q, f.PageRequest), scanUser)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) SetRole(ctx context.Context, id string, roleID int64) error {
	return affected(r.db.Exec(ctx,
		`UPDATE users SET role_id = $2, updated_at = NOW() WHERE id = $1::uuid`, id, roleID))
}

// SetCompanies replaces the user's memberships.
func (r *userRepo) SetCompanies(ctx context.Context, id string, companyIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_companies WHERE user_id = $1::uuid`, id); err != nil {
		return err
	}
	if len(companyIDs) > 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO user_companies (user_id, company_id) SELECT $1::uuid, unnest($2::bigint[])`,
			id, pq.Array(companyIDs))
		if err != nil {
			return mapErr(err)
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET updated_at = NOW() WHERE id = $1::uuid`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *userRepo) SetActive(ctx context.Context, id string, active bool) error {
	return affected(r.db.Exec(ctx,
		`UPDATE users SET active = $2, updated_at = NOW() WHERE id = $1::uuid`, id, active))
}

// ListByCompany returns the active members of a company.
func (r *userRepo) ListByCompany(ctx context.Context, companyID int64) ([]domain.User, error) {
	q := psql.Select(userColumns).From(userJoins).
		Where(squirrel.And{
			squirrel.Eq{"u.active": true},
			squirrel.Expr("EXISTS (SELECT 1 FROM user_companies uc WHERE uc.user_id = u.id AND uc.company_id = ?)", companyID),
		}).
		OrderBy("u.email")
	return queryList(ctx, r.db, q, scanUser)
}
