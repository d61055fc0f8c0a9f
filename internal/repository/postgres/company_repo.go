package postgres

import (
	"context"

	"go-occupational-backend/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type companyRepo struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) domain.CompanyRepository {
	return &companyRepo{db: db}
}

const companyColumns = `id, kind, nit, verification_digit, legal_name, trade_name, email, phone, address,
	country_id, department_id, city_id, contact_name, active, created_at, updated_at`

func scanCompany(row pgx.Row) (domain.Company, error) {
	var c domain.Company
	err := row.Scan(
		&c.ID, &c.Kind, &c.NIT, &c.VerificationDigit, &c.LegalName, &c.TradeName, &c.Email, &c.Phone, &c.Address,
		&c.CountryID, &c.DepartmentID, &c.CityID, &c.ContactName, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *companyRepo) Create(ctx context.Context, c *domain.Company) error {
	query := `INSERT INTO companies (kind, nit, verification_digit, legal_name, trade_name, email, phone, address,
			country_id, department_id, city_id, contact_name, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		c.Kind, c.NIT, c.VerificationDigit, c.LegalName, c.TradeName, c.Email, c.Phone, c.Address,
		c.CountryID, c.DepartmentID, c.CityID, c.ContactName, c.Active,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapErr(err)
}

func (r *companyRepo) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	c, err := scanCompany(r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *companyRepo) GetByNIT(ctx context.Context, nit string) (*domain.Company, error) {
	c, err := scanCompany(r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE nit = $1`, nit))
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *companyRepo) List(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, int64, error) {
	where := squirrel.And{}
	if f.IDs != nil {
		where = append(where, squirrel.Eq{"id": f.IDs})
	}
	if f.Kind != "" {
		where = append(where, squirrel.Eq{"kind": f.Kind})
	}
	if f.Active != nil {
		where = append(where, squirrel.Eq{"active": *f.Active})
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"legal_name": pattern},
			squirrel.ILike{"trade_name": pattern},
			squirrel.ILike{"nit": pattern},
		})
	}

	total, err := countRows(ctx, r.db, psql.Select("COUNT(*)").From("companies").Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := psql.Select(companyColumns).From("companies").Where(where).OrderBy("legal_name", "id")
	companies, err := queryList(ctx, r.db, paginate(q, f.PageRequest), scanCompany)
	if err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

func (r *companyRepo) Update(ctx context.Context, c *domain.Company) error {
	query := `UPDATE companies SET kind = $2, nit = $3, verification_digit = $4, legal_name = $5, trade_name = $6,
			email = $7, phone = $8, address = $9, country_id = $10, department_id = $11, city_id = $12,
			contact_name = $13, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		c.ID, c.Kind, c.NIT, c.VerificationDigit, c.LegalName, c.TradeName,
		c.Email, c.Phone, c.Address, c.CountryID, c.DepartmentID, c.CityID,
		c.ContactName,
	).Scan(&c.UpdatedAt)
	return mapErr(err)
}

func (r *companyRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return affected(r.db.Exec(ctx,
		`UPDATE companies SET active = $2, updated_at = NOW() WHERE id = $1`, id, active))
}

func (r *companyRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id))
}

func (r *companyRepo) CountReferences(ctx context.Context, id int64) (int64, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM candidates WHERE company_id = $1) +
		(SELECT COUNT(*) FROM service_orders WHERE company_id = $1 OR provider_id = $1)`
	var n int64
	err := r.db.QueryRow(ctx, query, id).Scan(&n)
	return n, err
}
