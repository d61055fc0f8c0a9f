package postgres

import (
	"context"

	"go-occupational-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type locationRepo struct {
	db *pgxpool.Pool
}

func NewLocationRepository(db *pgxpool.Pool) domain.LocationRepository {
	return &locationRepo{db: db}
}

func scanCountry(row pgx.Row) (domain.Country, error) {
	var c domain.Country
	err := row.Scan(&c.ID, &c.Code, &c.Name)
	return c, err
}

func scanDepartment(row pgx.Row) (domain.Department, error) {
	var d domain.Department
	err := row.Scan(&d.ID, &d.CountryID, &d.Code, &d.Name)
	return d, err
}

func scanCity(row pgx.Row) (domain.City, error) {
	var c domain.City
	err := row.Scan(&c.ID, &c.DepartmentID, &c.Code, &c.Name)
	return c, err
}

func (r *locationRepo) ListCountries(ctx context.Context) ([]domain.Country, error) {
	q := psql.Select("id", "code", "name").From("countries").OrderBy("name")
	return queryList(ctx, r.db, q, scanCountry)
}

func (r *locationRepo) ListDepartments(ctx context.Context, countryID int64) ([]domain.Department, error) {
	q := psql.Select("id", "country_id", "code", "name").From("departments").
		Where("country_id = ?", countryID).OrderBy("name")
	return queryList(ctx, r.db, q, scanDepartment)
}

func (r *locationRepo) ListCities(ctx context.Context, departmentID int64) ([]domain.City, error) {
	q := psql.Select("id", "department_id", "code", "name").From("cities").
		Where("department_id = ?", departmentID).OrderBy("name")
	return queryList(ctx, r.db, q, scanCity)
}

func (r *locationRepo) GetCountry(ctx context.Context, id int64) (*domain.Country, error) {
	c, err := scanCountry(r.db.QueryRow(ctx, `SELECT id, code, name FROM countries WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *locationRepo) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	d, err := scanDepartment(r.db.QueryRow(ctx, `SELECT id, country_id, code, name FROM departments WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *locationRepo) GetCity(ctx context.Context, id int64) (*domain.City, error) {
	c, err := scanCity(r.db.QueryRow(ctx, `SELECT id, department_id, code, name FROM cities WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}
