package postgres

import (
	"context"

	"go-occupational-backend/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type candidateRepo struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepo{db: db}
}

const candidateColumns = `id, company_id, candidate_type_id, document_kind, document_number, first_name, last_name,
	email, phone, birth_date, gender, country_id, department_id, city_id, address, position, status,
	created_at, updated_at`

func scanCandidate(row pgx.Row) (domain.Candidate, error) {
	var c domain.Candidate
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.CandidateTypeID, &c.DocumentKind, &c.DocumentNumber, &c.FirstName, &c.LastName,
		&c.Email, &c.Phone, &c.BirthDate, &c.Gender, &c.CountryID, &c.DepartmentID, &c.CityID,
		&c.Address, &c.Position, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *candidateRepo) Create(ctx context.Context, c *domain.Candidate) error {
	query := `INSERT INTO candidates (company_id, candidate_type_id, document_kind, document_number, first_name,
			last_name, email, phone, birth_date, gender, country_id, department_id, city_id, address, position, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		c.CompanyID, c.CandidateTypeID, c.DocumentKind, c.DocumentNumber, c.FirstName,
		c.LastName, c.Email, c.Phone, c.BirthDate, c.Gender, c.CountryID, c.DepartmentID, c.CityID,
		c.Address, c.Position, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapErr(err)
}

func (r *candidateRepo) GetByID(ctx context.Context, id int64) (*domain.Candidate, error) {
	c, err := scanCandidate(r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *candidateRepo) GetByDocument(ctx context.Context, kind, number string) (*domain.Candidate, error) {
	c, err := scanCandidate(r.db.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE document_kind = $1 AND document_number = $2`,
		kind, number))
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *candidateRepo) List(ctx context.Context, f domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	where := squirrel.And{}
	if f.CompanyID != nil {
		where = append(where, squirrel.Eq{"company_id": *f.CompanyID})
	}
	if f.CandidateTypeID != nil {
		where = append(where, squirrel.Eq{"candidate_type_id": *f.CandidateTypeID})
	}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"status": f.Status})
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
			squirrel.ILike{"document_number": pattern},
		})
	}

	total, err := countRows(ctx, r.db, psql.Select("COUNT(*)").From("candidates").Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := psql.Select(candidateColumns).From("candidates").Where(where).OrderBy("created_at DESC", "id DESC")
	candidates, err := queryList(ctx, r.db, paginate(q, f.PageRequest), scanCandidate)
	if err != nil {
		return nil, 0, err
	}
	return candidates, total, nil
}

func (r *candidateRepo) Update(ctx context.Context, c *domain.Candidate) error {
	query := `UPDATE candidates SET candidate_type_id = $2, document_kind = $3, document_number = $4,
			first_name = $5, last_name = $6, email = $7, phone = $8, birth_date = $9, gender = $10,
			country_id = $11, department_id = $12, city_id = $13, address = $14, position = $15,
			status = $16, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		c.ID, c.CandidateTypeID, c.DocumentKind, c.DocumentNumber,
		c.FirstName, c.LastName, c.Email, c.Phone, c.BirthDate, c.Gender,
		c.CountryID, c.DepartmentID, c.CityID, c.Address, c.Position, c.Status,
	).Scan(&c.UpdatedAt)
	return mapErr(err)
}

func (r *candidateRepo) UpdateStatus(ctx context.Context, id int64, status domain.CandidateStatus) error {
	return affected(r.db.Exec(ctx,
		`UPDATE candidates SET status = $2, updated_at = NOW() WHERE id = $1`, id, status))
}

func (r *candidateRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id))
}

func (r *candidateRepo) CountOpenOrders(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM service_orders WHERE candidate_id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED')`,
		id).Scan(&n)
	return n, err
}
