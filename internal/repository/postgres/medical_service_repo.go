package postgres

import (
	"context"

	"go-occupational-backend/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type medicalServiceRepo struct {
	db *pgxpool.Pool
}

func NewMedicalServiceRepository(db *pgxpool.Pool) domain.MedicalServiceRepository {
	return &medicalServiceRepo{db: db}
}

const serviceColumns = `id, code, name, category, price, active, created_at, updated_at`

func scanService(row pgx.Row) (domain.MedicalService, error) {
	var s domain.MedicalService
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Category, &s.Price, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *medicalServiceRepo) Create(ctx context.Context, s *domain.MedicalService) error {
	query := `INSERT INTO medical_services (code, name, category, price, active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, s.Code, s.Name, s.Category, s.Price, s.Active).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapErr(err)
}

func (r *medicalServiceRepo) GetByID(ctx context.Context, id int64) (*domain.MedicalService, error) {
	s, err := scanService(r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM medical_services WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

// GetByIDs returns the services found; missing ids are simply absent.
func (r *medicalServiceRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.MedicalService, error) {
	if len(ids) == 0 {
		return []domain.MedicalService{}, nil
	}
	q := psql.Select(serviceColumns).From("medical_services").Where(squirrel.Eq{"id": ids})
	return queryList(ctx, r.db, q, scanService)
}

func (r *medicalServiceRepo) List(ctx context.Context, f domain.MedicalServiceFilter) ([]domain.MedicalService, int64, error) {
	where := squirrel.And{}
	if f.Category != "" {
		where = append(where, squirrel.Eq{"category": f.Category})
	}
	if f.Active != nil {
		where = append(where, squirrel.Eq{"active": *f.Active})
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}

	total, err := countRows(ctx, r.db, psql.Select("COUNT(*)").From("medical_services").Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := psql.Select(serviceColumns).From("medical_services").Where(where).OrderBy("category", "name")
	services, err := queryList(ctx, r.db, paginate(q, f.PageRequest), scanService)
	if err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

func (r *medicalServiceRepo) Update(ctx context.Context, s *domain.MedicalService) error {
	query := `UPDATE medical_services SET code = $2, name = $3, category = $4, price = $5, active = $6,
			updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query, s.ID, s.Code, s.Name, s.Category, s.Price, s.Active).Scan(&s.UpdatedAt)
	return mapErr(err)
}

func (r *medicalServiceRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return affected(r.db.Exec(ctx,
		`UPDATE medical_services SET active = $2, updated_at = NOW() WHERE id = $1`, id, active))
}
