package postgres

import (
	"context"

	"go-occupational-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogRepo struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) domain.CatalogRepository {
	return &catalogRepo{db: db}
}

const (
	candidateTypeColumns = `id, name, description, active, created_at, updated_at`
	documentTypeColumns  = `id, code, name, description, active, created_at, updated_at`
	requirementSelect    = `SELECT r.id, r.candidate_type_id, r.document_type_id, dt.code, dt.name, r.mandatory, r.created_at
		FROM document_requirements r
		JOIN document_types dt ON dt.id = r.document_type_id`
)

func scanCandidateType(row pgx.Row) (domain.CandidateType, error) {
	var ct domain.CandidateType
	err := row.Scan(&ct.ID, &ct.Name, &ct.Description, &ct.Active, &ct.CreatedAt, &ct.UpdatedAt)
	return ct, err
}

func scanDocumentType(row pgx.Row) (domain.DocumentType, error) {
	var dt domain.DocumentType
	err := row.Scan(&dt.ID, &dt.Code, &dt.Name, &dt.Description, &dt.Active, &dt.CreatedAt, &dt.UpdatedAt)
	return dt, err
}

func scanRequirement(row pgx.Row) (domain.DocumentRequirement, error) {
	var req domain.DocumentRequirement
	err := row.Scan(&req.ID, &req.CandidateTypeID, &req.DocumentTypeID, &req.DocumentTypeCode,
		&req.DocumentTypeName, &req.Mandatory, &req.CreatedAt)
	return req, err
}

func (r *catalogRepo) ListCandidateTypes(ctx context.Context, onlyActive bool) ([]domain.CandidateType, error) {
	q := psql.Select(candidateTypeColumns).From("candidate_types").OrderBy("name")
	if onlyActive {
		q = q.Where("active")
	}
	return queryList(ctx, r.db, q, scanCandidateType)
}

func (r *catalogRepo) GetCandidateType(ctx context.Context, id int64) (*domain.CandidateType, error) {
	ct, err := scanCandidateType(r.db.QueryRow(ctx,
		`SELECT `+candidateTypeColumns+` FROM candidate_types WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &ct, nil
}

func (r *catalogRepo) CreateCandidateType(ctx context.Context, ct *domain.CandidateType) error {
	query := `INSERT INTO candidate_types (name, description, active)
		VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, ct.Name, ct.Description, ct.Active).
		Scan(&ct.ID, &ct.CreatedAt, &ct.UpdatedAt)
	return mapErr(err)
}

func (r *catalogRepo) UpdateCandidateType(ctx context.Context, ct *domain.CandidateType) error {
	query := `UPDATE candidate_types SET name = $2, description = $3, active = $4, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query, ct.ID, ct.Name, ct.Description, ct.Active).Scan(&ct.UpdatedAt)
	return mapErr(err)
}

func (r *catalogRepo) ListDocumentTypes(ctx context.Context, onlyActive bool) ([]domain.DocumentType, error) {
	q := psql.Select(documentTypeColumns).From("document_types").OrderBy("name")
	if onlyActive {
		q = q.Where("active")
	}
	return queryList(ctx, r.db, q, scanDocumentType)
}

func (r *catalogRepo) GetDocumentType(ctx context.Context, id int64) (*domain.DocumentType, error) {
	dt, err := scanDocumentType(r.db.QueryRow(ctx,
		`SELECT `+documentTypeColumns+` FROM document_types WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &dt, nil
}

func (r *catalogRepo) CreateDocumentType(ctx context.Context, dt *domain.DocumentType) error {
	query := `INSERT INTO document_types (code, name, description, active)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, dt.Code, dt.Name, dt.Description, dt.Active).
		Scan(&dt.ID, &dt.CreatedAt, &dt.UpdatedAt)
	return mapErr(err)
}

func (r *catalogRepo) UpdateDocumentType(ctx context.Context, dt *domain.DocumentType) error {
	query := `UPDATE document_types SET code = $2, name = $3, description = $4, active = $5, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query, dt.ID, dt.Code, dt.Name, dt.Description, dt.Active).Scan(&dt.UpdatedAt)
	return mapErr(err)
}

func (r *catalogRepo) ListRequirements(ctx context.Context, candidateTypeID int64) ([]domain.DocumentRequirement, error) {
	rows, err := r.db.Query(ctx, requirementSelect+` WHERE r.candidate_type_id = $1 ORDER BY dt.name`, candidateTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reqs := []domain.DocumentRequirement{}
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *catalogRepo) GetRequirement(ctx context.Context, id int64) (*domain.DocumentRequirement, error) {
	req, err := scanRequirement(r.db.QueryRow(ctx, requirementSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &req, nil
}

func (r *catalogRepo) FindRequirement(ctx context.Context, candidateTypeID, documentTypeID int64) (*domain.DocumentRequirement, error) {
	req, err := scanRequirement(r.db.QueryRow(ctx,
		requirementSelect+` WHERE r.candidate_type_id = $1 AND r.document_type_id = $2`,
		candidateTypeID, documentTypeID))
	if err != nil {
		return nil, mapErr(err)
	}
	return &req, nil
}

func (r *catalogRepo) CreateRequirement(ctx context.Context, req *domain.DocumentRequirement) error {
	query := `INSERT INTO document_requirements (candidate_type_id, document_type_id, mandatory)
		VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, req.CandidateTypeID, req.DocumentTypeID, req.Mandatory).
		Scan(&req.ID, &req.CreatedAt)
	return mapErr(err)
}

func (r *catalogRepo) DeleteRequirement(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM document_requirements WHERE id = $1`, id))
}
