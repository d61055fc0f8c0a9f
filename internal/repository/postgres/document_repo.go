package postgres

import (
	"context"

	"go-occupational-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type documentRepo struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) domain.DocumentRepository {
	return &documentRepo{db: db}
}

const documentSelect = `SELECT d.id, d.candidate_id, d.document_type_id, dt.name, d.file_key, d.file_name,
		d.content_type, d.size, d.status, d.notes, d.reviewed_by::text, d.reviewed_at, d.created_at
	FROM candidate_documents d
	JOIN document_types dt ON dt.id = d.document_type_id`

func scanDocument(row pgx.Row) (domain.CandidateDocument, error) {
	var d domain.CandidateDocument
	err := row.Scan(
		&d.ID, &d.CandidateID, &d.DocumentTypeID, &d.DocumentTypeName, &d.FileKey, &d.FileName,
		&d.ContentType, &d.Size, &d.Status, &d.Notes, &d.ReviewedBy, &d.ReviewedAt, &d.CreatedAt,
	)
	return d, err
}

func (r *documentRepo) Create(ctx context.Context, d *domain.CandidateDocument) error {
	query := `INSERT INTO candidate_documents (candidate_id, document_type_id, file_key, file_name, content_type,
			size, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		d.CandidateID, d.DocumentTypeID, d.FileKey, d.FileName, d.ContentType,
		d.Size, d.Status, d.Notes,
	).Scan(&d.ID, &d.CreatedAt)
	return mapErr(err)
}

func (r *documentRepo) GetByID(ctx context.Context, id int64) (*domain.CandidateDocument, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, documentSelect+` WHERE d.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

// ListByCandidate returns the candidate's uploads, newest first.
func (r *documentRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.CandidateDocument, error) {
	rows, err := r.db.Query(ctx, documentSelect+` WHERE d.candidate_id = $1 ORDER BY d.created_at DESC, d.id DESC`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []domain.CandidateDocument{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *documentRepo) LatestByType(ctx context.Context, candidateID, documentTypeID int64) (*domain.CandidateDocument, error) {
	d, err := scanDocument(r.db.QueryRow(ctx,
		documentSelect+` WHERE d.candidate_id = $1 AND d.document_type_id = $2 ORDER BY d.created_at DESC, d.id DESC LIMIT 1`,
		candidateID, documentTypeID))
	if err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *documentRepo) Review(ctx context.Context, d *domain.CandidateDocument) error {
	return affected(r.db.Exec(ctx,
		`UPDATE candidate_documents SET status = $2, notes = $3, reviewed_by = $4::uuid, reviewed_at = $5 WHERE id = $1`,
		d.ID, d.Status, d.Notes, d.ReviewedBy, d.ReviewedAt))
}

func (r *documentRepo) Delete(ctx context.Context, id int64) error {
	return affected(r.db.Exec(ctx, `DELETE FROM candidate_documents WHERE id = $1`, id))
}
