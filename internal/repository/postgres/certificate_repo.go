package postgres

import (
	"context"
	"fmt"
	"time"

	"go-occupational-backend/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type certificateRepo struct {
	db *pgxpool.Pool
}

func NewCertificateRepository(db *pgxpool.Pool) domain.CertificateRepository {
	return &certificateRepo{db: db}
}

const certificateColumns = `ct.id, ct.code, ct.order_id, ct.candidate_id, ct.company_id, ct.concept, ct.restrictions,
	ct.recommendations, ct.physician_name, ct.physician_license, ct.issued_at, ct.valid_until, ct.signature_key,
	ct.created_at, cand.first_name || ' ' || cand.last_name, cand.document_kind || ' ' || cand.document_number,
	COALESCE(NULLIF(co.trade_name, ''), co.legal_name), o.number`

const certificateJoins = `certificates ct
	JOIN candidates cand ON cand.id = ct.candidate_id
	JOIN companies co ON co.id = ct.company_id
	JOIN service_orders o ON o.id = ct.order_id`

func scanCertificate(row pgx.Row) (domain.Certificate, error) {
	var c domain.Certificate
	err := row.Scan(
		&c.ID, &c.Code, &c.OrderID, &c.CandidateID, &c.CompanyID, &c.Concept, &c.Restrictions,
		&c.Recommendations, &c.PhysicianName, &c.PhysicianLicense, &c.IssuedAt, &c.ValidUntil, &c.SignatureKey,
		&c.CreatedAt, &c.CandidateName, &c.CandidateDoc, &c.CompanyName, &c.OrderNumber,
	)
	return c, err
}

// Create stores the certificate and marks the candidate completed. When completeOrder is set
// the in-progress order is completed in the same transaction.
func (r *certificateRepo) Create(ctx context.Context, c *domain.Certificate, completeOrder bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO certificates (code, order_id, candidate_id, company_id, concept, restrictions,
			recommendations, physician_name, physician_license, issued_at, valid_until, signature_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`
	err = tx.QueryRow(ctx, query,
		c.Code, c.OrderID, c.CandidateID, c.CompanyID, c.Concept, c.Restrictions,
		c.Recommendations, c.PhysicianName, c.PhysicianLicense, c.IssuedAt, c.ValidUntil, c.SignatureKey,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return mapErr(err)
	}

	if completeOrder {
		_, err = tx.Exec(ctx,
			`UPDATE service_orders SET status = 'COMPLETED', updated_at = NOW() WHERE id = $1 AND status = 'IN_PROGRESS'`,
			c.OrderID)
		if err != nil {
			return fmt.Errorf("failed to complete order: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE candidates SET status = 'COMPLETED', updated_at = NOW() WHERE id = $1`, c.CandidateID)
	if err != nil {
		return fmt.Errorf("failed to complete candidate: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *certificateRepo) getOne(ctx context.Context, where string, arg interface{}) (*domain.Certificate, error) {
	c, err := scanCertificate(r.db.QueryRow(ctx, `SELECT `+certificateColumns+` FROM `+certificateJoins+` WHERE `+where, arg))
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *certificateRepo) GetByID(ctx context.Context, id int64) (*domain.Certificate, error) {
	return r.getOne(ctx, "ct.id = $1", id)
}

func (r *certificateRepo) GetByCode(ctx context.Context, code string) (*domain.Certificate, error) {
	return r.getOne(ctx, "ct.code = $1", code)
}

func (r *certificateRepo) GetByOrderID(ctx context.Context, orderID int64) (*domain.Certificate, error) {
	return r.getOne(ctx, "ct.order_id = $1", orderID)
}

func (r *certificateRepo) List(ctx context.Context, f domain.CertificateFilter) ([]domain.Certificate, int64, error) {
	where := squirrel.And{}
	if f.CompanyID != nil {
		where = append(where, squirrel.Eq{"ct.company_id": *f.CompanyID})
	}
	if f.CandidateID != nil {
		where = append(where, squirrel.Eq{"ct.candidate_id": *f.CandidateID})
	}
	if f.Concept != "" {
		where = append(where, squirrel.Eq{"ct.concept": f.Concept})
	}
	if f.ExpiringWithinDays > 0 {
		where = append(where, squirrel.Expr(
			"ct.valid_until >= NOW() AND ct.valid_until < NOW() + make_interval(days => ?)", f.ExpiringWithinDays))
	}

	total, err := countRows(ctx, r.db, psql.Select("COUNT(*)").From("certificates ct").Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := psql.Select(certificateColumns).From(certificateJoins).Where(where).OrderBy("ct.issued_at DESC", "ct.id DESC")
	certs, err := queryList(ctx, r.db, paginate(q, f.PageRequest), scanCertificate)
	if err != nil {
		return nil, 0, err
	}
	return certs, total, nil
}

// ListExpiring returns certificates whose validity ends in [from, to), soonest first.
func (r *certificateRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]domain.Certificate, error) {
	q := psql.Select(certificateColumns).From(certificateJoins).
		Where(squirrel.And{
			squirrel.GtOrEq{"ct.valid_until": from},
			squirrel.Lt{"ct.valid_until": to},
		}).
		OrderBy("ct.valid_until", "ct.id")
	return queryList(ctx, r.db, q, scanCertificate)
}

func (r *certificateRepo) SetSignature(ctx context.Context, id int64, key string) error {
	return affected(r.db.Exec(ctx, `UPDATE certificates SET signature_key = $2 WHERE id = $1`, id, key))
}
