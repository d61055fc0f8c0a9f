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

type solicitudRepo struct {
	db *pgxpool.Pool
}

func NewSolicitudRepository(db *pgxpool.Pool) domain.SolicitudRepository {
	return &solicitudRepo{db: db}
}

const solicitudColumns = `s.id::text, s.company_id, s.candidate_id, s.kind, s.title, s.description, s.status,
	s.assigned_to::text, s.created_by::text, s.created_at, s.updated_at,
	COALESCE(NULLIF(c.trade_name, ''), c.legal_name)`

const solicitudJoins = `solicitudes s JOIN companies c ON c.id = s.company_id`

func scanSolicitud(row pgx.Row) (domain.Solicitud, error) {
	var s domain.Solicitud
	err := row.Scan(&s.ID, &s.CompanyID, &s.CandidateID, &s.Kind, &s.Title, &s.Description, &s.Status,
		&s.AssignedTo, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt, &s.CompanyName)
	return s, err
}

func (r *solicitudRepo) Create(ctx context.Context, s *domain.Solicitud) error {
	query := `INSERT INTO solicitudes (id, company_id, candidate_id, kind, title, description, status, created_by)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8::uuid) RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		s.ID, s.CompanyID, s.CandidateID, s.Kind, s.Title, s.Description, s.Status, s.CreatedBy,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapErr(err)
}

func (r *solicitudRepo) GetByID(ctx context.Context, id string) (*domain.Solicitud, error) {
	s, err := scanSolicitud(r.db.QueryRow(ctx, `SELECT `+solicitudColumns+` FROM `+solicitudJoins+` WHERE s.id = $1::uuid`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

// History returns the status changes in the order they happened.
func (r *solicitudRepo) History(ctx context.Context, id string) ([]domain.SolicitudEvent, error) {
	q := psql.Select("id", "solicitud_id::text", "from_status", "to_status", "actor::text", "note", "created_at").
		From("solicitud_events").
		Where("solicitud_id = ?::uuid", id).
		OrderBy("created_at", "id")
	return queryList(ctx, r.db, q, func(row pgx.Row) (domain.SolicitudEvent, error) {
		var ev domain.SolicitudEvent
		err := row.Scan(&ev.ID, &ev.SolicitudID, &ev.From, &ev.To, &ev.Actor, &ev.Note, &ev.CreatedAt)
		return ev, err
	})
}

func (r *solicitudRepo) List(ctx context.Context, f domain.SolicitudFilter) ([]domain.Solicitud, int64, error) {
	where := squirrel.And{}
	if f.CompanyID != nil {
		where = append(where, squirrel.Eq{"s.company_id": *f.CompanyID})
	}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"s.status": f.Status})
	}
	if f.Kind != "" {
		where = append(where, squirrel.Eq{"s.kind": f.Kind})
	}
	if f.AssignedTo != nil {
		where = append(where, squirrel.Expr("s.assigned_to::text = ?", *f.AssignedTo))
	}

	total, err := countRows(ctx, r.db, psql.Select("COUNT(*)").From("solicitudes s").Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := psql.Select(solicitudColumns).From(solicitudJoins).Where(where).OrderBy("s.updated_at DESC")
	items, err := queryList(ctx, r.db, paginate(q, f.PageRequest), scanSolicitud)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Transition is a compare-and-set on the status followed by the history insert.
func (r *solicitudRepo) Transition(ctx context.Context, ev *domain.SolicitudEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE solicitudes SET status = $2, updated_at = NOW() WHERE id = $1::uuid AND status = $3`,
		ev.SolicitudID, ev.To, ev.From)
	if err := affected(tag, err); err != nil {
		return err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO solicitud_events (solicitud_id, from_status, to_status, actor, note)
		VALUES ($1::uuid, $2, $3, $4::uuid, $5) RETURNING id, created_at`,
		ev.SolicitudID, ev.From, ev.To, ev.Actor, ev.Note,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	return tx.Commit(ctx)
}

func (r *solicitudRepo) Assign(ctx context.Context, id string, userID *string) error {
	return affected(r.db.Exec(ctx,
		`UPDATE solicitudes SET assigned_to = $2::uuid, updated_at = NOW() WHERE id = $1::uuid`, id, userID))
}

// ListStale returns open solicitudes untouched since olderThan, oldest first.
func (r *solicitudRepo) ListStale(ctx context.Context, olderThan time.Time) ([]domain.Solicitud, error) {
	q := psql.Select(solicitudColumns).From(solicitudJoins).
		Where(squirrel.And{
			squirrel.Eq{"s.status": []string{string(domain.SolicitudPending), string(domain.SolicitudInReview)}},
			squirrel.Lt{"s.updated_at": olderThan},
		}).
		OrderBy("s.updated_at")
	return queryList(ctx, r.db, q, scanSolicitud)
}
