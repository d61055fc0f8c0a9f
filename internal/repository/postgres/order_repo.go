package postgres

import (
	"context"
	"fmt"

	"go-occupational-backend/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `o.id, o.number, o.company_id, o.provider_id, o.candidate_id, o.status, o.scheduled_at,
	o.notes, o.total, COALESCE(o.created_by::text, ''), o.created_at, o.updated_at,
	COALESCE(NULLIF(c.trade_name, ''), c.legal_name), COALESCE(NULLIF(p.trade_name, ''), p.legal_name),
	cand.first_name || ' ' || cand.last_name`

const orderJoins = `service_orders o
	JOIN companies c ON c.id = o.company_id
	JOIN companies p ON p.id = o.provider_id
	JOIN candidates cand ON cand.id = o.candidate_id`

func scanOrder(row pgx.Row) (domain.ServiceOrder, error) {
	var o domain.ServiceOrder
	err := row.Scan(
		&o.ID, &o.Number, &o.CompanyID, &o.ProviderID, &o.CandidateID, &o.Status, &o.ScheduledAt,
		&o.Notes, &o.Total, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
		&o.CompanyName, &o.ProviderName, &o.CandidateName,
	)
	return o, err
}

// Create inserts the order header and its items atomically.
func (r *orderRepo) Create(ctx context.Context, o *domain.ServiceOrder) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO service_orders (number, company_id, provider_id, candidate_id, status, scheduled_at,
			notes, total, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		o.Number, o.CompanyID, o.ProviderID, o.CandidateID, o.Status, o.ScheduledAt,
		o.Notes, o.Total, o.CreatedBy,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}

	for _, item := range o.Items {
		_, err := tx.Exec(ctx,
			`INSERT INTO service_order_items (order_id, service_id, service_name, price) VALUES ($1, $2, $3, $4)`,
			o.ID, item.ServiceID, item.ServiceName, item.Price)
		if err != nil {
			return mapErr(err)
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.ServiceOrder, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM `+orderJoins+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT service_id, service_name, price FROM service_order_items WHERE order_id = $1 ORDER BY service_name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	o.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ServiceID, &item.ServiceName, &item.Price); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return &o, rows.Err()
}

// List returns order headers without items.
func (r *orderRepo) List(ctx context.Context, f domain.OrderFilter) ([]domain.ServiceOrder, int64, error) {
	where := squirrel.And{}
	if f.PartyID != nil {
		where = append(where, squirrel.Or{
			squirrel.Eq{"o.company_id": *f.PartyID},
			squirrel.Eq{"o.provider_id": *f.PartyID},
		})
	}
	if f.CompanyID != nil {
		where = append(where, squirrel.Eq{"o.company_id": *f.CompanyID})
	}
	if f.ProviderID != nil {
		where = append(where, squirrel.Eq{"o.provider_id": *f.ProviderID})
	}
	if f.CandidateID != nil {
		where = append(where, squirrel.Eq{"o.candidate_id": *f.CandidateID})
	}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"o.status": f.Status})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"o.created_at": *f.From})
	}
	if f.To != nil {
		// the end date is inclusive
		where = append(where, squirrel.Lt{"o.created_at": f.To.AddDate(0, 0, 1)})
	}

	total, err := countRows(ctx, r.db, psql.Select("COUNT(*)").From("service_orders o").Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := psql.Select(orderColumns).From(orderJoins).Where(where).OrderBy("o.created_at DESC", "o.id DESC")
	orders, err := queryList(ctx, r.db, paginate(q, f.PageRequest), scanOrder)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, o *domain.ServiceOrder, from domain.OrderStatus) error {
	query := `UPDATE service_orders SET status = $2, scheduled_at = $3, notes = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5 RETURNING updated_at`
	err := r.db.QueryRow(ctx, query, o.ID, o.Status, o.ScheduledAt, o.Notes, from).Scan(&o.UpdatedAt)
	return mapErr(err)
}
