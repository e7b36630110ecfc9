package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-delivery-engine/internal/apperr"
	"service-delivery-engine/internal/domain"
)

// OrderRepo stores delivery orders.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, buyer_id, seller_id, COALESCE(courier_id, ''), dest_lat, dest_lng,
	status, created_at, deadline, updated_at`

func scanOrder(row pgx.Row) (domain.DeliveryOrder, error) {
	var (
		o      domain.DeliveryOrder
		status string
	)
	err := row.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.CourierID,
		&o.Destination.Lat, &o.Destination.Lng,
		&status, &o.CreatedAt, &o.Deadline, &o.UpdatedAt)
	if err != nil {
		return o, err
	}
	o.Status = domain.OrderStatus(status)
	o.CreatedAt = o.CreatedAt.UTC()
	o.Deadline = o.Deadline.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}

// Create inserts a new order.
func (r *OrderRepo) Create(ctx context.Context, o *domain.DeliveryOrder) error {
	var courier *string
	if o.HasCourier() {
		courier = &o.CourierID
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO delivery_orders
			(id, buyer_id, seller_id, courier_id, dest_lat, dest_lng, status, created_at, deadline, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.BuyerID, o.SellerID, courier, o.Destination.Lat, o.Destination.Lng,
		string(o.Status), o.CreatedAt, o.Deadline, o.UpdatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("create order %s: %w", o.ID, err)
	}
	return nil
}

// Get returns an order by id, or nil when it does not exist.
func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.DeliveryOrder, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM delivery_orders WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return &o, nil
}

// UpdateStatus moves the order from one status to another in a single statement.
// It returns false when the stored status is no longer "from".
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE delivery_orders
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to), at)
	if err != nil {
		return false, fmt.Errorf("update order %s status: %w", id, err)
	}
	return ct.RowsAffected() == 1, nil
}

// ListActive returns up to limit non-terminal orders positioned after the cursor,
// ordered by deadline then id.
func (r *OrderRepo) ListActive(ctx context.Context, after domain.OrderCursor, limit int) ([]domain.DeliveryOrder, error) {
	where := "status NOT IN ($1, $2)"
	args := []any{string(domain.OrderDelivered), string(domain.OrderCancelled), limit}
	if after != (domain.OrderCursor{}) {
		where += " AND (deadline, id) > ($4, $5)"
		args = append(args, after.Deadline, after.ID)
	}
	q := `
		SELECT ` + orderColumns + `
		FROM delivery_orders
		WHERE ` + where + `
		ORDER BY deadline, id
		LIMIT $3`
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DeliveryOrder, 0, limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
