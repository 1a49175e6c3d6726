package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists orders. Create is idempotent on ExternalID: a
// retried submission returns the existing order instead of creating a
// duplicate.
type Repository interface {
	Create(ctx context.Context, o *Order) (created *Order, existed bool, err error)
	ByID(ctx context.Context, id string) (*Order, error)
	ByExternalID(ctx context.Context, externalID string) (*Order, error)
	ByUser(ctx context.Context, userID string) ([]Order, error)
	All(ctx context.Context) ([]Order, error)
	SetPaymentStatus(ctx context.Context, orderID string, from, to PaymentStatus, paymentRef string) error
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, o *Order) (*Order, bool, error) {
	if existing, err := r.ByExternalID(ctx, o.ExternalID); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, external_id, user_id, address_id, payment_mode, payment_status, payment_ref, total_cents, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.ExternalID, o.UserID, o.AddressID, string(o.PaymentMode),
		string(o.PaymentStatus), o.PaymentRef, o.TotalCents, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return nil, false, err
	}
	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, price_cents)
			VALUES ($1,$2,$3,$4)`, o.ID, it.ProductID, it.Quantity, it.PriceCents)
		if err != nil {
			return nil, false, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return o, false, nil
}

const orderCols = `id, external_id, user_id, address_id, payment_mode, payment_status, payment_ref, total_cents, created_at, updated_at`

func (r *Repo) scanOne(ctx context.Context, row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ExternalID, &o.UserID, &o.AddressID, &o.PaymentMode,
		&o.PaymentStatus, &o.PaymentRef, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	items, err := r.items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *Repo) ByExternalID(ctx context.Context, externalID string) (*Order, error) {
	return r.scanOne(ctx, r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE external_id=$1`, externalID))
}

func (r *Repo) ByID(ctx context.Context, id string) (*Order, error) {
	return r.scanOne(ctx, r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
}

func (r *Repo) items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `SELECT product_id, qty, price_cents FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) list(ctx context.Context, where string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.ExternalID, &o.UserID, &o.AddressID, &o.PaymentMode,
			&o.PaymentStatus, &o.PaymentRef, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := r.items(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *Repo) ByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *Repo) All(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `ORDER BY created_at DESC`)
}

// SetPaymentStatus is a compare-and-set: it only applies when the stored
// status still matches from, so racing settlements cannot double-apply.
func (r *Repo) SetPaymentStatus(ctx context.Context, orderID string, from, to PaymentStatus, paymentRef string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET payment_status=$3, payment_ref=$4, updated_at=now()
		WHERE id=$1 AND payment_status=$2`,
		orderID, string(from), string(to), paymentRef)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}
