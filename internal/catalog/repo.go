package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is what the handlers and services need from the catalog;
// implemented by Repo (Postgres) and by the demo store.
type Repository interface {
	All(ctx context.Context) ([]Product, error)
	ByID(ctx context.Context, id string) (*Product, error)
	Search(ctx context.Context, keyword string) ([]Product, error)
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, id string, upd Update) (*Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
}

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, product_name, product_description, price_cents, category, status, image, rating, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category,
		&p.Status, &p.Image, &p.Rating, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category,
			&p.Status, &p.Image, &p.Rating, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) All(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY product_name`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repo) ByID(ctx context.Context, id string) (*Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func (r *Repo) Search(ctx context.Context, keyword string) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productCols+` FROM products WHERE product_name ILIKE $1 ORDER BY product_name`,
		"%"+keyword+"%")
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repo) Insert(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, product_name, product_description, price_cents, category, status, image, rating, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Category, p.Status, p.Image, p.Rating, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *Repo) Update(ctx context.Context, id string, upd Update) (*Product, error) {
	sets := []string{"updated_at=now()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if upd.Name != nil {
		add("product_name", *upd.Name)
	}
	if upd.Description != nil {
		add("product_description", *upd.Description)
	}
	if upd.PriceCents != nil {
		add("price_cents", *upd.PriceCents)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}
	if upd.Rating != nil {
		add("rating", *upd.Rating)
	}

	ct, err := r.DB.Exec(ctx, `UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id=$1`, args...)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.ByID(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id string) (*Product, error) {
	p, err := r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return p, nil
}
