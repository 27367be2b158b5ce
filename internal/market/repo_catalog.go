package market

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type CatalogRepo struct{ DB *pgxpool.Pool }

type ProductInput struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
	PhotoURL   string `json:"photo_url"`
}

func (in ProductInput) Validate() error {
	if in.Name == "" {
		return Validatef("missing name")
	}
	if in.PriceCents < 0 {
		return Validatef("price_cents must not be negative")
	}
	if in.Stock < 0 {
		return Validatef("stock must not be negative")
	}
	return nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context, limit, page int) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if page < 0 {
		page = 0
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, price_cents, stock, owner_id, photo_url, created_at, updated_at
		FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, page*limit)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.OwnerID, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, price_cents, stock, owner_id, photo_url, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.OwnerID, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, &ProductNotFoundError{IDs: []string{id}}
	}
	if err != nil {
		return Product{}, errors.Wrap(err, "get product")
	}
	return p, nil
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, ownerID string, in ProductInput) (Product, error) {
	id := uuid.NewString()
	if _, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, price_cents, stock, owner_id, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, in.Name, in.PriceCents, in.Stock, ownerID, in.PhotoURL); err != nil {
		return Product{}, errors.Wrap(err, "insert product")
	}
	return r.GetProduct(ctx, id)
}

// UpdateProduct: hanya owner yang boleh edit; selain itu not found.
func (r *CatalogRepo) UpdateProduct(ctx context.Context, ownerID, id string, in ProductInput) (Product, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name=$3, price_cents=$4, stock=$5, photo_url=$6, updated_at=now()
		WHERE id=$1 AND owner_id=$2`,
		id, ownerID, in.Name, in.PriceCents, in.Stock, in.PhotoURL)
	if err != nil {
		return Product{}, errors.Wrap(err, "update product")
	}
	if ct.RowsAffected() == 0 {
		return Product{}, &ProductNotFoundError{IDs: []string{id}}
	}
	return r.GetProduct(ctx, id)
}
