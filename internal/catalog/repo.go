package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, COALESCE(description,''), COALESCE(category,''), COALESCE(image_url,''),
	price_paise, is_active, created_at, updated_at`

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1 AND NOT is_deleted AND is_active`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.ImageURL,
			&p.PricePaise, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return Product{}, apperr.NotFound("PRODUCT_NOT_FOUND", fmt.Sprintf("product %s not found or inactive", id))
	}
	return p, err
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productCols+` FROM products WHERE NOT is_deleted AND is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.ImageURL,
			&p.PricePaise, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) ByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+productCols+` FROM products WHERE id = ANY($1) AND NOT is_deleted AND is_active`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Product, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.ImageURL,
			&p.PricePaise, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
