package stock

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
)

// Store owns the durable per-variant stock counts. Rows are only ever
// decremented under a row lock after a re-check, so the count never goes
// negative regardless of what the advisory ledger said.
type Store struct{ DB *pgxpool.Pool }

type InsufficientDetail struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

func (d InsufficientDetail) String() string {
	return fmt.Sprintf("%s/%s: need %d, have %d", d.ProductID, d.Variant, d.Required, d.Available)
}

func (s *Store) Level(ctx context.Context, productID, variant string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx,
		`SELECT stock FROM product_stocks WHERE product_id=$1 AND variant=$2`,
		productID, variant).Scan(&n)
	if err == pgx.ErrNoRows {
		return 0, apperr.NotFound("VARIANT_NOT_FOUND", fmt.Sprintf("no stock row for %s/%s", productID, variant))
	}
	return n, err
}

func (s *Store) ByProduct(ctx context.Context, productID string) ([]Item, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT product_id, variant, stock FROM product_stocks WHERE product_id=$1 ORDER BY variant`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Variant, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Decrement commits stock for the COD path: one transaction, each row
// locked, re-checked and decremented. Any shortfall rolls the whole
// transaction back and surfaces the first offending line.
func (s *Store) Decrement(ctx context.Context, items []Item) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, it := range items {
		if err := decrementLocked(ctx, tx, it); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SettleOrder converts a UPI reservation into durable decrements and
// confirms the order, all in one transaction. adjust runs per item after
// its row decrement so the advisory ledger tracks what just committed;
// it must not fail the settlement.
func (s *Store) SettleOrder(ctx context.Context, orderID string, items []Item, adjust func(context.Context, Item)) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, it := range items {
		if err := decrementLocked(ctx, tx, it); err != nil {
			return err
		}
		if adjust != nil {
			adjust(ctx, it)
		}
	}

	ct, err := tx.Exec(ctx,
		`UPDATE orders SET status='CONFIRMED', updated_at=now() WHERE id=$1 AND status='PENDING'`,
		orderID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return apperr.Conflict("ORDER_NOT_PENDING", fmt.Sprintf("order %s is not pending", orderID))
	}
	return tx.Commit(ctx)
}

// AdjustStock sets a variant's count under the same row lock the
// settlement path takes, so admin edits serialize against in-flight
// settlements.
func (s *Store) AdjustStock(ctx context.Context, productID, variant string, newStock int) error {
	if newStock < 0 {
		return apperr.Validation("NEGATIVE_STOCK", "stock cannot be negative")
	}
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var cur int
	err = tx.QueryRow(ctx,
		`SELECT stock FROM product_stocks WHERE product_id=$1 AND variant=$2 FOR UPDATE`,
		productID, variant).Scan(&cur)
	if err == pgx.ErrNoRows {
		return apperr.NotFound("VARIANT_NOT_FOUND", fmt.Sprintf("no stock row for %s/%s", productID, variant))
	}
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE product_stocks SET stock=$3, updated_at=now() WHERE product_id=$1 AND variant=$2`,
		productID, variant, newStock); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func decrementLocked(ctx context.Context, tx pgx.Tx, it Item) error {
	var cur int
	err := tx.QueryRow(ctx,
		`SELECT stock FROM product_stocks WHERE product_id=$1 AND variant=$2 FOR UPDATE`,
		it.ProductID, it.Variant).Scan(&cur)
	if err == pgx.ErrNoRows {
		return apperr.NotFound("VARIANT_NOT_FOUND", fmt.Sprintf("no stock row for %s/%s", it.ProductID, it.Variant))
	}
	if err != nil {
		return err
	}
	if cur < it.Qty {
		d := InsufficientDetail{ProductID: it.ProductID, Variant: it.Variant, Required: it.Qty, Available: cur}
		return apperr.Conflict("INSUFFICIENT_STOCK", d.String())
	}
	if _, err := tx.Exec(ctx,
		`UPDATE product_stocks SET stock = stock - $3, updated_at=now() WHERE product_id=$1 AND variant=$2`,
		it.ProductID, it.Variant, it.Qty); err != nil {
		return err
	}
	return nil
}
