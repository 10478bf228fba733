package cart

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

// Add inserts a cart line. An existing line is reported back instead of
// erroring so the client can switch to a quantity update. Quantity is
// capped by durable stock; soft reservations are only consulted at
// checkout.
func (r *Repo) Add(ctx context.Context, owner Owner, productID, variant string, qty int) (Item, bool, error) {
	if qty <= 0 {
		return Item{}, false, apperr.Validation("INVALID_QUANTITY", "quantity must be positive")
	}

	var existing Item
	err := r.DB.QueryRow(ctx,
		`SELECT id, product_id, variant, qty FROM cart_items
		 WHERE owner_id=$1 AND product_id=$2 AND variant=$3`,
		string(owner), productID, variant).
		Scan(&existing.ID, &existing.ProductID, &existing.Variant, &existing.Qty)
	if err == nil {
		return existing, true, nil
	}
	if err != pgx.ErrNoRows {
		return Item{}, false, err
	}

	var stock int
	err = r.DB.QueryRow(ctx, `
		SELECT ps.stock FROM product_stocks ps
		JOIN products p ON p.id = ps.product_id
		WHERE ps.product_id=$1 AND ps.variant=$2 AND p.is_active AND NOT p.is_deleted`,
		productID, variant).Scan(&stock)
	if err == pgx.ErrNoRows {
		return Item{}, false, apperr.NotFound("VARIANT_NOT_FOUND", "product or variant not available")
	}
	if err != nil {
		return Item{}, false, err
	}
	if qty > stock {
		return Item{}, false, apperr.Conflict("INSUFFICIENT_STOCK",
			fmt.Sprintf("only %d in stock", stock))
	}

	var it Item
	err = r.DB.QueryRow(ctx, `
		INSERT INTO cart_items (owner_id, product_id, variant, qty)
		VALUES ($1,$2,$3,$4)
		RETURNING id, product_id, variant, qty`,
		string(owner), productID, variant, qty).
		Scan(&it.ID, &it.ProductID, &it.Variant, &it.Qty)
	return it, false, err
}

func (r *Repo) UpdateQty(ctx context.Context, owner Owner, itemID string, qty int) error {
	if qty <= 0 {
		return apperr.Validation("INVALID_QUANTITY", "quantity must be positive")
	}
	ct, err := r.DB.Exec(ctx,
		`UPDATE cart_items SET qty=$3 WHERE id=$1 AND owner_id=$2`,
		itemID, string(owner), qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return apperr.NotFound("CART_ITEM_NOT_FOUND", "cart item not found")
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, owner Owner, itemID string) error {
	ct, err := r.DB.Exec(ctx,
		`DELETE FROM cart_items WHERE id=$1 AND owner_id=$2`, itemID, string(owner))
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return apperr.NotFound("CART_ITEM_NOT_FOUND", "cart item not found")
	}
	return nil
}

func (r *Repo) List(ctx context.Context, owner Owner) ([]Item, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, product_id, variant, qty FROM cart_items WHERE owner_id=$1 ORDER BY created_at`,
		string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Variant, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ClearProducts deletes every cart line for the given products, done
// wholesale once an order has been created from them.
func (r *Repo) ClearProducts(ctx context.Context, owner Owner, productIDs []string) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM cart_items WHERE owner_id=$1 AND product_id = ANY($2)`,
		string(owner), productIDs)
	return err
}

// Validate resolves the requested lines against products, variants and
// the owner's cart rows. The first failing line fails the whole result.
func (r *Repo) Validate(ctx context.Context, owner Owner, refs []ItemRef) (ValidationResult, error) {
	if len(refs) == 0 {
		return failed("no items to validate"), nil
	}
	productIDs := make([]string, 0, len(refs))
	for _, ref := range refs {
		productIDs = append(productIDs, ref.ProductID)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.name, COALESCE(p.description,''), COALESCE(p.image_url,''),
		       COALESCE(p.category,''), p.price_paise, ps.variant, ps.stock
		FROM products p
		JOIN product_stocks ps ON ps.product_id = p.id
		WHERE p.id = ANY($1) AND p.is_active AND NOT p.is_deleted`, productIDs)
	if err != nil {
		return ValidationResult{}, err
	}
	defer rows.Close()

	type variantInfo struct {
		name, description, imageURL, category string
		pricePaise, stock                     int
	}
	variants := map[ItemRef]variantInfo{}
	seen := map[string]bool{}
	for rows.Next() {
		var pid, name, desc, img, cat, variant string
		var price, stock int
		if err := rows.Scan(&pid, &name, &desc, &img, &cat, &price, &variant, &stock); err != nil {
			return ValidationResult{}, err
		}
		seen[pid] = true
		variants[ItemRef{ProductID: pid, Variant: variant}] = variantInfo{
			name: name, description: desc, imageURL: img, category: cat,
			pricePaise: price, stock: stock,
		}
	}
	if err := rows.Err(); err != nil {
		return ValidationResult{}, err
	}

	cartQty := map[ItemRef]int{}
	crows, err := r.DB.Query(ctx,
		`SELECT product_id, variant, qty FROM cart_items WHERE owner_id=$1 AND product_id = ANY($2)`,
		string(owner), productIDs)
	if err != nil {
		return ValidationResult{}, err
	}
	defer crows.Close()
	for crows.Next() {
		var ref ItemRef
		var qty int
		if err := crows.Scan(&ref.ProductID, &ref.Variant, &qty); err != nil {
			return ValidationResult{}, err
		}
		cartQty[ref] = qty
	}
	if err := crows.Err(); err != nil {
		return ValidationResult{}, err
	}

	res := ValidationResult{OK: true, Message: "All items are valid"}
	for _, ref := range refs {
		if !seen[ref.ProductID] {
			return failed("Product %s not found or inactive", ref.ProductID), nil
		}
		info, ok := variants[ref]
		if !ok {
			return failed("Variant %s not available for product %s", ref.Variant, ref.ProductID), nil
		}
		qty := cartQty[ref]
		if qty == 0 {
			return failed("%s (%s) is not in the cart", info.name, ref.Variant), nil
		}
		if info.stock < qty {
			return failed("Only %d left for %s (%s)", info.stock, info.name, ref.Variant), nil
		}

		res.Items = append(res.Items, ValidatedItem{
			ProductID:     ref.ProductID,
			Name:          info.name,
			Description:   info.description,
			ImageURL:      info.imageURL,
			Category:      info.category,
			Variant:       ref.Variant,
			Qty:           qty,
			PricePaise:    info.pricePaise,
			SubtotalPaise: info.pricePaise * qty,
			StockLevel:    info.stock,
		})
		res.SubtotalPaise += info.pricePaise * qty
	}
	return res, nil
}
