package orders

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
)

const maxNumberRetries = 5

type Repo struct{ DB *pgxpool.Pool }

// Create inserts the order and its items in one transaction. An
// order-number collision (unique violation) regenerates the number and
// retries, capped at maxNumberRetries.
func (r *Repo) Create(ctx context.Context, in NewOrder) (Order, error) {
	var lastErr error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		o, err := r.createOnce(ctx, in, GenerateNumber(time.Now()))
		if err == nil {
			return o, nil
		}
		if isOrderNumberCollision(err) {
			slog.Warn("order number collision, retrying", "attempt", attempt+1)
			lastErr = err
			continue
		}
		return Order{}, err
	}
	return Order{}, apperr.Internal(lastErr)
}

func (r *Repo) createOnce(ctx context.Context, in NewOrder, number string) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback(ctx)

	o := Order{
		ID:         uuid.NewString(),
		Number:     number,
		UserID:     in.UserID,
		Status:     StatusPending,
		TotalPaise: in.TotalPaise,

		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,

		ShippingFullName: in.ShippingFullName,
		ShippingPhone:    in.ShippingPhone,
		ShippingAltPhone: in.ShippingAltPhone,
		ShippingLine1:    in.ShippingLine1,
		ShippingLine2:    in.ShippingLine2,
		ShippingLandmark: in.ShippingLandmark,
		ShippingCity:     in.ShippingCity,
		ShippingState:    in.ShippingState,
		ShippingCountry:  in.ShippingCountry,
		ShippingZipCode:  in.ShippingZipCode,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders
			(id, order_number, user_id, status, total_paise,
			 customer_name, customer_email, customer_phone,
			 shipping_full_name, shipping_phone, shipping_alt_phone,
			 shipping_line1, shipping_line2, shipping_landmark,
			 shipping_city, shipping_state, shipping_country, shipping_zip_code)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING created_at, updated_at`,
		o.ID, o.Number, o.UserID, o.Status, o.TotalPaise,
		o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.ShippingFullName, o.ShippingPhone, o.ShippingAltPhone,
		o.ShippingLine1, o.ShippingLine2, o.ShippingLandmark,
		o.ShippingCity, o.ShippingState, o.ShippingCountry, o.ShippingZipCode).
		Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	for _, it := range in.Items {
		item := Item{
			ID:            uuid.NewString(),
			OrderID:       o.ID,
			ProductID:     it.ProductID,
			Variant:       it.Variant,
			Qty:           it.Qty,
			PricePaise:    it.PricePaise,
			SubtotalPaise: it.SubtotalPaise,

			ProductName:        it.ProductName,
			ProductDescription: it.ProductDescription,
			ProductImageURL:    it.ProductImageURL,
			ProductCategory:    it.ProductCategory,
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items
				(id, order_id, product_id, variant, qty, price_paise, subtotal_paise,
				 product_name, product_description, product_image_url, product_category)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			item.ID, item.OrderID, item.ProductID, item.Variant, item.Qty,
			item.PricePaise, item.SubtotalPaise,
			item.ProductName, item.ProductDescription, item.ProductImageURL, item.ProductCategory); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

func isOrderNumberCollision(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == "23505" &&
		pgErr.ConstraintName == "orders_order_number_key"
}

// UpdateStatus moves a PENDING order to a terminal status. Re-applying a
// terminal status is a no-op, which keeps webhook and reconcile writes
// idempotent.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) error {
	if !CanTransition(StatusPending, to) {
		return apperr.Conflict("INVALID_TRANSITION", "order cannot move to "+string(to))
	}
	_, err := r.DB.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1 AND status='PENDING'`,
		orderID, to)
	return err
}

func (r *Repo) CreatePayment(ctx context.Context, orderID string, method Method, status PaymentStatus) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO payments (id, order_id, method, status)
		VALUES ($1,$2,$3,$4)`,
		uuid.NewString(), orderID, method, status)
	return err
}

// SetPaymentResult records the gateway outcome. Only a PENDING payment
// transitions, so duplicate webhook or reconcile deliveries are no-ops.
func (r *Repo) SetPaymentResult(ctx context.Context, orderID string, status PaymentStatus, transactionID string, paidAt *time.Time) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE payments
		SET status=$2, transaction_id=NULLIF($3,''), paid_at=$4, updated_at=now()
		WHERE order_id=$1 AND status='PENDING'`,
		orderID, status, transactionID, paidAt)
	return err
}

// StalePendingUPI returns UPI payments still PENDING whose order is
// older than the cutoff, for the reconcile sweep.
func (r *Repo) StalePendingUPI(ctx context.Context, cutoff time.Time) ([]PendingPayment, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, o.id, o.order_number
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE p.method='UPI' AND p.status='PENDING' AND o.created_at <= $1
		ORDER BY o.created_at`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingPayment
	for rows.Next() {
		var p PendingPayment
		if err := rows.Scan(&p.PaymentID, &p.OrderID, &p.OrderNumber); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Summary loads the slim order view used by notifications.
func (r *Repo) Summary(ctx context.Context, orderID string) (Summary, error) {
	var s Summary
	err := r.DB.QueryRow(ctx,
		`SELECT id, order_number, customer_name, COALESCE(customer_email,'') FROM orders WHERE id=$1`,
		orderID).Scan(&s.OrderID, &s.Number, &s.CustomerName, &s.CustomerEmail)
	if err == pgx.ErrNoRows {
		return Summary{}, apperr.NotFound("ORDER_NOT_FOUND", "order not found")
	}
	if err != nil {
		return Summary{}, err
	}

	rows, err := r.DB.Query(ctx,
		`SELECT product_name, variant, qty FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductName, &it.Variant, &it.Qty); err != nil {
			return Summary{}, err
		}
		s.Items = append(s.Items, it)
	}
	return s, rows.Err()
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.order_number, o.status, o.total_paise, o.created_at, o.updated_at,
		       p.method, p.status
		FROM orders o
		LEFT JOIN payments p ON p.order_id = o.id
		WHERE o.user_id=$1
		ORDER BY o.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var method *Method
		var pstatus *PaymentStatus
		if err := rows.Scan(&o.ID, &o.Number, &o.Status, &o.TotalPaise,
			&o.CreatedAt, &o.UpdatedAt, &method, &pstatus); err != nil {
			return nil, err
		}
		o.UserID = userID
		if method != nil {
			o.Payment = &Payment{OrderID: o.ID, Method: *method, Status: *pstatus}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, orderID, userID string) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, order_number, user_id, status, total_paise, created_at, updated_at,
		       customer_name, COALESCE(customer_email,''), customer_phone,
		       shipping_full_name, shipping_phone, COALESCE(shipping_alt_phone,''),
		       shipping_line1, COALESCE(shipping_line2,''), COALESCE(shipping_landmark,''),
		       shipping_city, shipping_state, shipping_country, shipping_zip_code
		FROM orders WHERE id=$1 AND user_id=$2`, orderID, userID).
		Scan(&o.ID, &o.Number, &o.UserID, &o.Status, &o.TotalPaise, &o.CreatedAt, &o.UpdatedAt,
			&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
			&o.ShippingFullName, &o.ShippingPhone, &o.ShippingAltPhone,
			&o.ShippingLine1, &o.ShippingLine2, &o.ShippingLandmark,
			&o.ShippingCity, &o.ShippingState, &o.ShippingCountry, &o.ShippingZipCode)
	if err == pgx.ErrNoRows {
		return Order{}, apperr.NotFound("ORDER_NOT_FOUND", "order not found")
	}
	if err != nil {
		return Order{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, variant, qty, price_paise, subtotal_paise,
		       product_name, COALESCE(product_description,''),
		       COALESCE(product_image_url,''), COALESCE(product_category,'')
		FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		it := Item{OrderID: orderID}
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Variant, &it.Qty,
			&it.PricePaise, &it.SubtotalPaise,
			&it.ProductName, &it.ProductDescription, &it.ProductImageURL, &it.ProductCategory); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return Order{}, err
	}

	var pay Payment
	err = r.DB.QueryRow(ctx, `
		SELECT id, order_id, method, status, COALESCE(transaction_id,''), paid_at
		FROM payments WHERE order_id=$1`, orderID).
		Scan(&pay.ID, &pay.OrderID, &pay.Method, &pay.Status, &pay.TransactionID, &pay.PaidAt)
	if err == nil {
		o.Payment = &pay
	} else if err != pgx.ErrNoRows {
		return Order{}, err
	}
	return o, nil
}
