package pricing

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nishkarsh/go-shop-api/internal/apperr"
)

type SettingsRepo struct{ DB *pgxpool.Pool }

// Active returns the most recent active settings row.
func (r *SettingsRepo) Active(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.DB.QueryRow(ctx, `
		SELECT take_delivery_fee, check_threshold, free_delivery_threshold_paise,
		       delivery_fee_paise, allowed_zip_codes
		FROM price_settings
		WHERE is_active
		ORDER BY created_at DESC
		LIMIT 1`).
		Scan(&s.TakeDeliveryFee, &s.CheckThreshold, &s.FreeDeliveryThresholdPaise,
			&s.DeliveryFeePaise, &s.AllowedZipCodes)
	if err == pgx.ErrNoRows {
		return Settings{}, apperr.NotFound("PRICING_NOT_CONFIGURED", "no pricing configuration found")
	}
	return s, err
}

// Save deactivates the current settings and inserts the new row as
// active, keeping history.
func (r *SettingsRepo) Save(ctx context.Context, s Settings) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE price_settings SET is_active=false WHERE is_active`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO price_settings
			(take_delivery_fee, check_threshold, free_delivery_threshold_paise,
			 delivery_fee_paise, allowed_zip_codes, is_active)
		VALUES ($1,$2,$3,$4,$5,true)`,
		s.TakeDeliveryFee, s.CheckThreshold, s.FreeDeliveryThresholdPaise,
		s.DeliveryFeePaise, s.AllowedZipCodes); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
