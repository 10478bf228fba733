package redisx

import "time"

const (
	// Soft reservation counter: stock:reservation:{product_id}:{variant} -> qty
	KeyStockReservation = "stock:reservation:%s:%s"

	// Order reservation snapshot: order:reservation:{verification_token} -> JSON
	KeyOrderSnapshot = "order:reservation:%s"

	// Pricing quote cache: pricing:quote:{gen}:{zip}:{subtotal_paise}
	KeyPricingQuote = "pricing:quote:%d:%s:%d"

	// Generation counter bumped on settings writes to drop stale quotes.
	KeyPricingGen = "pricing:gen"

	// Dedup for notification events: dedup:notify:{event_id}
	KeyNotifyDedup = "dedup:notify:%s"
)

var (
	TTLReservation  = 30 * time.Minute
	TTLSnapshot     = 35 * time.Minute
	TTLPricingQuote = time.Hour
	TTLDedup        = 48 * time.Hour
)
