// Package cart stores cart lines keyed by an abstract owner, so user and
// guest carts share one code path.
package cart

import "fmt"

// Owner is the cart key: "user:{id}" for signed-in users,
// "guest:{session}" for guests.
type Owner string

func UserOwner(userID string) Owner   { return Owner("user:" + userID) }
func GuestOwner(sessionID string) Owner { return Owner("guest:" + sessionID) }

// ItemRef names one cart line in a checkout request.
type ItemRef struct {
	ProductID string `json:"product_id"`
	Variant   string `json:"variant"`
}

type Item struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Variant   string `json:"variant"`
	Qty       int    `json:"qty"`
}

// ValidatedItem is a cart line resolved against the catalog at checkout
// time: price and product snapshot come from the database, quantity from
// the cart row, never from the client.
type ValidatedItem struct {
	ProductID     string
	Name          string
	Description   string
	ImageURL      string
	Category      string
	Variant       string
	Qty           int
	PricePaise    int
	SubtotalPaise int
	StockLevel    int // durable stock at validation time
}

type ValidationResult struct {
	OK            bool
	Message       string
	Items         []ValidatedItem
	SubtotalPaise int
}

func failed(format string, args ...any) ValidationResult {
	return ValidationResult{OK: false, Message: fmt.Sprintf(format, args...)}
}
