package stock

import "fmt"

// LowStockThreshold is the cutoff below which a variant is surfaced to
// clients with a hurry-up warning.
const LowStockThreshold = 10

type AvailabilityStatus string

const (
	StatusInStock          AvailabilityStatus = "IN_STOCK"
	StatusLowStock         AvailabilityStatus = "LOW_STOCK_WARNING"
	StatusQuantityExceeded AvailabilityStatus = "QUANTITY_EXCEEDED"
	StatusOutOfStock       AvailabilityStatus = "OUT_OF_STOCK"
)

// Action tells the client what to do with the cart line.
type Action string

const (
	ActionProceed Action = "proceed"
	ActionReduce  Action = "reduce"
	ActionRemove  Action = "remove"
)

type Check struct {
	Status     AvailabilityStatus `json:"status"`
	Available  int                `json:"available_stock"`
	MaxAllowed int                `json:"max_allowed"`
	Action     Action             `json:"action"`
	Message    string             `json:"message"`
}

// Available derives sellable stock from the durable count and the active
// soft reservations for the variant.
func Available(durable, reserved int) int {
	if a := durable - reserved; a > 0 {
		return a
	}
	return 0
}

// Classify applies the uniform availability classification used wherever
// stock is surfaced: product detail, cart listing and checkout
// validation.
func Classify(requested, available int) Check {
	switch {
	case available == 0:
		return Check{
			Status:     StatusOutOfStock,
			Available:  0,
			MaxAllowed: 0,
			Action:     ActionRemove,
			Message:    "Out of stock",
		}
	case requested > available:
		return Check{
			Status:     StatusQuantityExceeded,
			Available:  available,
			MaxAllowed: available,
			Action:     ActionReduce,
			Message:    fmt.Sprintf("Only %d available. Please reduce quantity to %d.", available, available),
		}
	case available < LowStockThreshold:
		return Check{
			Status:     StatusLowStock,
			Available:  available,
			MaxAllowed: requested,
			Action:     ActionProceed,
			Message:    fmt.Sprintf("Only %d left. Hurry up!", available),
		}
	default:
		return Check{
			Status:     StatusInStock,
			Available:  available,
			MaxAllowed: requested,
			Action:     ActionProceed,
			Message:    "In stock",
		}
	}
}
