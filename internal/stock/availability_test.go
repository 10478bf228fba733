package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailable(t *testing.T) {
	cases := []struct {
		name              string
		durable, reserved int
		want              int
	}{
		{"no reservations", 5, 0, 5},
		{"partial reservation", 5, 3, 2},
		{"fully reserved", 5, 5, 0},
		{"over-reserved floors at zero", 2, 7, 0},
		{"zero stock", 0, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Available(c.durable, c.reserved))
		})
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name                 string
		requested, available int
		status               AvailabilityStatus
		action               Action
		maxAllowed           int
	}{
		{"out of stock", 2, 0, StatusOutOfStock, ActionRemove, 0},
		{"quantity exceeded", 5, 3, StatusQuantityExceeded, ActionReduce, 3},
		{"low stock", 2, 4, StatusLowStock, ActionProceed, 2},
		{"low stock boundary below threshold", 1, 9, StatusLowStock, ActionProceed, 1},
		{"in stock at threshold", 1, 10, StatusInStock, ActionProceed, 1},
		{"plenty", 3, 100, StatusInStock, ActionProceed, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Classify(c.requested, c.available)
			assert.Equal(t, c.status, got.Status)
			assert.Equal(t, c.action, got.Action)
			assert.Equal(t, c.available, got.Available)
			assert.Equal(t, c.maxAllowed, got.MaxAllowed)
		})
	}
}

func TestNewToken(t *testing.T) {
	a, b := NewToken(), NewToken()
	assert.Len(t, a, 32)
	assert.Regexp(t, "^[0-9a-f]{32}$", a)
	assert.NotEqual(t, a, b)
}
