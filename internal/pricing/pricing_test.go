package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeZipGate(t *testing.T) {
	s := Settings{
		TakeDeliveryFee: true,
		DeliveryFeePaise: 4900,
		AllowedZipCodes:  []string{"560001", "560002"},
	}

	q := Compute(s, 100_000, "999999")
	assert.False(t, q.CanDeliver)
	assert.Equal(t, 0, q.DeliveryFeePaise)
	assert.Contains(t, q.Message, "999999")

	q = Compute(s, 100_000, "560002")
	assert.True(t, q.CanDeliver)

	// empty allow-list means deliver anywhere
	s.AllowedZipCodes = nil
	q = Compute(s, 100_000, "999999")
	assert.True(t, q.CanDeliver)
}

func TestComputeFeeRules(t *testing.T) {
	base := Settings{
		TakeDeliveryFee:            true,
		CheckThreshold:             true,
		FreeDeliveryThresholdPaise: 50_000,
		DeliveryFeePaise:           4900,
	}

	cases := []struct {
		name     string
		mutate   func(*Settings)
		subtotal int
		fee      int
		free     bool
	}{
		{"below threshold pays flat fee", nil, 30_000, 4900, false},
		{"at threshold is free", nil, 50_000, 0, true},
		{"above threshold is free", nil, 90_000, 0, true},
		{"threshold check disabled always charges", func(s *Settings) { s.CheckThreshold = false }, 90_000, 4900, false},
		{"fee collection disabled", func(s *Settings) { s.TakeDeliveryFee = false }, 10_000, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := base
			if c.mutate != nil {
				c.mutate(&s)
			}
			q := Compute(s, c.subtotal, "560001")
			assert.True(t, q.CanDeliver)
			assert.Equal(t, c.fee, q.DeliveryFeePaise)
			assert.Equal(t, c.free, q.FreeDeliveryApplied)
			assert.Equal(t, c.subtotal+c.fee, q.FinalTotalPaise)
		})
	}
}
