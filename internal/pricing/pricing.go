// Package pricing computes the delivery fee and final order total from
// the admin-managed price settings.
package pricing

import "fmt"

type Settings struct {
	TakeDeliveryFee            bool     `json:"take_delivery_fee"`
	CheckThreshold             bool     `json:"check_threshold"`
	FreeDeliveryThresholdPaise int      `json:"free_delivery_threshold_paise"`
	DeliveryFeePaise           int      `json:"delivery_fee_paise"`
	AllowedZipCodes            []string `json:"allowed_zip_codes"`
}

type Quote struct {
	CanDeliver          bool   `json:"can_deliver"`
	DeliveryFeePaise    int    `json:"delivery_fee_paise"`
	FreeDeliveryApplied bool   `json:"free_delivery_applied"`
	FinalTotalPaise     int    `json:"final_total_paise"`
	Message             string `json:"message"`
}

// Compute applies the delivery rules to a subtotal and destination zip.
// A non-empty zip allow-list gates delivery entirely; the fee is zero
// when collection is off or the free-delivery threshold is met.
func Compute(s Settings, subtotalPaise int, zip string) Quote {
	if len(s.AllowedZipCodes) > 0 && !contains(s.AllowedZipCodes, zip) {
		return Quote{
			CanDeliver:      false,
			FinalTotalPaise: subtotalPaise,
			Message:         fmt.Sprintf("Delivery not available to zip code: %s", zip),
		}
	}

	fee := 0
	free := false
	if s.TakeDeliveryFee {
		if s.CheckThreshold && subtotalPaise >= s.FreeDeliveryThresholdPaise {
			free = true
		} else {
			fee = s.DeliveryFeePaise
		}
	}

	msg := "No delivery fee"
	if free {
		msg = "Free delivery applied"
	} else if fee > 0 {
		msg = fmt.Sprintf("Delivery fee: %d.%02d", fee/100, fee%100)
	}

	return Quote{
		CanDeliver:          true,
		DeliveryFeePaise:    fee,
		FreeDeliveryApplied: free,
		FinalTotalPaise:     subtotalPaise + fee,
		Message:             msg,
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
