package orders

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const numberAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateNumber builds the human-readable order number:
// ORD-YYYYMMDD-{millis base36}{3 random base36}, uppercased. The random
// suffix makes same-millisecond collisions unlikely; the unique
// constraint on orders.order_number catches the rest and the caller
// retries.
func GenerateNumber(now time.Time) string {
	dateStr := now.Format("20060102")
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))

	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = numberAlphabet[rand.Intn(len(numberAlphabet))]
	}
	return fmt.Sprintf("ORD-%s-%s%s", dateStr, ts, strings.ToUpper(string(suffix)))
}
