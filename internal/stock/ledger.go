package stock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nishkarsh/go-shop-api/internal/redisx"
)

// Ledger is the soft-reservation counter set in Redis. It is advisory:
// availability reads subtract it from durable stock, but the row-locked
// decrement at settlement time is the only hard guard. Entries expire on
// their own; nothing sweeps them.
type Ledger struct {
	R   *redis.Client
	TTL time.Duration
}

func NewLedger(r *redis.Client, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = redisx.TTLReservation
	}
	return &Ledger{R: r, TTL: ttl}
}

func key(productID, variant string) string {
	return fmt.Sprintf(redisx.KeyStockReservation, productID, variant)
}

// Reserve increments the counter for every item and (re)arms its TTL.
// If any increment fails mid-loop, the increments already applied in this
// call are rolled back before the error is returned.
func (l *Ledger) Reserve(ctx context.Context, items []Item) error {
	done := make([]Item, 0, len(items))
	for _, it := range items {
		k := key(it.ProductID, it.Variant)
		if err := l.R.IncrBy(ctx, k, int64(it.Qty)).Err(); err != nil {
			l.Unreserve(ctx, done)
			return fmt.Errorf("reserve %s/%s: %w", it.ProductID, it.Variant, err)
		}
		if err := l.R.Expire(ctx, k, l.TTL).Err(); err != nil {
			done = append(done, it)
			l.Unreserve(ctx, done)
			return fmt.Errorf("reserve expire %s/%s: %w", it.ProductID, it.Variant, err)
		}
		done = append(done, it)
	}
	return nil
}

// Unreserve gives back previously reserved quantities, flooring each
// counter at zero. Best effort: failures are logged, not returned, since
// TTL expiry recovers the counter anyway.
func (l *Ledger) Unreserve(ctx context.Context, items []Item) {
	for _, it := range items {
		k := key(it.ProductID, it.Variant)
		n, err := l.R.DecrBy(ctx, k, int64(it.Qty)).Result()
		if err != nil {
			slog.Warn("ledger unreserve failed", "key", k, "err", err)
			continue
		}
		if n <= 0 {
			_ = l.R.Del(ctx, k).Err()
		}
	}
}

// Reserved reads the active reserved quantity for one variant. Reads are
// best effort: an unreachable ledger reads as zero, leaving durable stock
// as the upper bound.
func (l *Ledger) Reserved(ctx context.Context, productID, variant string) int {
	n, err := l.R.Get(ctx, key(productID, variant)).Int()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("ledger read failed", "product_id", productID, "variant", variant, "err", err)
		}
		return 0
	}
	return n
}

// ReservedMany pipelines reads for a batch of variants. Missing or
// unreadable keys count as zero.
func (l *Ledger) ReservedMany(ctx context.Context, keys []ItemKey) map[ItemKey]int {
	out := make(map[ItemKey]int, len(keys))
	pipe := l.R.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.Get(ctx, key(k.ProductID, k.Variant))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		slog.Warn("ledger batch read failed", "keys", len(keys), "err", err)
	}
	for i, cmd := range cmds {
		if n, err := cmd.Int(); err == nil {
			out[keys[i]] = n
		}
	}
	return out
}

// Settle subtracts a settled quantity from the counter after the durable
// decrement committed. The remaining amount keeps whatever TTL the entry
// still has, or falls back to the full reservation window, so other
// in-flight carts keep seeing accurate availability.
func (l *Ledger) Settle(ctx context.Context, it Item) error {
	k := key(it.ProductID, it.Variant)
	cur, err := l.R.Get(ctx, k).Int()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	remaining := cur - it.Qty
	if remaining <= 0 {
		return l.R.Del(ctx, k).Err()
	}
	ttl, err := l.R.TTL(ctx, k).Result()
	if err != nil || ttl <= 0 {
		ttl = l.TTL
	}
	return l.R.Set(ctx, k, remaining, ttl).Err()
}
