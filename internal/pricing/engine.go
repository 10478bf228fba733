package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/nishkarsh/go-shop-api/internal/redisx"
)

type SettingsSource interface {
	Active(ctx context.Context) (Settings, error)
}

// Engine wraps Compute with a read-through quote cache. Cache keys carry
// a generation counter that Invalidate bumps, so a settings update drops
// every cached quote at once without scanning keys.
type Engine struct {
	Settings SettingsSource
	Cache    *redis.Client
}

func (e *Engine) Quote(ctx context.Context, subtotalPaise int, zip string) (Quote, error) {
	key := e.quoteKey(ctx, subtotalPaise, zip)
	if key != "" {
		if b, err := e.Cache.Get(ctx, key).Bytes(); err == nil {
			var q Quote
			if json.Unmarshal(b, &q) == nil {
				return q, nil
			}
		}
	}

	s, err := e.Settings.Active(ctx)
	if err != nil {
		return Quote{}, err
	}
	q := Compute(s, subtotalPaise, zip)

	if key != "" {
		if b, err := json.Marshal(q); err == nil {
			if err := e.Cache.Set(ctx, key, b, redisx.TTLPricingQuote).Err(); err != nil {
				slog.Warn("quote cache write failed", "key", key, "err", err)
			}
		}
	}
	return q, nil
}

// Invalidate bumps the cache generation. Called on every admin settings
// write.
func (e *Engine) Invalidate(ctx context.Context) {
	if e.Cache == nil {
		return
	}
	if err := e.Cache.Incr(ctx, redisx.KeyPricingGen).Err(); err != nil {
		slog.Warn("pricing cache invalidation failed", "err", err)
	}
}

func (e *Engine) quoteKey(ctx context.Context, subtotalPaise int, zip string) string {
	if e.Cache == nil {
		return ""
	}
	gen, err := e.Cache.Get(ctx, redisx.KeyPricingGen).Int64()
	if err != nil && err != redis.Nil {
		return "" // cache unreachable, fall through to the settings repo
	}
	return fmt.Sprintf(redisx.KeyPricingQuote, gen, zip, subtotalPaise)
}
