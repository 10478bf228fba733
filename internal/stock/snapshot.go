package stock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nishkarsh/go-shop-api/internal/redisx"
)

// Snapshot binds a gateway callback to one order and its reserved lines.
// It is consumed exactly once by the settlement handler; if it is gone
// when the webhook fires, the payment is unverifiable.
type Snapshot struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	AmountPaise int    `json:"amount_paise"`
	Items       []Item `json:"items"`
}

type Snapshots struct {
	R   *redis.Client
	TTL time.Duration
}

func NewSnapshots(r *redis.Client, ttl time.Duration) *Snapshots {
	if ttl <= 0 {
		ttl = redisx.TTLSnapshot
	}
	return &Snapshots{R: r, TTL: ttl}
}

// NewToken returns the single-use verification token passed to the
// gateway as an opaque correlator. 128 bits of entropy; unguessability is
// the only thing authenticating the webhook.
func NewToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

func snapKey(token string) string {
	return fmt.Sprintf(redisx.KeyOrderSnapshot, token)
}

func (s *Snapshots) Save(ctx context.Context, token string, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, snapKey(token), b, s.TTL).Err()
}

func (s *Snapshots) Get(ctx context.Context, token string) (Snapshot, bool, error) {
	b, err := s.R.Get(ctx, snapKey(token)).Bytes()
	if err == redis.Nil {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *Snapshots) Delete(ctx context.Context, token string) error {
	return s.R.Del(ctx, snapKey(token)).Err()
}
