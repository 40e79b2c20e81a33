package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nancy-13-hue/p2p-lending-database/internal/observability"
)

const pingTimeout = 5 * time.Second

// OpenRedis connects the client backing the idempotency middleware and
// verifies the server is reachable before handing it out.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	lg := observability.NewLogger("cache")
	lg.Info().Str("addr", addr).Int("db", db).Msg("redis: connected")
	return r, nil
}
