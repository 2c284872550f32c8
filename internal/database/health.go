package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Health reports the reachability of the backing stores.
type Health struct {
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}

// OK reports whether every store answered.
func (h Health) OK() bool {
	return h.Postgres == "up" && h.Redis == "up"
}

// CheckHealth pings Postgres and Redis with a short timeout.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) Health {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	h := Health{Postgres: "up", Redis: "up"}
	if err := pool.Ping(ctx); err != nil {
		h.Postgres = "down"
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		h.Redis = "down"
	}
	return h
}
