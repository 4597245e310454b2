// Package redisguard reserva ocurrencias en Redis para que dos procesos no
// registren la misma toma al mismo tiempo (política reject).
package redisguard

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultPrefix = "shelter-meds:claim:"
	defaultTTL    = 2 * time.Hour
)

type Options struct {
	Addr     string
	Password string
	DB       int

	// TTL de la reserva; tiene que cubrir la ventana de tolerancia.
	TTL    time.Duration
	Prefix string
}

// Guard implementa schedule.Claimer con SETNX + TTL.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func New(opts Options) *Guard {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewWithClient(client, opts.TTL, opts.Prefix)
}

func NewWithClient(client *redis.Client, ttl time.Duration, prefix string) *Guard {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Guard{client: client, ttl: ttl, prefix: prefix}
}

func (g *Guard) key(shelterID, occurrenceID string) string {
	return g.prefix + shelterID + ":" + occurrenceID
}

// Claim devuelve false si otro ya tiene la ocurrencia reservada.
func (g *Guard) Claim(ctx context.Context, shelterID, occurrenceID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(shelterID, occurrenceID), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (g *Guard) Release(ctx context.Context, shelterID, occurrenceID string) error {
	if err := g.client.Del(ctx, g.key(shelterID, occurrenceID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (g *Guard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

func (g *Guard) Close() error {
	return g.client.Close()
}
