package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

// mesma chave escrita pelo arbitrage-processor
func keyCurrent(id string) string { return "arb:current:" + id }

func keyQuery(k string) string { return "arb:query:" + k }

// GetCurrent lê a arbitragem corrente gravada pelo processor
func (c *Cache) GetCurrent(ctx context.Context, id string) (events.ArbitrageFound, bool, error) {
	var ev events.ArbitrageFound
	b, err := c.R.Get(ctx, keyCurrent(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ev, false, nil
	}
	if err != nil {
		return ev, false, err
	}
	return ev, true, json.Unmarshal(b, &ev)
}

func (c *Cache) SetCurrent(ctx context.Context, id string, ev events.ArbitrageFound, ttl time.Duration) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyCurrent(id), b, ttl).Err()
}

func (c *Cache) DeleteCurrent(ctx context.Context, id string) error {
	return c.R.Del(ctx, keyCurrent(id)).Err()
}

// GetQuery busca uma resposta de consulta cacheada (ex.: listagem agrupada)
func (c *Cache) GetQuery(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyQuery(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetQuery(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyQuery(key), b, ttl).Err()
}
