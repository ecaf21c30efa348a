package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/arb-bet-tracker/pkg/contracts/events"
)

// KeyPrefix das arbitragens correntes; o bet-service lê a mesma chave
const KeyPrefix = "arb:current:"

// Key gera a chave Redis da arbitragem corrente
func Key(arbitrageID string) string { return KeyPrefix + arbitrageID }

// RedisCache guarda o último estado conhecido de cada arbitragem
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// SetCurrent armazena a arbitragem corrente com TTL definido
func (r *RedisCache) SetCurrent(ctx context.Context, arbitrageID string, e events.ArbitrageFound) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, Key(arbitrageID), b, r.TTL).Err()
}
