package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/NobreTrajes/os-control/internal/config"
)

// Cache é um leve embrulho de leitura sobre o redis para os resumos
// financeiros e o dashboard. Sem redis configurado (addr vazio) todas
// as operações viram no-op e a API segue direto ao banco.
type Cache struct {
	client *redis.Client
}

func New(cfg *config.Config) *Cache {
	if cfg.RedisAddr == "" {
		return &Cache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	return &Cache{client: client}
}

func (c *Cache) Enabled() bool {
	return c.client != nil
}

// GetJSON carrega e desserializa a chave em out. Retorna false em
// cache miss ou redis indisponível.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) bool {
	if c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}

	return json.Unmarshal([]byte(raw), out) == nil
}

// SetJSON serializa e grava com TTL. Falha de cache nunca propaga.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.client == nil {
		return
	}

	b, err := json.Marshal(value)
	if err != nil {
		return
	}

	c.client.Set(ctx, key, b, ttl)
}

// Invalidate remove chaves por prefixo após mutações de OS.
func (c *Cache) Invalidate(ctx context.Context, pattern string) {
	if c.client == nil {
		return
	}

	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}
