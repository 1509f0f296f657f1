package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Client é o contrato mínimo de cache usado pelos repositórios.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ErrCacheMiss indica chave ausente. Qualquer outro erro é falha do cache.
var ErrCacheMiss = redis.Nil

// Options configura a conexão com o Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// RedisClient implementa Client sobre go-redis.
type RedisClient struct {
	rdb *redis.Client
}

// NewRedisClient cria o cliente e faz um PING dentro do prazo de ctx.
// O cliente volta mesmo quando o PING falha, junto com o erro: o chamador
// decide se segue sem cache ou aborta.
func NewRedisClient(ctx context.Context, opts Options) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return &RedisClient{rdb: rdb}, errors.Wrapf(err, "redis ping %s", opts.Addr)
	}
	return &RedisClient{rdb: rdb}, nil
}

func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

func (c *RedisClient) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

func (c *RedisClient) Close() error {
	return c.rdb.Close()
}

// GetJSON lê a chave e decodifica o JSON em dest.
// Devolve ErrCacheMiss para chave ausente e erro de decodificação para entrada corrompida.
func GetJSON(ctx context.Context, c Client, key string, dest interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal([]byte(raw), dest), "cache: entrada inválida em %s", key)
}

// SetJSON serializa value em JSON e grava com o TTL informado.
func SetJSON(ctx context.Context, c Client, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "cache: falha ao serializar")
	}
	return c.Set(ctx, key, payload, ttl)
}

// NopClient é um cache sempre vazio, usado quando o Redis não está configurado.
type NopClient struct{}

func (NopClient) Get(context.Context, string) (string, error) { return "", ErrCacheMiss }
func (NopClient) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (NopClient) Delete(context.Context, string) error { return nil }
func (NopClient) Close() error                         { return nil }
