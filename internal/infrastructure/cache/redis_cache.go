package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stockledger/internal/application/inventory"
)

const (
	defaultPrefix = "stockledger:reports"
	versionSuffix = "version"
)

var _ inventory.ReportCache = (*RedisCache)(nil)

// RedisCache caché de reportes con invalidación por versión: cada clave lleva la versión vigente
// y Invalidate solo incrementa el contador, así las entradas viejas quedan huérfanas hasta su TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// New crea el cliente de Redis y verifica la conexión.
func New(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// NewRedisCache construye la caché sobre un cliente existente.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: defaultPrefix}
}

func (c *RedisCache) versionKey() string {
	return c.prefix + ":" + versionSuffix
}

// version devuelve la versión vigente; 0 si nunca se invalidó.
func (c *RedisCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, c.versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}

func (c *RedisCache) entryKey(ver inventory.CacheVersion, key string) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, ver, key)
}

// Get decodifica en dst la entrada de la versión vigente y devuelve esa versión,
// que el llamador pasa a Set al guardar lo que calculó tras un fallo.
func (c *RedisCache) Get(ctx context.Context, key string, dst any) (inventory.CacheVersion, bool, error) {
	v, err := c.version(ctx)
	if err != nil {
		return inventory.UnknownCacheVersion, false, fmt.Errorf("cache: version: %w", err)
	}
	ver := inventory.CacheVersion(v)
	raw, err := c.client.Get(ctx, c.entryKey(ver, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ver, false, nil
	}
	if err != nil {
		return ver, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ver, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return ver, true, nil
}

// Set guarda bajo la versión leída por Get. Si hubo una invalidación entretanto, la entrada
// queda en una versión que ya nadie lee y expira con el TTL.
func (c *RedisCache) Set(ctx context.Context, ver inventory.CacheVersion, key string, value any) error {
	if ver < 0 {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return c.client.Set(ctx, c.entryKey(ver, key), raw, c.ttl).Err()
}

// Invalidate sube la versión: todas las claves anteriores dejan de leerse.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.versionKey()).Err()
}
