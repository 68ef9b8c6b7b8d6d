package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient はインプロセスのClient実装。
// 開発・テスト用途のドライバで、Redisと同じ振る舞い（TTL、ErrNotFound）を提供する。
type memoryClient struct {
	store  *gocache.Cache
	prefix string
}

// NewMemory はインメモリキャッシュクライアントを生成する。
func NewMemory(prefix string) *memoryClient {
	return &memoryClient{
		store:  gocache.New(gocache.NoExpiration, 10*time.Minute),
		prefix: prefix,
	}
}

func (c *memoryClient) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Get は値を取得する。キーが存在しない場合はErrNotFoundを返す。
func (c *memoryClient) Get(ctx context.Context, key string) (string, error) {
	v, found := c.store.Get(c.key(key))
	if !found {
		return "", ErrNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrNotFound
	}
	return s, nil
}

// Set は値をTTL付きで保存する。ttlが0の場合は無期限。
func (c *memoryClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.store.Set(c.key(key), value, ttl)
	return nil
}

// Ping はインメモリ実装では常に成功する。
func (c *memoryClient) Ping(ctx context.Context) error {
	return nil
}

// Close はインメモリ実装では何もしない。
func (c *memoryClient) Close() error {
	return nil
}

// compile-time interface check
var _ Client = (*memoryClient)(nil)
