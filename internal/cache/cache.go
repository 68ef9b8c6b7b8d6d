// Package cache はキャッシュアサイド層のクライアント抽象を提供する。
//
// キャッシュは最適化であり、正しさの依存先ではない。キーの不在が
// Record Store上のレコード不在を意味することはなく、書き込み失敗は
// リクエストを失敗させない（呼び出し側でログして継続する）。
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound はキーが存在しないことを示す。
var ErrNotFound = errors.New("cache: key not found")

// Client はキャッシュ操作のインターフェース。
type Client interface {
	// Get は値を取得する。キーが存在しない場合はErrNotFoundを返す。
	Get(ctx context.Context, key string) (string, error)

	// Set は値をTTL付きで保存する。ttlが0の場合は無期限。
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Ping は接続を確認する。
	Ping(ctx context.Context) error

	// Close は接続を閉じる。
	Close() error
}

// Config はキャッシュクライアントの生成設定。
type Config struct {
	Driver   string // "redis" | "memory"
	Addr     string // Redisのhost:port
	Password string
	DB       int
	Prefix   string // 全キーに付与するプレフィックス
}

// New は設定に応じたキャッシュクライアントを生成する。
func New(cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	default:
		return nil, errors.New("cache: unknown driver: " + cfg.Driver)
	}
}
