// Package auth はベアラートークンの検証機能を提供する。
//
// IdPが公開する鍵セット（JWKS）から署名検証用の公開鍵を解決し、
// トークンの署名・アルゴリズム・時刻クレームを検証する。
// アカウントのライフサイクル管理（サインアップ等）はIdP側の責務であり、
// このパッケージは受け取ったトークンの検証のみを行う。
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
)

// 鍵解決の型付きエラー
var (
	// ErrKeyNotFound は鍵セットに該当する鍵IDが存在しないことを示す。
	ErrKeyNotFound = errors.New("auth: signing key not found")
	// ErrKeyFetchFailed は鍵セットの取得・解析に失敗したことを示す。
	ErrKeyFetchFailed = errors.New("auth: key set fetch failed")
)

// KeyProvider は鍵IDから検証用公開鍵を解決するインターフェース。
type KeyProvider interface {
	// VerificationKey は指定された鍵IDの公開鍵を返す。
	// 鍵セットに存在しない場合はErrKeyNotFound、取得失敗時はErrKeyFetchFailedを返す。
	VerificationKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// jwkDocument は鍵セット内の1エントリを表す。
// RSA鍵のモジュラス(n)と指数(e)はbase64url（パディングなし）でエンコードされる。
type jwkDocument struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// keySetDocument は鍵セットエンドポイントのレスポンスを表す。
type keySetDocument struct {
	Keys []jwkDocument `json:"keys"`
}

// JWKSKeyProvider はリモートの鍵セットエンドポイントから公開鍵を解決するKeyProvider実装。
// 解決済みの鍵はプロセス生存期間中メモリにキャッシュし、未知の鍵IDに対する
// ミス時のみ再取得する（再起動なしの鍵ローテーションに対応）。
// 並行リフレッシュは許容し、後勝ちでキャッシュを置き換える。
type JWKSKeyProvider struct {
	jwksURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// NewJWKSKeyProvider はJWKSKeyProviderを生成する。
func NewJWKSKeyProvider(jwksURL string, httpClient *http.Client, logger *slog.Logger) *JWKSKeyProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &JWKSKeyProvider{
		jwksURL:    jwksURL,
		httpClient: httpClient,
		logger:     logger,
		keys:       make(map[string]*rsa.PublicKey),
	}
}

// VerificationKey は指定された鍵IDの公開鍵を返す。
// キャッシュミス時は鍵セットを再取得してキャッシュを丸ごと置き換える。
func (p *JWKSKeyProvider) VerificationKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	p.mu.RLock()
	key, ok := p.keys[kid]
	p.mu.RUnlock()
	if ok {
		return key, nil
	}

	// キャッシュミス: 鍵ローテーションの可能性があるため再取得する
	keys, err := p.fetchKeySet(ctx)
	if err != nil {
		p.logger.Error("key set fetch failed",
			slog.String("jwks_url", p.jwksURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", ErrKeyFetchFailed, err)
	}

	p.mu.Lock()
	p.keys = keys
	p.mu.Unlock()

	if key, ok := keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: kid=%s", ErrKeyNotFound, kid)
}

// fetchKeySet は鍵セットエンドポイントを取得し、鍵ID→公開鍵のマップを構築する。
func (p *JWKSKeyProvider) fetchKeySet(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build key set request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch key set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key set endpoint returned status %d", resp.StatusCode)
	}

	var doc keySetDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode key set: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jwk := range doc.Keys {
		// RSA以外の鍵種は対象外
		if jwk.Kty != "RSA" || jwk.Kid == "" {
			continue
		}
		pub, err := jwk.toRSAPublicKey()
		if err != nil {
			p.logger.Warn("skipping unparsable key set entry",
				slog.String("kid", jwk.Kid),
				slog.String("error", err.Error()),
			)
			continue
		}
		keys[jwk.Kid] = pub
	}

	return keys, nil
}

// toRSAPublicKey はモジュラス・指数フィールドからRSA公開鍵を構築する。
func (j jwkDocument) toRSAPublicKey() (*rsa.PublicKey, error) {
	if j.N == "" || j.E == "" {
		return nil, errors.New("rsa key entry missing n/e")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = (e << 8) | int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent 0")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

// compile-time interface check
var _ KeyProvider = (*JWKSKeyProvider)(nil)
