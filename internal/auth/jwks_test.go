package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testLogger は出力を破棄するテスト用ロガーを返す。
func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// generateTestKey はテスト用のRSA鍵ペアを生成する。
func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return key
}

// jwkFromPublicKey は公開鍵から鍵セットエントリを構築する。
func jwkFromPublicKey(kid string, pub *rsa.PublicKey) jwkDocument {
	eBytes := []byte{
		byte(pub.E >> 16),
		byte(pub.E >> 8),
		byte(pub.E),
	}
	return jwkDocument{
		Kty: "RSA",
		Kid: kid,
		Use: "sig",
		Alg: "RS256",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(eBytes),
	}
}

// newJWKSServer は鍵セットを配信するテストサーバーを起動する。
// requestCountには累計リクエスト数が記録される。
func newJWKSServer(t *testing.T, keys []jwkDocument, requestCount *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestCount != nil {
			*requestCount++
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(keySetDocument{Keys: keys})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestVerificationKey_ResolvesKeyFromKeySet(t *testing.T) {
	key := generateTestKey(t)
	server := newJWKSServer(t, []jwkDocument{jwkFromPublicKey("key-1", &key.PublicKey)}, nil)

	provider := NewJWKSKeyProvider(server.URL, server.Client(), testLogger())

	pub, err := provider.VerificationKey(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("VerificationKey returned error: %v", err)
	}
	if pub.N.Cmp(key.PublicKey.N) != 0 || pub.E != key.PublicKey.E {
		t.Error("resolved key does not match the published key")
	}
}

func TestVerificationKey_UnknownKidReturnsErrKeyNotFound(t *testing.T) {
	key := generateTestKey(t)
	server := newJWKSServer(t, []jwkDocument{jwkFromPublicKey("key-1", &key.PublicKey)}, nil)

	provider := NewJWKSKeyProvider(server.URL, server.Client(), testLogger())

	_, err := provider.VerificationKey(context.Background(), "unknown-kid")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestVerificationKey_FetchFailureReturnsErrKeyFetchFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	provider := NewJWKSKeyProvider(server.URL, server.Client(), testLogger())

	_, err := provider.VerificationKey(context.Background(), "key-1")
	if !errors.Is(err, ErrKeyFetchFailed) {
		t.Errorf("expected ErrKeyFetchFailed, got %v", err)
	}
}

func TestVerificationKey_CachedKeySkipsRefetch(t *testing.T) {
	key := generateTestKey(t)
	requestCount := 0
	server := newJWKSServer(t, []jwkDocument{jwkFromPublicKey("key-1", &key.PublicKey)}, &requestCount)

	provider := NewJWKSKeyProvider(server.URL, server.Client(), testLogger())

	// 1回目: キャッシュミスで鍵セットを取得する
	if _, err := provider.VerificationKey(context.Background(), "key-1"); err != nil {
		t.Fatalf("first VerificationKey returned error: %v", err)
	}
	// 2回目: キャッシュヒットで取得は発生しない
	if _, err := provider.VerificationKey(context.Background(), "key-1"); err != nil {
		t.Fatalf("second VerificationKey returned error: %v", err)
	}

	if requestCount != 1 {
		t.Errorf("expected exactly 1 key set fetch, got %d", requestCount)
	}
}

func TestVerificationKey_MissAfterRotationRefetches(t *testing.T) {
	key1 := generateTestKey(t)
	key2 := generateTestKey(t)

	// ローテーション後の鍵セットを配信するサーバー
	keys := []jwkDocument{jwkFromPublicKey("key-1", &key1.PublicKey)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(keySetDocument{Keys: keys})
	}))
	t.Cleanup(server.Close)

	provider := NewJWKSKeyProvider(server.URL, server.Client(), testLogger())

	if _, err := provider.VerificationKey(context.Background(), "key-1"); err != nil {
		t.Fatalf("VerificationKey returned error: %v", err)
	}

	// 鍵をローテーションし、新しい鍵IDでの解決が成功することを確認する
	keys = []jwkDocument{jwkFromPublicKey("key-2", &key2.PublicKey)}

	pub, err := provider.VerificationKey(context.Background(), "key-2")
	if err != nil {
		t.Fatalf("VerificationKey after rotation returned error: %v", err)
	}
	if pub.N.Cmp(key2.PublicKey.N) != 0 {
		t.Error("resolved key does not match the rotated key")
	}
}

func TestFetchKeySet_SkipsNonRSAEntries(t *testing.T) {
	key := generateTestKey(t)
	docs := []jwkDocument{
		{Kty: "EC", Kid: "ec-key"},
		{Kty: "RSA"}, // kidなし
		jwkFromPublicKey("rsa-key", &key.PublicKey),
	}
	server := newJWKSServer(t, docs, nil)

	provider := NewJWKSKeyProvider(server.URL, server.Client(), testLogger())

	if _, err := provider.VerificationKey(context.Background(), "rsa-key"); err != nil {
		t.Fatalf("VerificationKey returned error: %v", err)
	}
	if _, err := provider.VerificationKey(context.Background(), "ec-key"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound for non-RSA key, got %v", err)
	}
}

func TestToRSAPublicKey_InvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		jwk  jwkDocument
	}{
		{name: "モジュラス欠落", jwk: jwkDocument{Kty: "RSA", Kid: "k", E: "AQAB"}},
		{name: "指数欠落", jwk: jwkDocument{Kty: "RSA", Kid: "k", N: "abc"}},
		{name: "不正なbase64", jwk: jwkDocument{Kty: "RSA", Kid: "k", N: "!!!", E: "AQAB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.jwk.toRSAPublicKey(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
