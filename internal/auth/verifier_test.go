package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// --- モック定義 ---

type mockKeyProvider struct {
	verificationKeyFn func(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

func (m *mockKeyProvider) VerificationKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if m.verificationKeyFn != nil {
		return m.verificationKeyFn(ctx, kid)
	}
	return nil, ErrKeyNotFound
}

var _ KeyProvider = (*mockKeyProvider)(nil)

// signTestToken は指定された鍵IDと秘密鍵でRS256トークンを発行する。
func signTestToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

// newTestVerifier は単一鍵のKeyProviderを持つTokenVerifierを構築する。
func newTestVerifier(key *rsa.PrivateKey, kid string) *TokenVerifier {
	provider := &mockKeyProvider{
		verificationKeyFn: func(_ context.Context, requestedKid string) (*rsa.PublicKey, error) {
			if requestedKid == kid {
				return &key.PublicKey, nil
			}
			return nil, fmt.Errorf("%w: kid=%s", ErrKeyNotFound, requestedKid)
		},
	}
	return NewTokenVerifier(provider)
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "auth0|user-123",
		Issuer:    "https://idp.example.com/",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

// --- テスト ---

func TestVerify_ValidTokenReturnsClaims(t *testing.T) {
	key := generateTestKey(t)
	verifier := newTestVerifier(key, "key-1")
	token := signTestToken(t, key, "key-1", validClaims())

	claims, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Subject != "auth0|user-123" {
		t.Errorf("expected subject auth0|user-123, got %s", claims.Subject)
	}
	if claims.Issuer != "https://idp.example.com/" {
		t.Errorf("unexpected issuer: %s", claims.Issuer)
	}
}

func TestVerify_EmptyTokenReturnsErrTokenMissing(t *testing.T) {
	verifier := NewTokenVerifier(&mockKeyProvider{})

	_, err := verifier.Verify(context.Background(), "")
	if !errors.Is(err, ErrTokenMissing) {
		t.Errorf("expected ErrTokenMissing, got %v", err)
	}
}

func TestVerify_GarbageTokenReturnsErrTokenMalformed(t *testing.T) {
	verifier := NewTokenVerifier(&mockKeyProvider{})

	_, err := verifier.Verify(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestVerify_NoKidHeaderReturnsErrTokenMalformed(t *testing.T) {
	key := generateTestKey(t)
	verifier := newTestVerifier(key, "key-1")

	// kidヘッダーなしで署名する
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims())
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	_, verr := verifier.Verify(context.Background(), signed)
	if !errors.Is(verr, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed, got %v", verr)
	}
}

func TestVerify_UnknownKidPropagatesErrKeyNotFound(t *testing.T) {
	key := generateTestKey(t)
	verifier := newTestVerifier(key, "key-1")
	token := signTestToken(t, key, "unknown-kid", validClaims())

	_, err := verifier.Verify(context.Background(), token)
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestVerify_KeyFetchFailurePropagates(t *testing.T) {
	key := generateTestKey(t)
	provider := &mockKeyProvider{
		verificationKeyFn: func(_ context.Context, _ string) (*rsa.PublicKey, error) {
			return nil, fmt.Errorf("%w: connection refused", ErrKeyFetchFailed)
		},
	}
	verifier := NewTokenVerifier(provider)
	token := signTestToken(t, key, "key-1", validClaims())

	_, err := verifier.Verify(context.Background(), token)
	if !errors.Is(err, ErrKeyFetchFailed) {
		t.Errorf("expected ErrKeyFetchFailed, got %v", err)
	}
}

func TestVerify_WrongKeySignatureReturnsErrSignatureInvalid(t *testing.T) {
	key := generateTestKey(t)
	otherKey := generateTestKey(t)

	// key-1として別の鍵で署名されたトークン
	verifier := newTestVerifier(key, "key-1")
	token := signTestToken(t, otherKey, "key-1", validClaims())

	_, err := verifier.Verify(context.Background(), token)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerify_ExpiredTokenReturnsErrSignatureInvalid(t *testing.T) {
	key := generateTestKey(t)
	verifier := newTestVerifier(key, "key-1")

	claims := validClaims()
	claims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token := signTestToken(t, key, "key-1", claims)

	_, err := verifier.Verify(context.Background(), token)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerify_HS256TokenIsRejected(t *testing.T) {
	key := generateTestKey(t)
	verifier := newTestVerifier(key, "key-1")

	// 共有鍵アルゴリズムで署名されたトークンはアルゴリズム制約で拒否される
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	token.Header["kid"] = "key-1"
	signed, err := token.SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	_, verr := verifier.Verify(context.Background(), signed)
	if !errors.Is(verr, ErrSignatureInvalid) {
		t.Errorf("expected ErrSignatureInvalid, got %v", verr)
	}
}

func TestVerify_MissingSubjectReturnsErrSignatureInvalid(t *testing.T) {
	key := generateTestKey(t)
	verifier := newTestVerifier(key, "key-1")

	claims := validClaims()
	claims.Subject = ""
	token := signTestToken(t, key, "key-1", claims)

	_, err := verifier.Verify(context.Background(), token)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("expected ErrSignatureInvalid, got %v", err)
	}
}
