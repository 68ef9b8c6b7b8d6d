package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン検証の型付きエラー
var (
	// ErrTokenMissing はトークンが提示されなかったことを示す。
	ErrTokenMissing = errors.New("auth: token missing")
	// ErrTokenMalformed はトークンがデコード不能、または鍵IDを持たないことを示す。
	ErrTokenMalformed = errors.New("auth: token malformed")
	// ErrSignatureInvalid は署名・アルゴリズム・時刻クレームの検証失敗を示す。
	ErrSignatureInvalid = errors.New("auth: signature invalid")
)

// signingAlgorithm は受け入れる唯一の署名アルゴリズム。
// それ以外で署名されたトークンはErrSignatureInvalidとして拒否する。
const signingAlgorithm = "RS256"

// Claims は検証済みトークンのクレームセットを表す。
// 署名検証に成功した場合にのみ生成され、1リクエストの間だけ生存する。
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenVerifier は生のベアラートークンを検証しClaimsを生成する。
// 認可は行わない。リソースへのアクセス可否の判断は呼び出し側の責務。
type TokenVerifier struct {
	keys KeyProvider
}

// NewTokenVerifier はTokenVerifierを生成する。
func NewTokenVerifier(keys KeyProvider) *TokenVerifier {
	return &TokenVerifier{keys: keys}
}

// Verify はトークンの署名・アルゴリズム・時刻クレームを検証し、Claimsを返す。
// 失敗時は型付きエラーを返す:
//   - ErrTokenMissing: トークンが空
//   - ErrTokenMalformed: デコード不能、または鍵ID（kid）がヘッダーにない
//   - ErrKeyNotFound / ErrKeyFetchFailed: KeyProviderから伝播
//   - ErrSignatureInvalid: 署名・アルゴリズム・期限の検証失敗
func (v *TokenVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	if rawToken == "" {
		return nil, ErrTokenMissing
	}

	keyFunc := func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: no kid in token header", ErrTokenMalformed)
		}
		return v.keys.VerificationKey(ctx, kid)
	}

	parsed, err := jwt.ParseWithClaims(rawToken, &jwt.RegisteredClaims{}, keyFunc,
		jwt.WithValidMethods([]string{signingAlgorithm}),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenMalformed),
			errors.Is(err, ErrKeyNotFound),
			errors.Is(err, ErrKeyFetchFailed):
			// keyFuncからの型付きエラーをそのまま伝播する
			return nil, err
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
	}

	registered, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || registered.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrSignatureInvalid)
	}

	claims := &Claims{
		Subject: registered.Subject,
		Issuer:  registered.Issuer,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}

	return claims, nil
}
