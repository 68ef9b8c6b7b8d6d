package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kenta/reelvault/internal/auth"
	"github.com/kenta/reelvault/internal/model"
)

// bearerPrefix はAuthorizationヘッダーのスキーム。
const bearerPrefix = "Bearer "

// TokenVerifier はトークン検証のインターフェース。
// auth.TokenVerifierの部分集合として定義する。
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*auth.Claims, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証し、
// 検証済みクレームをリクエストコンテキストに注入するミドルウェアを返す。
// 認証失敗はストア・カタログへのアクセス前に短絡する（副作用なし）。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorizationヘッダーからトークンを抽出
			rawToken, ok := extractBearerToken(r)
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewAccessTokenMissingError())
				return
			}

			// 2. 署名・アルゴリズム・時刻クレームを検証
			claims, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				writeVerifyError(w, err)
				return
			}

			// 3. 検証済みクレームをコンテキストに注入
			ctx := ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーからベアラートークンを取り出す。
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token, found := strings.CutPrefix(header, bearerPrefix)
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// writeVerifyError は検証エラーの種別に応じたレスポンスを書き込む。
func writeVerifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrTokenMissing):
		WriteErrorResponse(w, http.StatusUnauthorized, model.NewAccessTokenMissingError())
	case errors.Is(err, auth.ErrTokenMalformed), errors.Is(err, auth.ErrKeyNotFound):
		WriteErrorResponse(w, http.StatusUnauthorized, model.NewTokenInvalidError())
	case errors.Is(err, auth.ErrSignatureInvalid):
		WriteErrorResponse(w, http.StatusUnauthorized, model.NewTokenVerifyFailedError())
	default:
		// 鍵セット取得失敗などの内部要因
		slog.Error("token verification error",
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, http.StatusInternalServerError, model.NewKeyFetchFailedError())
	}
}
