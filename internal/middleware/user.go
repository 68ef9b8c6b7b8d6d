package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kenta/reelvault/internal/model"
)

// UserFinder はローカルユーザー検索のインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByProviderID(ctx context.Context, providerID string) (*model.User, error)
}

// NewUserMiddleware は検証済みクレームのサブジェクトでローカルユーザーを
// 解決し、リクエストコンテキストに注入するミドルウェアを返す。
// 認証ミドルウェアの後段に配置すること。読み取り専用で副作用を持たない。
func NewUserMiddleware(users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ClaimsFromContext(r.Context())
			if err != nil {
				// 認証ミドルウェアを経由していないリクエスト
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewAccessTokenMissingError())
				return
			}

			user, err := users.FindByProviderID(r.Context(), claims.Subject)
			if err != nil {
				slog.Error("user lookup failed",
					slog.String("provider_id", claims.Subject),
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusInternalServerError, model.NewUserLookupFailedError())
				return
			}
			if user == nil {
				WriteErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
