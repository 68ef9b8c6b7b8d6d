package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kenta/reelvault/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	TokenVerifier     middleware.TokenVerifier
	UserFinder        middleware.UserFinder
	StatusRecorder    middleware.StatusRecorder

	// サービス
	MovieService    MovieServiceInterface
	FavoriteService FavoriteServiceInterface

	// 運用エンドポイント
	DB             DBPinger
	Cache          CachePinger
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → SecurityHeaders → Logging → Metrics
//
// /health と /metrics は認証の外に配置する。認証ルートは
// トークン検証のみのルート（映画詳細）と、ローカルユーザー解決まで
// 必要なルート（検索・お気に入り）の2段に分かれる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}

	movieHandler := NewMovieHandler(deps.MovieService)
	favoriteHandler := NewFavoriteHandler(deps.FavoriteService)
	healthHandler := NewHealthHandler(deps.DB, deps.Cache)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Check)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 認証が必要なルート ---

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))

			// 映画詳細はトークン検証のみで到達できる
			r.Get("/movies/{movieId}", movieHandler.GetMovie)

			// 検索・お気に入りはローカルユーザーの解決まで必要
			r.Group(func(r chi.Router) {
				r.Use(middleware.NewUserMiddleware(deps.UserFinder))

				r.Get("/movies/search", movieHandler.SearchMovies)

				r.Route("/favorites", func(r chi.Router) {
					r.Post("/", favoriteHandler.Add)
					r.Get("/", favoriteHandler.List)
					r.Delete("/{movieId}", favoriteHandler.Remove)
				})
			})
		})
	})

	return r
}
