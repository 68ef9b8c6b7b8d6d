// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kenta/reelvault/internal/auth"
	"github.com/kenta/reelvault/internal/cache"
	"github.com/kenta/reelvault/internal/catalog"
	"github.com/kenta/reelvault/internal/config"
	"github.com/kenta/reelvault/internal/database"
	"github.com/kenta/reelvault/internal/favorite"
	"github.com/kenta/reelvault/internal/handler"
	"github.com/kenta/reelvault/internal/logger"
	"github.com/kenta/reelvault/internal/metrics"
	"github.com/kenta/reelvault/internal/movie"
	"github.com/kenta/reelvault/internal/repository"
	"github.com/kenta/reelvault/internal/security"
)

// Init はアプリケーションの初期化を行う。
// .envファイルがあれば読み込み（なくてもエラーにしない）、
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. .envファイルの読み込み（ローカル開発用、本番では環境変数を直接使う）
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env file")
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB・キャッシュ接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. キャッシュ接続
	cacheClient, err := cache.New(cache.Config{
		Driver:   cfg.CacheDriver,
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.CachePrefix,
	})
	if err != nil {
		return fmt.Errorf("failed to create cache client: %w", err)
	}
	defer cacheClient.Close()

	slog.Info("cache client ready",
		slog.String("driver", cfg.CacheDriver),
	)

	// 3. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	movieRepo := repository.NewPostgresMovieRepo(db)
	favoriteRepo := repository.NewPostgresFavoriteRepo(db)

	// 4. トークン検証の初期化
	keyProvider := auth.NewJWKSKeyProvider(
		cfg.JWKSURL,
		&http.Client{Timeout: cfg.JWKSTimeout},
		slog.Default(),
	)
	verifier := auth.NewTokenVerifier(keyProvider)

	// 5. 外部カタログクライアントの初期化
	catalogClient := catalog.NewClient(
		&http.Client{Timeout: cfg.CatalogTimeout},
		cfg.TMDBAPIKey,
		slog.Default(),
	)
	catalogClient.SetBaseURL(cfg.TMDBBaseURL)

	// 6. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector()
	if err := registry.Register(collector); err != nil {
		return fmt.Errorf("failed to register metrics collector: %w", err)
	}

	// 7. ドメインサービスの初期化
	sanitizer := security.NewQuerySanitizer()
	movieService := movie.NewMovieService(
		cacheClient, movieRepo, catalogClient, sanitizer, collector, cfg.CacheTTL,
	)
	favoriteService := favorite.NewService(favoriteRepo, movieService)

	// 8. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		TokenVerifier:     verifier,
		UserFinder:        userRepo,
		StatusRecorder:    collector,

		MovieService:    movieService,
		FavoriteService: favoriteService,

		DB:             db,
		Cache:          cacheClient,
		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
