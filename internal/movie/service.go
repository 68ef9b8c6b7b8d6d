// Package movie は映画メタデータのキャッシュアサイド解決を提供する。
//
// 読み取りはキャッシュ → Record Store → 外部カタログの3層で解決する。
// 映画レコードは保存後に不変であるため、キャッシュの古さは誤りには
// ならない（初回挿入直後の短い不整合がTTLまたは初回読み込みで収束する）。
package movie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kenta/reelvault/internal/cache"
	"github.com/kenta/reelvault/internal/model"
	"github.com/kenta/reelvault/internal/repository"
	"github.com/kenta/reelvault/internal/security"
)

// ErrEmptyQuery は検索クエリが空（サニタイズ後に空になる場合を含む）であることを示す。
var ErrEmptyQuery = errors.New("movie: empty search query")

const (
	// movieCacheKeyPrefix は映画IDルックアップのキャッシュキープレフィックス。
	movieCacheKeyPrefix = "movieid_"
	// searchCacheKeyPrefix は検索クエリのキャッシュキープレフィックス。
	searchCacheKeyPrefix = "movie_search_"
	// DefaultCacheTTL はキャッシュエントリの既定の有効期限。
	DefaultCacheTTL = time.Hour
)

// CatalogClient は外部カタログAPIクライアントのインターフェース。
type CatalogClient interface {
	// GetMovie は映画IDでカタログから映画メタデータを取得する。
	GetMovie(ctx context.Context, movieID int64) (*model.Movie, error)
	// SearchMovies はサニタイズ済みクエリでカタログを検索する。
	SearchMovies(ctx context.Context, query string) (*model.MovieSearchResult, error)
}

// MetricsRecorder は解決フローのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordCacheHit(flow string)
	RecordCacheMiss(flow string)
	RecordCatalogFetch(operation string, success bool)
	RecordResolveLatency(flow string, d time.Duration)
}

// MovieService は映画の解決（ID・検索）をキャッシュアサイドで提供する。
type MovieService struct {
	cache     cache.Client
	movieRepo repository.MovieRepository
	catalog   CatalogClient
	sanitizer security.QuerySanitizerService
	metrics   MetricsRecorder
	ttl       time.Duration
}

// NewMovieService はMovieServiceの新しいインスタンスを生成する。
// ttlが0以下の場合はDefaultCacheTTLを使用する。
func NewMovieService(
	cacheClient cache.Client,
	movieRepo repository.MovieRepository,
	catalog CatalogClient,
	sanitizer security.QuerySanitizerService,
	metrics MetricsRecorder,
	ttl time.Duration,
) *MovieService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MovieService{
		cache:     cacheClient,
		movieRepo: movieRepo,
		catalog:   catalog,
		sanitizer: sanitizer,
		metrics:   metrics,
		ttl:       ttl,
	}
}

// Resolve は映画IDを解決し映画レコードを返す。冪等であり、キャッシュ状態に
// よらず同一IDに対して同一レコードを返す。
//
// 解決順序:
//  1. キャッシュ参照。ヒット時はストア・カタログを完全にバイパスして返す。
//  2. ミス時はRecord Storeを参照。
//  3. ストアにもない場合はカタログから取得し、先勝ちで永続化する。
//  4. 解決したレコードをTTL付きでキャッシュに書き込む（ベストエフォート）。
func (s *MovieService) Resolve(ctx context.Context, movieID int64) (*model.Movie, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordResolveLatency("movie", time.Since(start))
	}()

	key := fmt.Sprintf("%s%d", movieCacheKeyPrefix, movieID)

	// 1. キャッシュ参照
	if movie, ok := s.readMovieCache(ctx, key); ok {
		s.metrics.RecordCacheHit("movie")
		return movie, nil
	}
	s.metrics.RecordCacheMiss("movie")

	// 2. Record Store参照
	movie, err := s.movieRepo.FindByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie store: %w", err)
	}

	// 3. ストアミス時はカタログから取得し永続化する
	if movie == nil {
		fetched, err := s.catalog.GetMovie(ctx, movieID)
		if err != nil {
			s.metrics.RecordCatalogFetch("movie", false)
			return nil, fmt.Errorf("failed to fetch movie from catalog: %w", err)
		}
		s.metrics.RecordCatalogFetch("movie", true)

		// 先勝ち: 同時挿入の競合はリポジトリ側で吸収される
		if err := s.movieRepo.Insert(ctx, fetched); err != nil {
			return nil, fmt.Errorf("failed to store movie: %w", err)
		}
		movie = fetched
	}

	// 4. キャッシュ書き込み（失敗してもリクエストは成功させる）
	s.writeCache(ctx, key, movie)

	return movie, nil
}

// Search は検索クエリをサニタイズし、結果セットをキャッシュアサイドで解決する。
// 検索結果はRecord Storeには永続化しない（一時的な射影のため）。
// 空のクエリ（サニタイズ後に空になる場合を含む）はErrEmptyQueryを返す。
func (s *MovieService) Search(ctx context.Context, rawQuery string) (*model.MovieSearchResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordResolveLatency("search", time.Since(start))
	}()

	// サニタイズ済みの値をキャッシュキーとカタログパラメータの両方に使う。
	// 未サニタイズ値のキャッシュエントリと混ざることはない。
	query := s.sanitizer.Sanitize(rawQuery)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := searchCacheKeyPrefix + query

	if result, ok := s.readSearchCache(ctx, key); ok {
		s.metrics.RecordCacheHit("search")
		return result, nil
	}
	s.metrics.RecordCacheMiss("search")

	result, err := s.catalog.SearchMovies(ctx, query)
	if err != nil {
		s.metrics.RecordCatalogFetch("search", false)
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	s.metrics.RecordCatalogFetch("search", true)

	s.writeCache(ctx, key, result)

	return result, nil
}

// readMovieCache はキャッシュから映画レコードを読み取る。
// 読み取り障害と壊れたエントリはミスとして扱う（ログのみ）。
func (s *MovieService) readMovieCache(ctx context.Context, key string) (*model.Movie, bool) {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			slog.Warn("cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}

	var movie model.Movie
	if err := json.Unmarshal([]byte(cached), &movie); err != nil {
		slog.Warn("cache entry unmarshal failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	return &movie, true
}

// readSearchCache はキャッシュから検索結果セットを読み取る。
func (s *MovieService) readSearchCache(ctx context.Context, key string) (*model.MovieSearchResult, bool) {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			slog.Warn("cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}

	var result model.MovieSearchResult
	if err := json.Unmarshal([]byte(cached), &result); err != nil {
		slog.Warn("cache entry unmarshal failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	return &result, true
}

// writeCache は値をシリアライズしてTTL付きで書き込む。
// キャッシュは最適化であり、書き込み失敗はログのみでリクエストを失敗させない。
func (s *MovieService) writeCache(ctx context.Context, key string, value any) {
	b, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache value marshal failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.cache.Set(ctx, key, string(b), s.ttl); err != nil {
		slog.Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
