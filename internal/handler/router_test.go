package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kenta/reelvault/internal/auth"
	"github.com/kenta/reelvault/internal/model"
)

// --- スタブ定義 ---

// stubVerifier は固定トークン "valid-token" のみを受け入れる。
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, rawToken string) (*auth.Claims, error) {
	if rawToken == "valid-token" {
		return &auth.Claims{Subject: "auth0|user-123"}, nil
	}
	return nil, auth.ErrSignatureInvalid
}

// stubUserFinder は既知のサブジェクトに対してのみユーザーを返す。
type stubUserFinder struct{}

func (stubUserFinder) FindByProviderID(_ context.Context, providerID string) (*model.User, error) {
	if providerID == "auth0|user-123" {
		return &model.User{ID: "uuid-1", ProviderID: providerID}, nil
	}
	return nil, nil
}

type stubDBPinger struct{ err error }

func (s stubDBPinger) PingContext(_ context.Context) error { return s.err }

type stubCachePinger struct{ err error }

func (s stubCachePinger) Ping(_ context.Context) error { return s.err }

// newTestRouter は全スタブを組み付けたルーターを構築する。
func newTestRouter() http.Handler {
	return NewRouter(&RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		TokenVerifier:     stubVerifier{},
		UserFinder:        stubUserFinder{},

		MovieService:    &mockMovieService{},
		FavoriteService: &mockFavoriteService{},

		DB:    stubDBPinger{},
		Cache: stubCachePinger{},
	})
}

// doRequest はルーターにリクエストを送り、レスポンスを記録する。
func doRequest(router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- テスト ---

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/movies/27205"},
		{http.MethodGet, "/api/movies/search?q=Inception"},
		{http.MethodGet, "/api/favorites"},
		{http.MethodPost, "/api/favorites"},
		{http.MethodDelete, "/api/favorites/27205"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := doRequest(router, tt.method, tt.target, "", "")
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"message":"Access token missing"`) {
				t.Errorf("unexpected body: %s", rec.Body.String())
			}
		})
	}
}

func TestRouter_InvalidTokenReturns401(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/movies/27205", "forged-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Token verification failed"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_MovieDetailWithValidToken(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/movies/27205", "valid-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var movie model.Movie
	if err := json.NewDecoder(rec.Body).Decode(&movie); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if movie.Title != "Inception" {
		t.Errorf("unexpected title: %s", movie.Title)
	}
}

func TestRouter_SearchRouteIsNotShadowedByMovieID(t *testing.T) {
	router := newTestRouter()

	// /api/movies/search が {movieId} パラメータとして解釈されないこと
	rec := doRequest(router, http.MethodGet, "/api/movies/search?q=Inception", "valid-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result model.MovieSearchResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.TotalResults != 1 {
		t.Errorf("unexpected total_results: %d", result.TotalResults)
	}
}

func TestRouter_SearchWithoutQueryReturns400(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/movies/search", "valid-token", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Missing search query"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_FavoritesFlow(t *testing.T) {
	router := newTestRouter()

	// 追加
	rec := doRequest(router, http.MethodPost, "/api/favorites", "valid-token", `{"movieId": 27205}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("add: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// 一覧
	rec = doRequest(router, http.MethodGet, "/api/favorites", "valid-token", "")
	if rec.Code != http.StatusOK {
		t.Errorf("list: expected 200, got %d", rec.Code)
	}

	// 削除
	rec = doRequest(router, http.MethodDelete, "/api/favorites/27205", "valid-token", "")
	if rec.Code != http.StatusOK {
		t.Errorf("remove: expected 200, got %d", rec.Code)
	}
}

func TestRouter_HealthEndpointIsPublic(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_HealthReportsUnavailableOnDBFailure(t *testing.T) {
	router := NewRouter(&RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		TokenVerifier:     stubVerifier{},
		UserFinder:        stubUserFinder{},
		MovieService:      &mockMovieService{},
		FavoriteService:   &mockFavoriteService{},
		DB:                stubDBPinger{err: context.DeadlineExceeded},
		Cache:             stubCachePinger{},
	})

	rec := doRequest(router, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestRouter_CORSPreflightReturns204(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/favorites", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("unexpected allow-origin: %s", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Error("Authorization header must be allowed for bearer tokens")
	}
}

func TestRouter_SecurityHeadersAreSet(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/health", "", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
}
