package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kenta/reelvault/internal/model"
	"github.com/kenta/reelvault/internal/movie"
)

// MovieServiceInterface は映画ハンドラーが必要とするサービスインターフェース。
type MovieServiceInterface interface {
	// Resolve は映画IDを解決し映画レコードを返す。
	Resolve(ctx context.Context, movieID int64) (*model.Movie, error)
	// Search は検索クエリで映画の結果セットを解決する。
	Search(ctx context.Context, rawQuery string) (*model.MovieSearchResult, error)
}

// MovieHandler は映画解決のHTTPハンドラー。
type MovieHandler struct {
	service MovieServiceInterface
}

// NewMovieHandler はMovieHandlerを生成する。
func NewMovieHandler(service MovieServiceInterface) *MovieHandler {
	return &MovieHandler{service: service}
}

// GetMovie は映画IDで映画詳細を解決する。
// GET /api/movies/{movieId}
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieId"), 10, 64)
	if err != nil || movieID <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidMovieIDError())
		return
	}

	resolved, err := h.service.Resolve(r.Context(), movieID)
	if err != nil {
		// カタログの「該当なし」と取得失敗は区別せず同一レスポンスにする
		slog.Error("movie resolve failed",
			slog.Int64("movie_id", movieID),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewMovieDetailFailedError())
		return
	}

	writeJSON(w, http.StatusOK, resolved)
}

// SearchMovies は検索クエリで映画を検索する。
// GET /api/movies/search?q=...
func (h *MovieHandler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	rawQuery := r.URL.Query().Get("q")
	if rawQuery == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingSearchQueryError())
		return
	}

	result, err := h.service.Search(r.Context(), rawQuery)
	if err != nil {
		// サニタイズ後に空になったクエリも欠落として扱う
		if errors.Is(err, movie.ErrEmptyQuery) {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingSearchQueryError())
			return
		}
		slog.Error("movie search failed",
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewMovieSearchFailedError())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
