package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kenta/reelvault/internal/favorite"
	"github.com/kenta/reelvault/internal/middleware"
	"github.com/kenta/reelvault/internal/model"
)

// FavoriteServiceInterface はお気に入りハンドラーが必要とするサービスインターフェース。
type FavoriteServiceInterface interface {
	// Add はお気に入りを追加する。映画レコードの存在は追加前に保証される。
	Add(ctx context.Context, userID string, movieID int64) error
	// List はユーザーのお気に入り映画一覧を返す。
	List(ctx context.Context, userID string) ([]model.Movie, error)
	// Remove はお気に入りを削除する。
	Remove(ctx context.Context, userID string, movieID int64) error
}

// FavoriteHandler はお気に入り管理のHTTPハンドラー。
type FavoriteHandler struct {
	service FavoriteServiceInterface
}

// NewFavoriteHandler はFavoriteHandlerを生成する。
func NewFavoriteHandler(service FavoriteServiceInterface) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// addFavoriteRequest はお気に入り追加リクエストのボディ。
type addFavoriteRequest struct {
	MovieID int64 `json:"movieId"`
}

// Add は映画をお気に入りに追加する。
// POST /api/favorites
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}

	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MovieID <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidMovieIDError())
		return
	}

	if err := h.service.Add(r.Context(), user.ID, req.MovieID); err != nil {
		slog.Error("favorite add failed",
			slog.String("user_id", user.ID),
			slog.Int64("movie_id", req.MovieID),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewFavoriteAddFailedError())
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "Movie added to favorites successfully!"})
}

// List はユーザーのお気に入り映画一覧を返す。
// GET /api/favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}

	movies, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		slog.Error("favorite list failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewFavoriteListFailedError())
		return
	}

	// お気に入りが空の場合もnullではなく空配列を返す
	if movies == nil {
		movies = []model.Movie{}
	}

	writeJSON(w, http.StatusOK, movies)
}

// Remove は映画をお気に入りから削除する。
// DELETE /api/favorites/{movieId}
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}

	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieId"), 10, 64)
	if err != nil || movieID <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidMovieIDError())
		return
	}

	if err := h.service.Remove(r.Context(), user.ID, movieID); err != nil {
		if errors.Is(err, favorite.ErrNotFound) {
			writeAPIErrorResponse(w, http.StatusNotFound, model.NewFavoriteNotFoundError())
			return
		}
		slog.Error("favorite remove failed",
			slog.String("user_id", user.ID),
			slog.Int64("movie_id", movieID),
			slog.String("error", err.Error()),
		)
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewFavoriteRemoveFailedError())
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Movie removed from favorites successfully!"})
}
