// Package favorite はお気に入り管理機能を提供する。
package favorite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kenta/reelvault/internal/model"
	"github.com/kenta/reelvault/internal/repository"
)

// ErrNotFound は対象のお気に入りが存在しないことを示す。
var ErrNotFound = errors.New("favorite: not found")

// MovieResolver は映画レコードの解決インターフェース。
// お気に入り追加前に映画レコードの存在を保証するために使用する。
type MovieResolver interface {
	Resolve(ctx context.Context, movieID int64) (*model.Movie, error)
}

// Service はお気に入りの追加・一覧・削除を提供する。
type Service struct {
	favoriteRepo repository.FavoriteRepository
	movies       MovieResolver
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(favoriteRepo repository.FavoriteRepository, movies MovieResolver) *Service {
	return &Service{
		favoriteRepo: favoriteRepo,
		movies:       movies,
	}
}

// Add はお気に入りを追加する。
// 外部キー制約を満たすため、先に映画レコードの存在を解決で保証する。
// 同一（ユーザー, 映画）の重複追加は冪等に成功する。
func (s *Service) Add(ctx context.Context, userID string, movieID int64) error {
	if _, err := s.movies.Resolve(ctx, movieID); err != nil {
		return fmt.Errorf("failed to resolve movie before favoriting: %w", err)
	}

	favorite := &model.Favorite{
		ID:      uuid.New().String(),
		UserID:  userID,
		MovieID: movieID,
	}
	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	return nil
}

// List はユーザーのお気に入り映画一覧を返す。
func (s *Service) List(ctx context.Context, userID string) ([]model.Movie, error) {
	movies, err := s.favoriteRepo.ListMoviesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return movies, nil
}

// Remove はお気に入りを削除する。対象が存在しない場合はErrNotFoundを返す。
func (s *Service) Remove(ctx context.Context, userID string, movieID int64) error {
	deleted, err := s.favoriteRepo.Delete(ctx, userID, movieID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
