package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kenta/reelvault/internal/model"
)

// PostgresFavoriteRepo はPostgreSQLを使用したお気に入りリポジトリ。
type PostgresFavoriteRepo struct {
	db *sql.DB
}

// NewPostgresFavoriteRepo はPostgresFavoriteRepoを生成する。
func NewPostgresFavoriteRepo(db *sql.DB) *PostgresFavoriteRepo {
	return &PostgresFavoriteRepo{db: db}
}

// Create はお気に入りを作成する。
// UNIQUE(user_id, movie_id)制約を利用し、重複追加は冪等に成功する。
func (r *PostgresFavoriteRepo) Create(ctx context.Context, favorite *model.Favorite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favourites (id, user_id, movie_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, movie_id) DO NOTHING`,
		favorite.ID, favorite.UserID, favorite.MovieID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}

	return nil
}

// ListMoviesByUserID はユーザーのお気に入り映画一覧をMoviesと結合して返す。
// 追加日時の降順で返す。
func (r *PostgresFavoriteRepo) ListMoviesByUserID(ctx context.Context, userID string) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.title, m.release_date, m.overview, m.poster_url, m.created_at
		 FROM favourites f
		 INNER JOIN movies m ON f.movie_id = m.id
		 WHERE f.user_id = $1
		 ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite movies: %w", err)
	}
	defer rows.Close()

	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.ReleaseDate, &m.Overview, &m.PosterURL, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorite movies: %w", err)
	}

	return movies, nil
}

// Delete はお気に入りを削除する。削除された場合はtrueを返す。
func (r *PostgresFavoriteRepo) Delete(ctx context.Context, userID string, movieID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favourites WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)
