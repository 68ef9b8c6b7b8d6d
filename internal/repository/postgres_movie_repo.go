package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kenta/reelvault/internal/model"
)

// PostgresMovieRepo はPostgreSQLを使用した映画レコードリポジトリ。
type PostgresMovieRepo struct {
	db *sql.DB
}

// NewPostgresMovieRepo はPostgresMovieRepoを生成する。
func NewPostgresMovieRepo(db *sql.DB) *PostgresMovieRepo {
	return &PostgresMovieRepo{db: db}
}

// FindByID は指定IDの映画を取得する。見つからない場合はnilを返す。
func (r *PostgresMovieRepo) FindByID(ctx context.Context, id int64) (*model.Movie, error) {
	movie := &model.Movie{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, release_date, overview, poster_url, created_at
		 FROM movies WHERE id = $1`,
		id,
	).Scan(&movie.ID, &movie.Title, &movie.ReleaseDate, &movie.Overview, &movie.PosterURL, &movie.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find movie by ID: %w", err)
	}

	return movie, nil
}

// Insert は映画レコードを先勝ちで挿入する。
// 主キー競合はON CONFLICT DO NOTHINGで吸収する。同時挿入に負けた側の
// コピーも既存行と等価なため、再読込は行わない。
func (r *PostgresMovieRepo) Insert(ctx context.Context, movie *model.Movie) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (id, title, release_date, overview, poster_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		movie.ID, movie.Title, movie.ReleaseDate, movie.Overview, movie.PosterURL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}

	return nil
}

// compile-time interface check
var _ MovieRepository = (*PostgresMovieRepo)(nil)
