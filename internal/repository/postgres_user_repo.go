package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kenta/reelvault/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByProviderID はIdPのサブジェクト識別子でユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByProviderID(ctx context.Context, providerID string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, provider_id, username, email, created_at FROM users WHERE provider_id = $1`,
		providerID,
	).Scan(&user.ID, &user.ProviderID, &user.Username, &user.Email, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by provider ID: %w", err)
	}

	return user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
