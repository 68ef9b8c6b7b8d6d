// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/kenta/reelvault/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// ユーザーレコードはサインアップ時に作成済みで、コアからは読み取り専用。
type UserRepository interface {
	// FindByProviderID はIdPのサブジェクト識別子でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderID(ctx context.Context, providerID string) (*model.User, error)
}

// MovieRepository は映画レコードの永続化インターフェース。
// 映画レコードは不変であり、更新操作を提供しない。
type MovieRepository interface {
	// FindByID は指定IDの映画を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Movie, error)

	// Insert は映画レコードを先勝ちで挿入する。
	// 同一IDの同時挿入による競合はエラーにせず成功として扱う
	// （レコードは不変のため、呼び出し側のコピーは既存行と等価）。
	Insert(ctx context.Context, movie *model.Movie) error
}

// FavoriteRepository はお気に入りデータの永続化インターフェース。
type FavoriteRepository interface {
	// Create はお気に入りを作成する。同一（ユーザー, 映画）の重複追加は
	// エラーにせず冪等に成功する。
	Create(ctx context.Context, favorite *model.Favorite) error

	// ListMoviesByUserID はユーザーのお気に入り映画一覧をMoviesと結合して返す。
	ListMoviesByUserID(ctx context.Context, userID string) ([]model.Movie, error)

	// Delete はお気に入りを削除する。削除された場合はtrueを返す。
	Delete(ctx context.Context, userID string, movieID int64) (bool, error)
}
