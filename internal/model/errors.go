// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はHTTPレスポンスとして返すエラーを表す。
// Messageはそのままレスポンスボディの message フィールドになる。
type APIError struct {
	Code    string // エラーコード（HTTPステータスへのマッピングに使用）
	Message string // クライアント向けメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAccessTokenMissing  = "ACCESS_TOKEN_MISSING"
	ErrCodeTokenInvalid        = "TOKEN_INVALID"
	ErrCodeTokenVerifyFailed   = "TOKEN_VERIFY_FAILED"
	ErrCodeKeyFetchFailed      = "KEY_FETCH_FAILED"
	ErrCodeMissingSearchQuery  = "MISSING_SEARCH_QUERY"
	ErrCodeInvalidMovieID      = "INVALID_MOVIE_ID"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeUserLookupFailed    = "USER_LOOKUP_FAILED"
	ErrCodeMovieSearchFailed   = "MOVIE_SEARCH_FAILED"
	ErrCodeMovieDetailFailed   = "MOVIE_DETAIL_FAILED"
	ErrCodeFavoriteNotFound    = "FAVORITE_NOT_FOUND"
	ErrCodeFavoriteAddFailed   = "FAVORITE_ADD_FAILED"
	ErrCodeFavoriteListFailed  = "FAVORITE_LIST_FAILED"
	ErrCodeFavoriteRemoveError = "FAVORITE_REMOVE_FAILED"
)

// NewAccessTokenMissingError はトークン未提示エラーを生成する。
func NewAccessTokenMissingError() *APIError {
	return &APIError{
		Code:    ErrCodeAccessTokenMissing,
		Message: "Access token missing",
	}
}

// NewTokenInvalidError はデコード不能・未知の鍵IDのトークンに対するエラーを生成する。
func NewTokenInvalidError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenInvalid,
		Message: "Invalid token",
	}
}

// NewTokenVerifyFailedError は署名・アルゴリズム・期限の検証失敗エラーを生成する。
func NewTokenVerifyFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenVerifyFailed,
		Message: "Token verification failed",
	}
}

// NewKeyFetchFailedError は鍵セット取得失敗エラーを生成する。
// 内部要因のためクライアントには一般的なメッセージのみを返す。
func NewKeyFetchFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeKeyFetchFailed,
		Message: "Internal server error",
	}
}

// NewMissingSearchQueryError は検索クエリ欠落エラーを生成する。
func NewMissingSearchQueryError() *APIError {
	return &APIError{
		Code:    ErrCodeMissingSearchQuery,
		Message: "Missing search query",
	}
}

// NewInvalidMovieIDError は映画IDが数値でない場合のエラーを生成する。
func NewInvalidMovieIDError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidMovieID,
		Message: "Invalid movie id",
	}
}

// NewUserNotFoundError はローカルユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "User not found in the database",
	}
}

// NewUserLookupFailedError はユーザー検索のストア障害エラーを生成する。
func NewUserLookupFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeUserLookupFailed,
		Message: "Database error fetching user",
	}
}

// NewMovieSearchFailedError は映画検索の解決失敗エラーを生成する。
func NewMovieSearchFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeMovieSearchFailed,
		Message: "Error fetching movie data",
	}
}

// NewMovieDetailFailedError は映画詳細の解決失敗エラーを生成する。
// カタログ側の「該当なし」と取得エラーは区別せず同一レスポンスにする。
func NewMovieDetailFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeMovieDetailFailed,
		Message: "Error fetching movie details",
	}
}

// NewFavoriteNotFoundError は削除対象のお気に入りが存在しない場合のエラーを生成する。
func NewFavoriteNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeFavoriteNotFound,
		Message: "Movie not found in favorites",
	}
}

// NewFavoriteAddFailedError はお気に入り追加の失敗エラーを生成する。
func NewFavoriteAddFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeFavoriteAddFailed,
		Message: "Error adding movie to favorites",
	}
}

// NewFavoriteListFailedError はお気に入り一覧取得の失敗エラーを生成する。
func NewFavoriteListFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeFavoriteListFailed,
		Message: "Error fetching favorite movies",
	}
}

// NewFavoriteRemoveFailedError はお気に入り削除の失敗エラーを生成する。
func NewFavoriteRemoveFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeFavoriteRemoveError,
		Message: "Error removing movie from favorites",
	}
}
