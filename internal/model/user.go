// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// ProviderIDは外部IdPが発行する安定したサブジェクト識別子（トークンのsub）。
// ユーザーレコードはサインアップ時に一度だけ作成され、コアからは読み取り専用。
type User struct {
	ID         string
	ProviderID string
	Username   string
	Email      string
	CreatedAt  time.Time
}

// Favorite はユーザーと映画を紐付けるお気に入りレコードを表す。
type Favorite struct {
	ID        string
	UserID    string
	MovieID   int64
	CreatedAt time.Time
}
