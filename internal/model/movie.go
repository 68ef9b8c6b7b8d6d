// Package model はドメインモデルを定義する。
package model

import "time"

// Movie はカタログ由来の映画レコードを表す。
// IDは外部カタログの数値IDをそのまま主キーとして使用する。
// 一度保存された映画レコードは不変であり、更新経路を持たない。
type Movie struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate string    `json:"release_date"`
	Overview    string    `json:"overview"`
	PosterURL   string    `json:"poster_url"`
	CreatedAt   time.Time `json:"-"`
}

// MovieSearchResult は映画検索の結果セットを表す。
// 検索結果は一時的な射影であり、Record Storeには永続化しない。
type MovieSearchResult struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}
