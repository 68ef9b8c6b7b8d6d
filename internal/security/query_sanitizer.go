// Package security はアプリケーションのセキュリティ機能を提供する。
//
// QuerySanitizerService はユーザー入力の検索クエリをサニタイズし、
// キャッシュキーへの不正な値の混入と、カタログAPIリクエストへの
// マークアップ注入を防ぐ。bluemondayの厳格ポリシーを使用する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// QuerySanitizerService は検索クエリのサニタイズ機能のインターフェースを定義する。
// キャッシュキーのサフィックスとカタログAPIのリクエストパラメータの
// 両方に、同一のサニタイズ済み値を使用すること。
type QuerySanitizerService interface {
	// Sanitize はクエリ文字列をトリムし、マークアップとして意味を持つ
	// 文字を無害化して返す。同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawQuery string) string
}

// querySanitizer はQuerySanitizerServiceの実装。
// bluemondayの厳格ポリシーを保持し、スレッドセーフに動作する。
type querySanitizer struct {
	policy *bluemonday.Policy
}

// NewQuerySanitizer はQuerySanitizerServiceの新しいインスタンスを生成する。
// 厳格ポリシーはすべてのHTML要素を除去し、残るテキスト中の
// マークアップ特殊文字をエスケープする。
func NewQuerySanitizer() *querySanitizer {
	return &querySanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はクエリ文字列をサニタイズして返す。
func (s *querySanitizer) Sanitize(rawQuery string) string {
	return strings.TrimSpace(s.policy.Sanitize(rawQuery))
}

// compile-time interface check
var _ QuerySanitizerService = (*querySanitizer)(nil)
