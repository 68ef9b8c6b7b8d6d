package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/kenta/reelvault/internal/model"
)

// errorResponseBody はAPIエラーレスポンスの統一フォーマット。
type errorResponseBody struct {
	Message string `json:"message"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// 内部詳細はログのみに記録し、ボディにはメッセージだけを含める。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponseBody{
		Message: apiErr.Message,
	})
}
