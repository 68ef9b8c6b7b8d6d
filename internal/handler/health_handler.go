package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// DBPinger はデータベース到達性チェックのインターフェース。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger はキャッシュ到達性チェックのインターフェース。
type CachePinger interface {
	Ping(ctx context.Context) error
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status string `json:"status"`
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	db    DBPinger
	cache CachePinger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(db DBPinger, cacheClient CachePinger) *HealthHandler {
	return &HealthHandler{
		db:    db,
		cache: cacheClient,
	}
}

// Check はデータベースとキャッシュの到達性を確認する。
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("health check: database unreachable",
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}

	if err := h.cache.Ping(ctx); err != nil {
		slog.Error("health check: cache unreachable",
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
