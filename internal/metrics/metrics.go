// Package metrics はPrometheus形式のアプリケーションメトリクスを提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はキャッシュ・カタログ・HTTPレイヤーのメトリクスを集約する。
// prometheus.Collectorを実装し、レジストリへの一括登録を可能にする。
type Collector struct {
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	catalogFetches *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	resolveLatency *prometheus.HistogramVec
}

// NewCollector はメトリクスコレクターを生成する。
func NewCollector() *Collector {
	return &Collector{
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelvault_cache_hits_total",
				Help: "キャッシュヒット数（フロー別）",
			},
			[]string{"flow"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelvault_cache_misses_total",
				Help: "キャッシュミス数（フロー別）",
			},
			[]string{"flow"},
		),
		catalogFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelvault_catalog_fetches_total",
				Help: "外部カタログAPIへのフェッチ数（操作・結果別）",
			},
			[]string{"operation", "result"},
		),
		httpStatus: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reelvault_http_responses_total",
				Help: "HTTPレスポンス数（ステータスコード別）",
			},
			[]string{"status"},
		),
		resolveLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reelvault_resolve_duration_seconds",
				Help:    "映画解決処理のレイテンシ（フロー別）",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"flow"},
		),
	}
}

// Describe はprometheus.Collectorを実装する。
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.cacheHits.Describe(ch)
	c.cacheMisses.Describe(ch)
	c.catalogFetches.Describe(ch)
	c.httpStatus.Describe(ch)
	c.resolveLatency.Describe(ch)
}

// Collect はprometheus.Collectorを実装する。
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.cacheHits.Collect(ch)
	c.cacheMisses.Collect(ch)
	c.catalogFetches.Collect(ch)
	c.httpStatus.Collect(ch)
	c.resolveLatency.Collect(ch)
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit(flow string) {
	c.cacheHits.WithLabelValues(flow).Inc()
}

// RecordCacheMiss はキャッシュミスを記録する。
func (c *Collector) RecordCacheMiss(flow string) {
	c.cacheMisses.WithLabelValues(flow).Inc()
}

// RecordCatalogFetch は外部カタログAPIへのフェッチ結果を記録する。
func (c *Collector) RecordCatalogFetch(operation string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.catalogFetches.WithLabelValues(operation, result).Inc()
}

// RecordHTTPStatus はHTTPレスポンスのステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordResolveLatency は映画解決処理のレイテンシを記録する。
func (c *Collector) RecordResolveLatency(flow string, d time.Duration) {
	c.resolveLatency.WithLabelValues(flow).Observe(d.Seconds())
}

// Handler は指定されたGathererからメトリクスを公開するHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
