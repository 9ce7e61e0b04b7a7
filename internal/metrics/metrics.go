// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	catalogRequests    *prometheus.CounterVec
	catalogStatus      *prometheus.CounterVec
	catalogLatency     *prometheus.HistogramVec
	staleResponses     *prometheus.CounterVec
	searchCommits      prometheus.Counter
	activeSessions     prometheus.Gauge
	httpStatus         *prometheus.CounterVec
	searchEventDeleted prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		catalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livsmedel_catalog_requests_total",
			Help: "カタログAPI呼び出しの合計数（操作・結果別）",
		}, []string{"operation", "outcome"}),
		catalogStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livsmedel_catalog_http_status_total",
			Help: "カタログAPIのHTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		catalogLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "livsmedel_catalog_latency_seconds",
			Help:    "カタログAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livsmedel_stale_responses_total",
			Help: "新しいリクエストに追い越されて破棄されたレスポンス数",
		}, []string{"orchestrator"}),
		searchCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livsmedel_search_commits_total",
			Help: "確定した検索の合計数",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "livsmedel_active_sessions",
			Help: "アクティブな閲覧セッション数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "livsmedel_http_responses_total",
			Help: "HTTPドライバのステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		searchEventDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "livsmedel_search_events_deleted_total",
			Help: "保持期間を過ぎて削除された検索ログの合計数",
		}),
	}

	reg.MustRegister(
		c.catalogRequests,
		c.catalogStatus,
		c.catalogLatency,
		c.staleResponses,
		c.searchCommits,
		c.activeSessions,
		c.httpStatus,
		c.searchEventDeleted,
	)

	return c
}

// RecordCatalogRequest はカタログAPI呼び出しの結果を記録する。
// 通信エラーなどでステータスコードが無い場合（0）はステータス別の集計に含めない。
func (c *Collector) RecordCatalogRequest(operation string, statusCode int, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.catalogRequests.WithLabelValues(operation, outcome).Inc()
	if statusCode > 0 {
		c.catalogStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	}
	c.catalogLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordStaleResponse は破棄したレスポンスを記録する。
func (c *Collector) RecordStaleResponse(orchestrator string) {
	c.staleResponses.WithLabelValues(orchestrator).Inc()
}

// RecordSearchCommit は確定した検索を記録する。
func (c *Collector) RecordSearchCommit() {
	c.searchCommits.Inc()
}

// SetActiveSessions はアクティブなセッション数を設定する。
func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

// RecordHTTPStatus はHTTPドライバのステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSearchEventsDeleted は削除された検索ログ数を記録する。
func (c *Collector) RecordSearchEventsDeleted(count int64) {
	c.searchEventDeleted.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
