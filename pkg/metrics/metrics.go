package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// 活动流轮询计数
	FeedPollCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_poll_count",
			Help: "Total number of activity feed poll cycles",
		},
		[]string{"result"}, // result: success, failure
	)

	// 活动事件落库计数
	ActivityRecordedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_recorded_count",
			Help: "Total number of activity events materialized",
		},
		[]string{"status"}, // status: stored, duplicate, failed
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slow_query_count",
			Help: "Total number of queries exceeding the slow query threshold",
		},
	)

	// 被拒绝的受限变更计数
	UnauthorizedMutationCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unauthorized_mutation_count",
			Help: "Total number of mutations denied by the ownership gate",
		},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementFeedPoll 增加轮询计数
func IncrementFeedPoll(result string) {
	FeedPollCount.WithLabelValues(result).Inc()
}

// IncrementActivityRecorded 增加活动事件计数
func IncrementActivityRecorded(status string) {
	ActivityRecordedCount.WithLabelValues(status).Inc()
}
