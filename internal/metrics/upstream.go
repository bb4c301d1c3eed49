package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobfit",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "对打分服务发起的请求总数。",
		},
		[]string{"status"},
	)

	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobfit",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "打分服务请求耗时分布（秒）。",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

// ObserveUpstreamRequest 记录一次打分服务调用。
// status 为 HTTP 状态码文本，传输层失败记为 "transport_error"。
func ObserveUpstreamRequest(status string, d time.Duration) {
	upstreamRequestTotal.WithLabelValues(status).Inc()
	upstreamRequestDuration.WithLabelValues(status).Observe(d.Seconds())
}
