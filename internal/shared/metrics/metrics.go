package metrics

import (
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

	// 通知发送计数
	NotificationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_count",
			Help: "Total number of notifications dispatched",
		},
		[]string{"type", "outcome"}, // outcome: stored, sse, mq, failed
	)

	// 排期计算计数
	ScheduleResolveCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_resolve_count",
			Help: "Total number of phase end date computations",
		},
	)
)
