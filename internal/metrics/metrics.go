package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatroom_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatroom_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Бизнес-метрики
	RoomsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatroom_rooms_created_total",
			Help: "Rooms created from analysis events",
		},
		[]string{"room_type"},
	)

	RoomsSoftDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatroom_rooms_soft_deleted_total",
			Help: "Rooms marked deleted",
		},
	)

	AnalysisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatroom_analysis_requests_total",
			Help: "Chat export analysis requests",
		},
		[]string{"room_type"},
	)

	AnalysisCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatroom_analysis_cache_hits_total",
			Help: "Analysis results served from cache",
		},
	)
)
