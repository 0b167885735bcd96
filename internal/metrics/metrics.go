package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReadingTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_reading_turns_total",
			Help: "Total number of processed reading turns by the state they started in.",
		},
		[]string{"state"},
	)

	ReadingTurnErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_reading_turn_errors_total",
			Help: "Total number of rejected reading turns by reason.",
		},
		[]string{"reason"},
	)

	ReadingsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "oracle_readings_completed_total",
			Help: "Total number of readings synthesized.",
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "oracle_reading_sessions_active",
			Help: "Number of conversation sessions held in memory.",
		},
	)

	MemoryOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_memory_operations_total",
			Help: "Total number of memory service reads and writes.",
		},
		[]string{"op", "status"},
	)

	InterpretationLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_interpretation_lookups_total",
			Help: "Total number of base interpretation lookups by result (hit, miss, cached, error).",
		},
		[]string{"result"},
	)

	LearningEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_learning_events_total",
			Help: "Total number of learning events recorded.",
		},
		[]string{"type"},
	)

	LevelUpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_engagement_level_ups_total",
			Help: "Total number of engagement level increases by new level.",
		},
		[]string{"level"},
	)

	JourneyEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_journey_entries_total",
			Help: "Total number of journey entries stored by the memory service.",
		},
		[]string{"entry_type"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ReadingTurnsTotal,
		ReadingTurnErrorsTotal,
		ReadingsCompletedTotal,
		ActiveSessions,
		MemoryOperationsTotal,
		InterpretationLookupsTotal,
		LearningEventsTotal,
		LevelUpsTotal,
		JourneyEntriesTotal,
	)
}
