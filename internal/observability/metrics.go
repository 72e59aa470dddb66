package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthEvents counts session operations by operation and outcome code.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borlas_auth_events_total",
		Help: "Total number of login, refresh and authenticate calls by outcome",
	}, []string{"operation", "outcome"})

	// LifecycleTransitions counts resource lifecycle outcomes by resource kind.
	LifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borlas_lifecycle_transitions_total",
		Help: "Total number of resource edits and soft deletes",
	}, []string{"resource", "outcome"})

	// CacheLookups counts cache-aside lookups by key family and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borlas_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"family", "result"})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borlas_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// EventPublishFailures counts lifecycle events that could not be delivered.
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borlas_event_publish_failures_total",
		Help: "Total number of lifecycle events that failed to publish",
	}, []string{"event_type"})
)
