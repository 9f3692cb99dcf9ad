package uow

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uow_sessions_opened_total",
		Help: "Sessions acquired by unit-of-work scopes.",
	})
	sessionsClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uow_sessions_closed_total",
		Help: "Sessions released by unit-of-work scopes.",
	})
	acquireFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uow_acquire_failures_total",
		Help: "Scopes that could not acquire a session.",
	})
	commits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uow_commits_total",
		Help: "Transactions committed by unit-of-work scopes.",
	})
	rollbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uow_rollbacks_total",
		Help: "Transactions rolled back by unit-of-work scopes.",
	})

	// outcome: commit|rollback|release|commit_failed|panic
	sessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uow_session_duration_seconds",
			Help:    "Time a session stayed open, by scope outcome.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(sessionsOpened, sessionsClosed, acquireFailures, commits, rollbacks, sessionDuration)
}
