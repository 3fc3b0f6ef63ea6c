package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	NotificationAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_attempts_total",
			Help: "Notification channel attempts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	StatusChangesPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_status_changes_published_total",
			Help: "Order status change messages published to the queue",
		},
	)
)

func init() {
	prometheus.MustRegister(NotificationAttempts)
	prometheus.MustRegister(StatusChangesPublished)
}

// ObserveAttempt records one channel attempt with a success/failure label.
func ObserveAttempt(channel string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	NotificationAttempts.WithLabelValues(channel, outcome).Inc()
}
