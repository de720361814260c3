package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailfleet_emails_sent_total",
			Help: "Total emails successfully handed to an SMTP server",
		},
		[]string{"provider"},
	)

	EmailsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailfleet_emails_failed_total",
			Help: "Total send attempts that ended in failure",
		},
		[]string{"provider", "kind"},
	)

	SMTPSendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailfleet_smtp_send_duration_seconds",
			Help:    "Wall time of one full SMTP transaction",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)

func Init() {
	prometheus.MustRegister(EmailsSent)
	prometheus.MustRegister(EmailsFailed)
	prometheus.MustRegister(SMTPSendDuration)
}
