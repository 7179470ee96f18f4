package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jaggery_http_request_duration_seconds",
		Help:    "HTTP request duration by method, route pattern and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	PhoneOTPIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jaggery_phone_otp_issued_total",
		Help: "Phone OTP codes issued.",
	})

	PhoneOTPVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jaggery_phone_otp_verifications_total",
		Help: "Phone OTP verification attempts by result.",
	}, []string{"result"})

	PhoneOTPSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jaggery_phone_otp_swept_total",
		Help: "Expired phone OTP entries removed by the sweep job.",
	})
)
