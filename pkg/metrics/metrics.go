package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsFormatted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loghtml_records_formatted_total",
		Help: "Total number of log records rendered to HTML",
	}, []string{"level"})

	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loghtml_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loghtml_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"host"})
	// Records dropped by a handler because they were below its minimum level.
	MailRecordsFiltered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loghtml_mail_records_filtered_total",
		Help: "Total number of records skipped by the mail handler's level filter",
	}, []string{"host"})

	// Preview API metrics
	APIRenderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loghtml_api_render_requests_total",
		Help: "Total number of render requests handled by the preview API",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(RecordsFormatted)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(MailRecordsFiltered)
	prometheus.MustRegister(APIRenderRequests)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
