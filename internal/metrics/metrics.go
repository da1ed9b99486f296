package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы отправки заявки (значения метки outcome).
const (
	OutcomeSubmitted        = "submitted"
	OutcomeFailed           = "failed"
	OutcomeAuthRequired     = "auth_required"
	OutcomeAckMissing       = "ack_missing"
	OutcomeInvalid          = "invalid"
	OutcomeActivityRequired = "activity_required"
	OutcomeRateLimited      = "rate_limited"
	OutcomeReviewRequired   = "review_required"
	OutcomeCancelled        = "cancelled"
)

// Metrics — счётчики клиента формы. Нулевой указатель допустим: методы ничего не делают.
type Metrics struct {
	Submissions    *prometheus.CounterVec
	UploadedBytes  prometheus.Counter
	UploadRejected *prometheus.CounterVec
	SubmitDuration prometheus.Histogram
	DraftSaves     prometheus.Counter
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "application_submissions_total",
				Help: "Total number of application submit attempts by outcome",
			},
			[]string{"outcome"},
		),
		UploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "application_uploaded_bytes_total",
			Help: "Total bytes of photos sent to the upload endpoint",
		}),
		UploadRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "application_upload_rejected_total",
				Help: "Photo sets rejected client-side before upload",
			},
			[]string{"reason"},
		),
		SubmitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "application_submit_duration_seconds",
			Help:    "Duration of the two-phase submit in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		DraftSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "application_draft_saves_total",
			Help: "Debounced draft writes to storage",
		}),
	}
	reg.MustRegister(m.Submissions, m.UploadedBytes, m.UploadRejected, m.SubmitDuration, m.DraftSaves)
	return m
}

func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Uploaded(bytes int64) {
	if m == nil {
		return
	}
	m.UploadedBytes.Add(float64(bytes))
}

func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.UploadRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveSubmit(d time.Duration) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(d.Seconds())
}

func (m *Metrics) DraftSaved() {
	if m == nil {
		return
	}
	m.DraftSaves.Inc()
}
