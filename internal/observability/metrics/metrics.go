package metrics

import "github.com/prometheus/client_golang/prometheus"

// DiagnosisMetrics exposes counters/histograms for the diagnosis pipeline.
type DiagnosisMetrics struct {
	submissions       *prometheus.CounterVec
	assessments       *prometheus.CounterVec
	assessmentLatency prometheus.Histogram
	recommendStage    *prometheus.CounterVec
	imagesDropped     *prometheus.CounterVec
}

func NewDiagnosisMetrics(reg prometheus.Registerer) *DiagnosisMetrics {
	m := &DiagnosisMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kisan",
			Subsystem: "diagnosis",
			Name:      "submissions_total",
			Help:      "Diagnosis submissions by outcome",
		}, []string{"status"}),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kisan",
			Subsystem: "diagnosis",
			Name:      "assessments_total",
			Help:      "Assessment results by source",
		}, []string{"source"}),
		assessmentLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kisan",
			Subsystem: "diagnosis",
			Name:      "assessment_latency_seconds",
			Help:      "Latency of the external vision model call",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		}),
		recommendStage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kisan",
			Subsystem: "diagnosis",
			Name:      "recommendation_stage_total",
			Help:      "Recommendation cascade stage that produced the products",
		}, []string{"stage"}),
		imagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kisan",
			Subsystem: "diagnosis",
			Name:      "images_dropped_total",
			Help:      "Images dropped before assessment",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.assessments, m.assessmentLatency, m.recommendStage, m.imagesDropped)
	return m
}

func (m *DiagnosisMetrics) ObserveSubmission(status string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(status).Inc()
}

func (m *DiagnosisMetrics) ObserveAssessment(source string, seconds float64) {
	if m == nil {
		return
	}
	m.assessments.WithLabelValues(source).Inc()
	if seconds > 0 {
		m.assessmentLatency.Observe(seconds)
	}
}

func (m *DiagnosisMetrics) ObserveRecommendationStage(stage string) {
	if m == nil {
		return
	}
	m.recommendStage.WithLabelValues(stage).Inc()
}

func (m *DiagnosisMetrics) ObserveImageDropped(reason string) {
	if m == nil {
		return
	}
	m.imagesDropped.WithLabelValues(reason).Inc()
}
