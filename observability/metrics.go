package observability

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	issuerMetricsOnce sync.Once
	issuerRegistry    *IssuerMetrics
)

// ModuleMetrics returns the lazily-initialised registry used to record HTTP
// API activity per route group.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nfi",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total API requests segmented by module and method.",
			}, []string{"module", "method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nfi",
				Subsystem: "gateway",
				Name:      "errors_total",
				Help:      "Total API errors segmented by module, method, and status code.",
			}, []string{"module", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "nfi",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for API handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nfi",
				Subsystem: "gateway",
				Name:      "throttles_total",
				Help:      "Count of API requests rejected due to throttling policies.",
			}, []string{"module", "reason"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
			moduleRegistry.throttles,
		)
	})
	return moduleRegistry
}

// Observe records the outcome of an API request. The status code should be
// the HTTP status that was ultimately written to the response writer.
func (m *moduleMetrics) Observe(module, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if status >= 400 {
		outcome = "error"
	}
	m.requests.WithLabelValues(module, method, outcome).Inc()
	if status >= 400 {
		m.errors.WithLabelValues(module, method, fmt.Sprintf("%d", status)).Inc()
	}
	m.latency.WithLabelValues(module, method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter for the supplied module and
// reason. Reasons should be stable strings such as "rate_limit" so dashboards
// and alerts remain consistent.
func (m *moduleMetrics) RecordThrottle(module, reason string) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(module, reason).Inc()
}

// IssuerMetrics tracks engine operations executed by the node.
type IssuerMetrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	minted     *prometheus.CounterVec
	payments   *prometheus.CounterVec
}

// Issuer returns the singleton registry for engine operations.
func Issuer() *IssuerMetrics {
	issuerMetricsOnce.Do(func() {
		issuerRegistry = &IssuerMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nfi",
				Subsystem: "issuer",
				Name:      "operations_total",
				Help:      "Count of engine operations segmented by module, operation and outcome kind.",
			}, []string{"module", "operation", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "nfi",
				Subsystem: "issuer",
				Name:      "operation_duration_seconds",
				Help:      "Latency distribution for engine operations including commit.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "operation"}),
			minted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nfi",
				Subsystem: "issuer",
				Name:      "assets_minted_total",
				Help:      "Count of minted assets segmented by payment currency.",
			}, []string{"currency"}),
			payments: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nfi",
				Subsystem: "issuer",
				Name:      "payment_volume_total",
				Help:      "Sum of settled mint payments in base units segmented by payment currency.",
			}, []string{"currency"}),
		}
		prometheus.MustRegister(
			issuerRegistry.operations,
			issuerRegistry.latency,
			issuerRegistry.minted,
			issuerRegistry.payments,
		)
	})
	return issuerRegistry
}

// ObserveOperation records an engine operation. outcome should be a stable
// error kind label such as "ok" or "limit_reached".
func (m *IssuerMetrics) ObserveOperation(module, operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(labelOr(module, "unknown"), labelOr(operation, "unknown"), labelOr(outcome, "unknown")).Inc()
	m.latency.WithLabelValues(labelOr(module, "unknown"), labelOr(operation, "unknown")).Observe(duration.Seconds())
}

// RecordMint records a settled mint of count assets for amount base units.
func (m *IssuerMetrics) RecordMint(currency string, count uint64, amount *big.Int) {
	if m == nil {
		return
	}
	label := labelOr(currency, "native")
	m.minted.WithLabelValues(label).Add(float64(count))
	if amount != nil && amount.Sign() > 0 {
		m.payments.WithLabelValues(label).Add(bigToFloat(amount))
	}
}

func labelOr(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func bigToFloat(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	floatVal, acc := new(big.Float).SetInt(value).Float64()
	if acc != big.Exact {
		// Guard against NaN/Inf when conversion fails.
		if math.IsNaN(floatVal) || math.IsInf(floatVal, 0) {
			return 0
		}
	}
	return floatVal
}
