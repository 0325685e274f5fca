package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-coursegen/internal/gateway"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
)

// Metrics holds the process counters exposed on /metrics. All methods are
// safe on a nil receiver so callers never branch on whether metrics are on.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	gatewayRequests *CounterVec
	gatewayLatency  *HistogramVec

	usageTokens *CounterVec
	usageCost   *CounterVec

	courseRuns    *CounterVec
	courseLatency *HistogramVec
	blockOutcomes *CounterVec
}

var (
	_ gateway.UsageObserver   = (*Metrics)(nil)
	_ gateway.RequestObserver = (*Metrics)(nil)
)

func NewMetrics(log *logger.Logger) *Metrics {
	m := &Metrics{
		apiRequests: NewCounterVec("cg_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"cg_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		),
		apiInflight:     NewGauge("cg_api_inflight_requests", "In-flight API requests."),
		gatewayRequests: NewCounterVec("cg_gateway_requests_total", "Gateway calls by operation/outcome.", []string{"op", "outcome"}),
		gatewayLatency: NewHistogramVec(
			"cg_gateway_request_duration_seconds",
			"Gateway call latency in seconds, retries included.",
			[]string{"op", "outcome"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		),
		usageTokens: NewCounterVec("cg_usage_tokens_total", "Tokens reported by the backend by operation.", []string{"operation"}),
		usageCost:   NewCounterVec("cg_usage_cost_usd_total", "Cost reported by the backend by operation.", []string{"operation"}),
		courseRuns:  NewCounterVec("cg_course_generations_total", "Course generations by outcome.", []string{"outcome"}),
		courseLatency: NewHistogramVec(
			"cg_course_generation_duration_seconds",
			"Course generation duration in seconds by outcome.",
			[]string{"outcome"},
			[]float64{1, 5, 10, 30, 60, 120, 300, 600},
		),
		blockOutcomes: NewCounterVec("cg_block_generations_total", "Single block generations by type/outcome.", []string{"type", "outcome"}),
	}
	if log != nil {
		log.Info("Observability metrics enabled")
	}
	return m
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveGatewayRequest records one logical gateway call.
func (m *Metrics) ObserveGatewayRequest(op string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := GatewayOutcome(err)
	m.gatewayRequests.Inc(op, outcome)
	m.gatewayLatency.Observe(dur.Seconds(), op, outcome)
}

func (m *Metrics) UsageChanged(_ context.Context, ev gateway.UsageEvent) {
	if m == nil {
		return
	}
	if ev.TokensUsed > 0 {
		m.usageTokens.Add(float64(ev.TokensUsed), ev.Operation)
	}
	if ev.Cost > 0 {
		m.usageCost.Add(ev.Cost, ev.Operation)
	}
}

// ObserveCourse records a finished course generation. outcome is one of
// "ok", "fallback" or "aborted".
func (m *Metrics) ObserveCourse(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.courseRuns.Inc(outcome)
	m.courseLatency.Observe(dur.Seconds(), outcome)
}

func (m *Metrics) ObserveBlock(blockType string, err error) {
	if m == nil {
		return
	}
	m.blockOutcomes.Inc(blockType, GatewayOutcome(err))
}

// GatewayOutcome maps an error to a low-cardinality label.
func GatewayOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	if e, ok := gateway.AsError(err); ok {
		return string(e.Kind)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "aborted"
	}
	return "error"
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.gatewayRequests, m.gatewayLatency,
		m.usageTokens, m.usageCost,
		m.courseRuns, m.courseLatency, m.blockOutcomes,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// StartServer serves /metrics on a dedicated listener until ctx ends.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}
