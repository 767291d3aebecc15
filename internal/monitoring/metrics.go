package monitoring

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	registry *prometheus.Registry
	started  time.Time

	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec

	// 咨询指标
	InquiriesTotal *prometheus.CounterVec

	// 邮件指标
	MailSendsTotal   *prometheus.CounterVec
	MailSendDuration *prometheus.HistogramVec

	// 限流指标
	RateLimitBlocks        *prometheus.CounterVec
	RateLimitBackendErrors *prometheus.CounterVec

	// 系统指标
	SystemUptime prometheus.GaugeFunc
	MemoryUsage  prometheus.GaugeFunc

	// 错误指标
	PanicsTotal prometheus.Counter
}

// NewMetrics 创建监控指标
//
// 参数:
//   - reg: 指标注册表，为 nil 时新建独立注册表（避免测试中重复注册）
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)
	started := time.Now()

	return &Metrics{
		registry: reg,
		started:  started,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mustip_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mustip_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mustip_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 4, 6),
			},
			[]string{"method", "endpoint"},
		),

		InquiriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mustip_inquiries_total",
				Help: "Total number of contact submissions by outcome",
			},
			[]string{"outcome"},
		),

		MailSendsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mustip_mail_sends_total",
				Help: "Total number of outbound emails by kind and result",
			},
			[]string{"kind", "result"},
		),

		MailSendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mustip_mail_send_duration_seconds",
				Help:    "Outbound email dispatch duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),

		RateLimitBlocks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mustip_rate_limit_blocks_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
			[]string{"scope"},
		),

		RateLimitBackendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mustip_rate_limit_backend_errors_total",
				Help: "Total number of rate limiter store failures (requests allowed)",
			},
			[]string{"backend"},
		),

		SystemUptime: factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "mustip_system_uptime_seconds",
				Help: "Seconds since the process started",
			},
			func() float64 { return time.Since(started).Seconds() },
		),

		MemoryUsage: factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "mustip_memory_alloc_bytes",
				Help: "Bytes of allocated heap objects",
			},
			func() float64 {
				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				return float64(m.Alloc)
			},
		),

		PanicsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mustip_panics_total",
				Help: "Total number of recovered panics",
			},
		),
	}
}

// Registry 返回指标注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration, requestSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.HTTPRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
}

// RecordInquiry 记录一次提交的结果
func (m *Metrics) RecordInquiry(outcome string) {
	m.InquiriesTotal.WithLabelValues(outcome).Inc()
}

// RecordMailSend 记录一次邮件投递
func (m *Metrics) RecordMailSend(kind, result string, duration time.Duration) {
	m.MailSendsTotal.WithLabelValues(kind, result).Inc()
	m.MailSendDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordRateLimitBlock 记录限流阻止
func (m *Metrics) RecordRateLimitBlock(scope string) {
	m.RateLimitBlocks.WithLabelValues(scope).Inc()
}

// RecordRateLimitBackendError 记录限流存储故障
func (m *Metrics) RecordRateLimitBackendError(backend string) {
	m.RateLimitBackendErrors.WithLabelValues(backend).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
