package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor 风控服务指标，注册在私有 registry 上避免全局冲突。
type Monitor struct {
	registry *prometheus.Registry

	// 风险评估
	evaluations prometheus.Counter
	varGauge    prometheus.Gauge
	cvarGauge   prometheus.Gauge
	exposure    prometheus.Gauge
	drawdown    prometheus.Gauge
	positions   prometheus.Gauge

	// 交易准入
	admissions *prometheus.CounterVec

	// 延迟
	opLatency      *prometheus.HistogramVec
	latencyWarning *prometheus.CounterVec

	// 批处理
	mcIterations       prometheus.Counter
	backtestStrategies prometheus.Counter

	// 系统
	persistFailures prometheus.Counter
	wsClients       prometheus.Gauge
	httpRequests    *prometheus.CounterVec
}

// Config 监控配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "risk",
		Subsystem: "engine",
	}
}

// New 创建新的Monitor实例
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help,
		})
	}

	return &Monitor{
		registry: reg,

		evaluations: counter("evaluations_total", "组合风险评估次数"),
		varGauge:    gauge("var", "最近一次评估的参数法 VaR"),
		cvarGauge:   gauge("cvar", "最近一次评估的 CVaR"),
		exposure:    gauge("exposure", "最近一次评估的敞口比例"),
		drawdown:    gauge("drawdown_pct", "最近一次评估的回撤百分比"),
		positions:   gauge("active_positions", "最近一次评估的持仓数量"),

		admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "admissions_total",
			Help:      "交易准入结果",
		}, []string{"decision"}),

		opLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "operation_latency_seconds",
			Help:      "风控操作耗时（秒）",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.25, 1, 5},
		}, []string{"op"}),
		latencyWarning: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "latency_warnings_total",
			Help:      "超过耗时阈值的操作次数",
		}, []string{"op"}),

		mcIterations:       counter("mc_iterations_total", "蒙特卡洛累计抽样次数"),
		backtestStrategies: counter("backtest_strategies_total", "回测累计策略数"),

		persistFailures: counter("persist_failures_total", "风险状态持久化失败次数"),
		wsClients:       gauge("ws_clients", "当前 websocket 订阅数"),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"route", "code"}),
	}
}

// RecordEvaluation 记录一次评估并刷新风险仪表。
func (m *Monitor) RecordEvaluation(valueAtRisk, cvar, exposure, drawdown float64, positions int) {
	m.evaluations.Inc()
	m.varGauge.Set(valueAtRisk)
	m.cvarGauge.Set(cvar)
	m.exposure.Set(exposure)
	m.drawdown.Set(drawdown)
	m.positions.Set(float64(positions))
}

func (m *Monitor) RecordAdmission(approved bool) {
	decision := "rejected"
	if approved {
		decision = "approved"
	}
	m.admissions.WithLabelValues(decision).Inc()
}

func (m *Monitor) RecordLatency(op string, elapsed time.Duration) {
	m.opLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Monitor) RecordLatencyWarning(op string) {
	m.latencyWarning.WithLabelValues(op).Inc()
}

func (m *Monitor) RecordSimulation(iterations int) {
	m.mcIterations.Add(float64(iterations))
}

func (m *Monitor) RecordBacktest(strategies int) {
	m.backtestStrategies.Add(float64(strategies))
}

func (m *Monitor) RecordPersistFailure() {
	m.persistFailures.Inc()
}

func (m *Monitor) SetWSClients(n int) {
	m.wsClients.Set(float64(n))
}

func (m *Monitor) RecordHTTPRequest(route, code string) {
	m.httpRequests.WithLabelValues(route, code).Inc()
}

// Handler 返回HTTP handler用于暴露指标
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回prometheus registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}
