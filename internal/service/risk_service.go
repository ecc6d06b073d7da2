// Package service 编排风控核心计算，负责限额注入、耗时统计以及日志、指标、告警与状态推送。
package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"risk-engine-go/backtest"
	"risk-engine-go/infrastructure/logger"
	"risk-engine-go/infrastructure/monitor"
	"risk-engine-go/internal/store"
	"risk-engine-go/montecarlo"
	"risk-engine-go/risk"
)

// Publisher 接收每次评估后的状态快照（websocket hub）。
type Publisher interface {
	Publish(risk.State)
}

// Config 服务配置
type Config struct {
	Name                    string
	Version                 string
	Limits                  risk.Limits
	LatencyWarn             time.Duration // 评估/准入耗时告警阈值
	MaxMonteCarloIterations int
	MaxBacktestIterations   int
	BacktestWorkers         int
}

// Components 服务依赖组件，除 Store 外均可为空。
type Components struct {
	Store     *store.Store
	Logger    *logger.Logger
	Monitor   *monitor.Monitor
	Notifier  *risk.Notifier
	Publisher Publisher
	Clock     risk.Clock
}

// RiskService 风控服务
type RiskService struct {
	cfg       Config
	limits    atomic.Pointer[risk.Limits]
	store     *store.Store
	log       *logger.Logger
	monitor   *monitor.Monitor
	notifier  *risk.Notifier
	publisher Publisher
	clock     risk.Clock
	watch     *risk.LatencyWatch
	timer     *risk.LatencyWatch
	started   time.Time
}

// New 创建风控服务
func New(cfg Config, c Components) (*RiskService, error) {
	if c.Store == nil {
		return nil, ErrNoStore
	}
	if err := cfg.Limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid limits: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = "risk-engine"
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Monitor == nil {
		c.Monitor = monitor.New(monitor.DefaultConfig())
	}
	if c.Notifier == nil {
		c.Notifier = risk.NewNotifier(nil, nil)
	}
	if c.Clock == nil {
		c.Clock = risk.NowUTC
	}

	s := &RiskService{
		cfg:       cfg,
		store:     c.Store,
		log:       c.Logger,
		monitor:   c.Monitor,
		notifier:  c.Notifier,
		publisher: c.Publisher,
		clock:     c.Clock,
		timer:     risk.NewLatencyWatch(0, nil),
		started:   c.Clock.Now(),
	}
	s.watch = risk.NewLatencyWatch(cfg.LatencyWarn, s.slow)
	limits := cfg.Limits
	s.limits.Store(&limits)
	return s, nil
}

// Limits 返回当前生效的阈值。
func (s *RiskService) Limits() risk.Limits {
	return *s.limits.Load()
}

// SetLimits 校验并原子替换阈值，热加载调用。
func (s *RiskService) SetLimits(l risk.Limits) error {
	if err := l.Validate(); err != nil {
		return err
	}
	s.limits.Store(&l)
	s.log.Info("risk limits updated",
		zap.Float64("confidence", l.Confidence),
		zap.Float64("max_exposure", l.MaxExposure),
		zap.Float64("max_drawdown", l.MaxDrawdown),
	)
	return nil
}

// Evaluate 计算组合风险并写入全局状态。持久化失败只记录，不影响返回。
func (s *RiskService) Evaluate(req EvaluateRequest) EvaluateResponse {
	stop := s.watch.Start("evaluate")
	defer func() { s.monitor.RecordLatency("evaluate", stop()) }()

	confidence := s.Limits().Confidence
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	ev := risk.Evaluate(req.Positions, req.PortfolioValue, confidence)

	// 在状态锁内推送，订阅方收到的快照顺序与提交顺序一致
	snapshot, err := s.store.Apply(ev, s.publish)
	if err != nil {
		s.persistFailed(err)
	}

	s.log.LogEvaluation(ev.ActivePositions, req.PortfolioValue, ev.VaR, ev.CVaR, ev.Exposure, ev.Drawdown)
	s.monitor.RecordEvaluation(ev.VaR, ev.CVaR, ev.Exposure, ev.Drawdown, ev.ActivePositions)

	return EvaluateResponse{
		ValueAtRisk:    ev.VaR,
		ConditionalVaR: ev.CVaR,
		Drawdown:       ev.Drawdown,
		Exposure:       ev.Exposure,
		Timestamp:      snapshot.LastUpdate,
	}
}

// ValidateTrade 基于当前状态快照做准入判断，不修改状态。
func (s *RiskService) ValidateTrade(req ValidateRequest) ValidateResponse {
	stop := s.watch.Start("validate")
	defer func() { s.monitor.RecordLatency("validate", stop()) }()

	limits := s.Limits()
	if req.MaxDrawdown != nil {
		limits.MaxDrawdown = *req.MaxDrawdown
	}
	trade := risk.TradeRequest{
		Symbol:          req.Symbol,
		Side:            req.Side,
		Quantity:        req.Quantity,
		Price:           req.Price,
		PortfolioValue:  req.PortfolioValue,
		CurrentDrawdown: req.CurrentDrawdown,
	}
	decision := risk.Admit(trade, s.store.Snapshot(), limits)

	s.log.LogAdmission(req.Symbol, req.Side, decision.Approved, decision.Reason)
	s.monitor.RecordAdmission(decision.Approved)
	if !decision.Approved {
		s.notifier.NotifyTradeRejected(req.Symbol, decision.Reason)
	}

	return ValidateResponse{Decision: decision, Timestamp: risk.Timestamp(s.clock.Now())}
}

// StressTest 纯计算，不读写状态。
func (s *RiskService) StressTest(req StressRequest) StressResponse {
	stop := s.timer.Start("stress")
	defer func() { s.monitor.RecordLatency("stress", stop()) }()

	results := risk.StressTest(req.Positions, req.Scenarios)
	s.log.LogStress(len(req.Positions), len(req.Scenarios))
	return StressResponse{Results: results, Timestamp: risk.Timestamp(s.clock.Now())}
}

// State 返回当前状态快照。
func (s *RiskService) State() risk.State {
	return s.store.Snapshot()
}

// MonteCarloVaR 规整参数后模拟；迭代次数同时受配置上限约束。
func (s *RiskService) MonteCarloVaR(req montecarlo.Request) (MonteCarloResponse, error) {
	stop := s.timer.Start("mc_var")

	req, err := montecarlo.Normalize(req)
	if err != nil {
		return MonteCarloResponse{}, err
	}
	if limit := s.cfg.MaxMonteCarloIterations; limit > 0 && req.Iterations > limit {
		req.Iterations = limit
	}
	res := montecarlo.Simulate(req, montecarlo.NewSource(req.Seed))

	elapsed := stop()
	s.monitor.RecordLatency("mc_var", elapsed)
	s.monitor.RecordSimulation(req.Iterations)
	s.log.LogSimulation(req.Iterations, req.Confidence, res.VaR, res.CVaR, elapsed, req.Seed != nil)

	return MonteCarloResponse{
		VaR:        res.VaR,
		CVaR:       res.CVaR,
		RuntimeMs:  float64(elapsed.Microseconds()) / 1000,
		Iterations: req.Iterations,
		Confidence: req.Confidence,
	}, nil
}

// RunBacktest 并行回测全部策略并组装报告。
func (s *RiskService) RunBacktest(ctx context.Context, req backtest.Request) (BacktestResponse, error) {
	stop := s.timer.Start("backtest")

	if err := req.Validate(s.cfg.MaxBacktestIterations); err != nil {
		return BacktestResponse{}, err
	}
	results, err := backtest.Run(ctx, req, s.cfg.BacktestWorkers)
	if err != nil {
		return BacktestResponse{}, fmt.Errorf("run backtest: %w", err)
	}

	s.monitor.RecordLatency("backtest", stop())
	s.monitor.RecordBacktest(len(req.Strategies))
	s.log.LogBacktest(len(req.Strategies), req.Iterations)
	return backtest.NewReport(req, results, s.clock.Now()), nil
}

// StatusOK 健康检查状态值
const StatusOK = "ok"

// Health 服务存活信息，uptime 为整秒数，如 "125s"。
func (s *RiskService) Health() HealthResponse {
	secs := int64(s.clock.Now().Sub(s.started) / time.Second)
	return HealthResponse{
		Status:  StatusOK,
		Service: s.cfg.Name,
		Version: s.cfg.Version,
		Uptime:  fmt.Sprintf("%ds", secs),
	}
}

func (s *RiskService) publish(st risk.State) {
	if s.publisher != nil {
		s.publisher.Publish(st)
	}
}

func (s *RiskService) persistFailed(err error) {
	s.log.LogError(fmt.Errorf("persist risk state: %w", err), map[string]interface{}{"op": "evaluate"})
	s.monitor.RecordPersistFailure()
	s.notifier.NotifyPersistFailure(err)
}

func (s *RiskService) slow(op string, elapsed time.Duration) {
	s.log.LogLatency(op, elapsed)
	s.monitor.RecordLatencyWarning(op)
	s.notifier.NotifySlow(op, elapsed)
}
