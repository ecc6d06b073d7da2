package container

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"risk-engine-go/config"
	"risk-engine-go/infrastructure/alert"
	"risk-engine-go/infrastructure/logger"
	"risk-engine-go/infrastructure/monitor"
	"risk-engine-go/internal/api"
	hotreload "risk-engine-go/internal/config"
	"risk-engine-go/internal/persist"
	"risk-engine-go/internal/service"
	"risk-engine-go/internal/store"
	"risk-engine-go/internal/stream"
	"risk-engine-go/risk"
)

// 热更新时允许的最大敞口，超过视为误配。
const maxExposureCeiling = 5.0

// Options 容器构建参数
type Options struct {
	ConfigPath    string // 为空时不启用热更新
	Version       string
	AlertChannels []alert.Channel // 额外告警通道，日志通道始终存在
}

// Container 依赖注入容器，管理所有组件的生命周期
type Container struct {
	cfg  config.AppConfig
	opts Options

	// 基础设施
	logger  *logger.Logger
	monitor *monitor.Monitor
	alerts  *alert.Manager

	// 状态存储
	db        *sql.DB
	persister store.Persister
	store     *store.Store

	// 核心服务
	hub      *stream.Hub
	service  *service.RiskService
	reloader *hotreload.HotReloader

	apiServer     *httpServerComponent
	metricsServer *httpServerComponent

	lifecycle *LifecycleManager
}

// New 创建新的Container实例
func New(cfg config.AppConfig, opts Options) (*Container, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Container{
		cfg:       cfg,
		opts:      opts,
		lifecycle: NewLifecycleManager(),
	}, nil
}

// Build 构建所有组件
func (c *Container) Build() error {
	if err := c.buildInfrastructure(); err != nil {
		return fmt.Errorf("build infrastructure failed: %w", err)
	}
	if err := c.buildStorage(); err != nil {
		return fmt.Errorf("build storage failed: %w", err)
	}
	if err := c.buildCoreServices(); err != nil {
		return fmt.Errorf("build core services failed: %w", err)
	}
	c.registerLifecycleComponents()
	c.logger.Info("container built successfully")
	return nil
}

func (c *Container) buildInfrastructure() error {
	var err error
	c.logger, err = logger.New(c.cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger failed: %w", err)
	}

	c.monitor = monitor.New(monitor.DefaultConfig())
	c.alerts = alert.NewManager(
		[]alert.Channel{alert.NewZapChannel("log", c.logger.Logger)},
		c.cfg.Alert.Throttle,
	)
	for _, ch := range c.opts.AlertChannels {
		c.alerts.AddChannel(ch)
	}

	c.logger.Info("infrastructure built", zap.Strings("alert_channels", c.alerts.GetChannels()))
	return nil
}

func (c *Container) buildStorage() error {
	switch c.cfg.State.Backend {
	case config.BackendPostgres:
		db, err := persist.OpenPostgres(c.cfg.State.DSN)
		if err != nil {
			return err
		}
		pg := persist.NewPostgresStore(db)
		if err := pg.EnsureSchema(); err != nil {
			db.Close()
			return err
		}
		c.db = db
		c.persister = pg
	default:
		c.persister = persist.NewFileStore(c.cfg.State.Path)
	}

	storeLog := c.logger.WithFields(map[string]interface{}{"component": "store"})
	c.store = store.New(c.persister, risk.NowUTC, func(event string, fields map[string]interface{}) {
		storeLog.LogPersist(event, fields)
	})
	c.logger.Info("storage built", zap.String("backend", c.cfg.State.Backend))
	return nil
}

func (c *Container) buildCoreServices() error {
	c.hub = stream.NewHub(stream.Options{
		AllowedOrigins: c.cfg.Server.AllowedOrigins,
		Logger:         c.logger.Logger,
		OnClientCount:  c.monitor.SetWSClients,
	})

	svc, err := service.New(service.Config{
		Name:                    "risk-engine",
		Version:                 c.opts.Version,
		Limits:                  c.cfg.RiskLimits(),
		LatencyWarn:             c.cfg.Risk.LatencyWarn,
		MaxMonteCarloIterations: c.cfg.MonteCarlo.MaxIterations,
		MaxBacktestIterations:   c.cfg.Backtest.MaxIterations,
		BacktestWorkers:         c.cfg.Backtest.Workers,
	}, service.Components{
		Store:     c.store,
		Logger:    c.logger.WithFields(map[string]interface{}{"component": "service"}),
		Monitor:   c.monitor,
		Notifier:  risk.NewNotifier(c.alerts, c.logger.Named("notifier")),
		Publisher: c.hub,
	})
	if err != nil {
		return err
	}
	c.service = svc

	if c.opts.ConfigPath != "" {
		c.reloader, err = hotreload.NewHotReloader(c.opts.ConfigPath, hotreload.DefaultHotReloadConfig(), loadLimits, c.logger.Logger)
		if err != nil {
			return err
		}
		c.reloader.RegisterValidator(hotreload.RiskLimitsValidator{MaxExposureCeiling: maxExposureCeiling})
		c.reloader.RegisterApplier(hotreload.ApplierFunc(c.applyLimits))
		c.reloader.RegisterFailureHandler(func(err error) {
			c.alerts.SendWarning("config reload rejected", map[string]interface{}{
				"path":  c.opts.ConfigPath,
				"error": err.Error(),
			})
		})
	}

	c.logger.Info("core services built")
	return nil
}

func (c *Container) registerLifecycleComponents() {
	c.lifecycle.Register(&hubComponent{hub: c.hub})

	c.apiServer = &httpServerComponent{
		name: "api_server",
		handler: api.NewRouter(api.Dependencies{
			Service:   c.service,
			Stream:    c.hub.ServeWS,
			Logger:    c.logger.Named("http"),
			OnRequest: c.monitor.RecordHTTPRequest,
		}),
		addr:         c.cfg.Server.Addr,
		readTimeout:  c.cfg.Server.ReadTimeout,
		writeTimeout: c.cfg.Server.WriteTimeout,
		logger:       c.logger,
	}
	c.lifecycle.Register(c.apiServer)

	if c.cfg.Server.MetricsAddr != "" {
		c.metricsServer = &httpServerComponent{
			name:    "metrics_server",
			handler: c.monitor.Handler(),
			addr:    c.cfg.Server.MetricsAddr,
			logger:  c.logger,
		}
		c.lifecycle.Register(c.metricsServer)
	}

	if c.reloader != nil {
		c.lifecycle.Register(c.reloader)
	}
}

// Start 启动全部组件
func (c *Container) Start(ctx context.Context) error {
	if err := c.lifecycle.StartAll(ctx); err != nil {
		c.alerts.SendError("container start failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	c.logger.Info("container started", zap.String("addr", c.APIAddr()))
	return nil
}

// Stop 逆序停止组件并释放数据库连接
func (c *Container) Stop() error {
	err := c.lifecycle.StopAll()
	if c.db != nil {
		if cerr := c.db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	c.logger.Info("container stopped")
	c.logger.Close()
	return err
}

// Health 组件健康检查
func (c *Container) Health() error {
	return c.lifecycle.CheckHealth()
}

// Service 返回风控服务
func (c *Container) Service() *service.RiskService {
	return c.service
}

// APIAddr API 实际监听地址
func (c *Container) APIAddr() string {
	if c.apiServer == nil {
		return ""
	}
	return c.apiServer.Addr()
}

// MetricsAddr 指标实际监听地址
func (c *Container) MetricsAddr() string {
	if c.metricsServer == nil {
		return ""
	}
	return c.metricsServer.Addr()
}

// applyLimits 换入新阈值后清空告警限流，新阈值下的首个告警立即发出。
func (c *Container) applyLimits(l risk.Limits) error {
	if err := c.service.SetLimits(l); err != nil {
		return err
	}
	c.alerts.ResetThrottle()
	return nil
}

// loadLimits 与启动时一致地叠加 RISK_* 环境变量，热更新不会丢失环境覆盖。
func loadLimits(path string) (risk.Limits, error) {
	cfg, err := config.LoadWithEnvOverrides(path)
	if err != nil {
		return risk.Limits{}, err
	}
	return cfg.RiskLimits(), nil
}
