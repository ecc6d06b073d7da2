package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"risk-engine-go/risk"
)

// HotReloadConfig 热更新配置
type HotReloadConfig struct {
	Enabled  bool          // 是否启用热更新
	Debounce time.Duration // 最后一次写入后静默多久才加载，合并编辑器的多次写入
}

// DefaultHotReloadConfig 默认热更新配置
func DefaultHotReloadConfig() HotReloadConfig {
	return HotReloadConfig{
		Enabled:  true,
		Debounce: 500 * time.Millisecond,
	}
}

// LimitsLoader 从配置文件读取风控阈值。
type LimitsLoader func(path string) (risk.Limits, error)

// LimitsValidator 阈值校验器
type LimitsValidator interface {
	Validate(risk.Limits) error
}

// LimitsApplier 阈值应用器
type LimitsApplier interface {
	ApplyLimits(risk.Limits) error
}

// ApplierFunc 函数适配 LimitsApplier。
type ApplierFunc func(risk.Limits) error

func (f ApplierFunc) ApplyLimits(l risk.Limits) error { return f(l) }

// HotReloader 监听配置文件，校验通过后把新阈值交给全部应用器。
type HotReloader struct {
	config     HotReloadConfig
	configPath string
	load       LimitsLoader
	log        *zap.Logger
	watcher    *fsnotify.Watcher
	validators []LimitsValidator
	appliers   []LimitsApplier
	onFailure  []func(error)
	lastReload time.Time
	mu         sync.Mutex
	stopChan   chan struct{}
	doneChan   chan struct{}
	stopOnce   sync.Once
	started    atomic.Bool
}

// NewHotReloader 创建热更新器
func NewHotReloader(configPath string, cfg HotReloadConfig, load LimitsLoader, log *zap.Logger) (*HotReloader, error) {
	if load == nil {
		return nil, fmt.Errorf("limits loader is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &HotReloader{
		config:     cfg,
		configPath: configPath,
		load:       load,
		log:        log.Named("hot_reload"),
		watcher:    watcher,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}, nil
}

// RegisterValidator 注册阈值校验器
func (h *HotReloader) RegisterValidator(v LimitsValidator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.validators = append(h.validators, v)
}

// RegisterApplier 注册阈值应用器
func (h *HotReloader) RegisterApplier(a LimitsApplier) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.appliers = append(h.appliers, a)
}

// RegisterFailureHandler 注册重载失败回调（告警），文件变更触发的失败才会回调。
func (h *HotReloader) RegisterFailureHandler(fn func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFailure = append(h.onFailure, fn)
}

// Start 监听配置文件所在目录，兼容编辑器的 rename 写入方式。
func (h *HotReloader) Start(ctx context.Context) error {
	if !h.config.Enabled {
		return nil
	}
	if err := h.watcher.Add(filepath.Dir(h.configPath)); err != nil {
		return fmt.Errorf("failed to watch config dir: %w", err)
	}
	h.started.Store(true)
	go h.watch(ctx)
	h.log.Info("watching config", zap.String("path", h.configPath))
	return nil
}

// Stop 停止监听并关闭 watcher，可重复调用。
func (h *HotReloader) Stop() error {
	var err error
	h.stopOnce.Do(func() {
		close(h.stopChan)
		if h.started.Load() {
			select {
			case <-h.doneChan:
			case <-time.After(time.Second):
			}
		}
		err = h.watcher.Close()
	})
	return err
}

// Health 热更新器没有外部依赖，始终健康。
func (h *HotReloader) Health() error { return nil }

func (h *HotReloader) watch(ctx context.Context) {
	defer close(h.doneChan)
	target := filepath.Clean(h.configPath)

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopChan:
			return
		case <-debounce.C:
			if err := h.Reload(); err != nil {
				h.log.Warn("config reload rejected", zap.Error(err))
				h.failed(err)
			}
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce.Reset(h.config.Debounce)
			}
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// Reload 读取、校验并应用阈值，任一校验器失败则保持原阈值。
func (h *HotReloader) Reload() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	limits, err := h.load(h.configPath)
	if err != nil {
		return fmt.Errorf("load limits: %w", err)
	}
	for _, v := range h.validators {
		if err := v.Validate(limits); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	for _, a := range h.appliers {
		if err := a.ApplyLimits(limits); err != nil {
			return fmt.Errorf("apply limits: %w", err)
		}
	}

	h.lastReload = time.Now()
	h.log.Info("risk limits reloaded",
		zap.Float64("confidence", limits.Confidence),
		zap.Float64("max_exposure", limits.MaxExposure),
		zap.Float64("max_drawdown", limits.MaxDrawdown),
	)
	return nil
}

func (h *HotReloader) failed(err error) {
	h.mu.Lock()
	handlers := append(([]func(error))(nil), h.onFailure...)
	h.mu.Unlock()
	for _, fn := range handlers {
		fn(err)
	}
}

// GetLastReloadTime 获取最后重载时间
func (h *HotReloader) GetLastReloadTime() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastReload
}

// RiskLimitsValidator 在基础范围校验之外限制敞口上限，防止误配。
type RiskLimitsValidator struct {
	MaxExposureCeiling float64 // 0 表示不限制
}

func (v RiskLimitsValidator) Validate(l risk.Limits) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if v.MaxExposureCeiling > 0 && l.MaxExposure > v.MaxExposureCeiling {
		return fmt.Errorf("max_exposure %.4f above ceiling %.4f", l.MaxExposure, v.MaxExposureCeiling)
	}
	return nil
}
