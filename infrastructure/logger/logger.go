package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"risk-engine-go/monitor/logschema"
)

// Logger 封装 zap，所有风控事件经 logschema 校验后输出。
type Logger struct {
	*zap.Logger
	config Config
	now    func() time.Time
}

// Config 日志配置
type Config struct {
	Level      string   `yaml:"level"`       // debug, info, warn, error
	Outputs    []string `yaml:"outputs"`     // stdout, stderr, file
	OutputFile string   `yaml:"output_file"` // 日志文件路径
	ErrorFile  string   `yaml:"error_file"`  // 错误日志单独文件
	Format     string   `yaml:"format"`      // json 或 console
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Outputs: []string{"stdout"},
		Format:  "json",
	}
}

// New 按配置构建 Tee core。
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	newEncoder := func() zapcore.Encoder { return zapcore.NewJSONEncoder(encCfg) }
	if cfg.Format == "console" {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		newEncoder = func() zapcore.Encoder { return zapcore.NewConsoleEncoder(encCfg) }
	}

	var cores []zapcore.Core
	for _, out := range cfg.Outputs {
		switch out {
		case "stdout":
			cores = append(cores, zapcore.NewCore(newEncoder(), zapcore.Lock(os.Stdout), level))
		case "stderr":
			cores = append(cores, zapcore.NewCore(newEncoder(), zapcore.Lock(os.Stderr), level))
		case "file":
			if cfg.OutputFile == "" {
				continue
			}
			w, err := openAppend(cfg.OutputFile)
			if err != nil {
				return nil, fmt.Errorf("open log file failed: %w", err)
			}
			// 文件统一用 JSON，便于采集
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, level))
		default:
			return nil, fmt.Errorf("unknown log output %q", out)
		}
	}

	if cfg.ErrorFile != "" {
		w, err := openAppend(cfg.ErrorFile)
		if err != nil {
			return nil, fmt.Errorf("open error log file failed: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, zapcore.ErrorLevel))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return &Logger{Logger: z, config: cfg, now: time.Now}, nil
}

// Wrap 包装已有的 zap.Logger，测试中配合 observer 使用。
func Wrap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{Logger: z, config: DefaultConfig(), now: time.Now}
}

// Nop 不输出任何内容。
func Nop() *Logger {
	return Wrap(nil)
}

// WithFields 添加字段返回新的logger
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.With(toFields(fields)...),
		config: l.config,
		now:    l.now,
	}
}

// LogEvent 输出一条结构化事件，字段缺失时额外记一条 schema_violation。
func (l *Logger) LogEvent(level zapcore.Level, event string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err := logschema.Validate(event, fields); err != nil {
		l.Warn("schema_violation", zap.String("event", event), zap.Error(err))
	}
	fields["event"] = event
	fields["ts"] = l.now().UTC().Format(time.RFC3339Nano)
	if ce := l.Check(level, event); ce != nil {
		ce.Write(toFields(fields)...)
	}
}

// LogEvaluation 记录一次组合评估。
func (l *Logger) LogEvaluation(positions int, portfolioValue, valueAtRisk, cvar, exposure, drawdown float64) {
	l.LogEvent(zapcore.InfoLevel, "risk_evaluation", map[string]interface{}{
		"positions":       positions,
		"portfolio_value": portfolioValue,
		"var":             valueAtRisk,
		"cvar":            cvar,
		"exposure":        exposure,
		"drawdown":        drawdown,
	})
}

// LogAdmission 记录交易准入结果，拒绝使用 warn 级别。
func (l *Logger) LogAdmission(symbol, side string, approved bool, reason string) {
	level := zapcore.InfoLevel
	if !approved {
		level = zapcore.WarnLevel
	}
	l.LogEvent(level, "trade_admission", map[string]interface{}{
		"symbol":   symbol,
		"side":     side,
		"approved": approved,
		"reason":   reason,
	})
}

func (l *Logger) LogStress(positions, scenarios int) {
	l.LogEvent(zapcore.InfoLevel, "stress_test", map[string]interface{}{
		"positions": positions,
		"scenarios": scenarios,
	})
}

func (l *Logger) LogSimulation(iterations int, confidence, valueAtRisk, cvar float64, runtime time.Duration, seeded bool) {
	l.LogEvent(zapcore.InfoLevel, "mc_simulation", map[string]interface{}{
		"iterations": iterations,
		"confidence": confidence,
		"var":        valueAtRisk,
		"cvar":       cvar,
		"runtime_ms": runtime.Milliseconds(),
		"seeded":     seeded,
	})
}

func (l *Logger) LogBacktest(strategies, iterations int) {
	l.LogEvent(zapcore.InfoLevel, "backtest_run", map[string]interface{}{
		"strategies": strategies,
		"iterations": iterations,
	})
}

// LogPersist 记录状态存储事件；带 error 字段的按 error 级别输出。
func (l *Logger) LogPersist(event string, fields map[string]interface{}) {
	level := zapcore.InfoLevel
	if _, failed := fields["error"]; failed {
		level = zapcore.ErrorLevel
	}
	l.LogEvent(level, event, fields)
}

func (l *Logger) LogLatency(op string, elapsed time.Duration) {
	l.LogEvent(zapcore.WarnLevel, "slow_operation", map[string]interface{}{
		"op":         op,
		"elapsed_us": elapsed.Microseconds(),
	})
}

// LogError 记录错误并附带上下文
func (l *Logger) LogError(err error, context map[string]interface{}) {
	if context == nil {
		context = make(map[string]interface{})
	}
	if err != nil {
		context["error"] = err.Error()
	}
	context["ts"] = l.now().UTC().Format(time.RFC3339Nano)
	l.Error("error_event", toFields(context)...)
}

// Close 关闭日志器
func (l *Logger) Close() error {
	return l.Sync()
}

func toFields(m map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(m))
	for k, v := range m {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func openAppend(path string) (zapcore.WriteSyncer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(f), nil
}
