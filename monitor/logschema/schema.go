package logschema

import (
	"fmt"
	"sort"
	"strings"
)

// Schema 定义每个日志事件所需的关键字段，便于集中校验。
type Schema struct {
	Event    string
	Required []string
}

var schemas = map[string]Schema{
	"risk_evaluation": {
		Event:    "risk_evaluation",
		Required: []string{"positions", "portfolio_value", "var", "cvar", "exposure", "drawdown"},
	},
	"trade_admission": {
		Event:    "trade_admission",
		Required: []string{"symbol", "side", "approved", "reason"},
	},
	"stress_test": {
		Event:    "stress_test",
		Required: []string{"positions", "scenarios"},
	},
	"mc_simulation": {
		Event:    "mc_simulation",
		Required: []string{"iterations", "confidence", "var", "cvar", "runtime_ms", "seeded"},
	},
	"backtest_run": {
		Event:    "backtest_run",
		Required: []string{"strategies", "iterations"},
	},
	"state_persist": {
		Event:    "state_persist",
		Required: []string{"error"},
	},
	"slow_operation": {
		Event:    "slow_operation",
		Required: []string{"op", "elapsed_us"},
	},
}

// Known 返回所有事件名，便于外部生成文档。
func Known() []string {
	names := make([]string, 0, len(schemas))
	for k := range schemas {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate 检查日志字段是否包含 schema 中要求的 key；未登记的事件直接放行。
func Validate(event string, fields map[string]interface{}) error {
	s, ok := schemas[event]
	if !ok {
		return nil
	}
	var missing []string
	for _, key := range s.Required {
		if _, exists := fields[key]; !exists {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields: %s", strings.Join(missing, ","))
	}
	return nil
}
