package risk

import "time"

// LatencyWatch 记录操作耗时，超过阈值时回调，只告警不拒绝。
type LatencyWatch struct {
	Threshold time.Duration
	onSlow    func(op string, elapsed time.Duration)
	clock     Clock
}

func NewLatencyWatch(threshold time.Duration, onSlow func(op string, elapsed time.Duration)) *LatencyWatch {
	return &LatencyWatch{
		Threshold: threshold,
		onSlow:    onSlow,
		clock:     NowUTC,
	}
}

// Start 开始计时，返回的函数结束计时并返回耗时。
func (w *LatencyWatch) Start(op string) func() time.Duration {
	if w == nil {
		return func() time.Duration { return 0 }
	}
	begin := w.clock.Now()
	return func() time.Duration {
		elapsed := w.clock.Now().Sub(begin)
		if w.Threshold > 0 && elapsed > w.Threshold && w.onSlow != nil {
			w.onSlow(op, elapsed)
		}
		return elapsed
	}
}
