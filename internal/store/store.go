// Package store 持有进程内唯一的风险状态。
package store

import (
	"errors"
	"fmt"
	"sync"

	"risk-engine-go/risk"
)

// Persister 状态持久化契约。Load 失败时 Store 回退到全零状态。
type Persister interface {
	Load() (risk.State, error)
	Save(risk.State) error
}

// EventSink 结构化事件回调。
type EventSink func(string, map[string]interface{})

// Store 用一把互斥锁保护风险状态；每次变更在锁内同步落盘。
// 只读操作同样持锁，保证快照一致。
type Store struct {
	mu        sync.Mutex
	state     risk.State
	persister Persister
	clock     risk.Clock
	sink      EventSink
}

// New 从 persister 加载状态；加载失败或未配置时使用全零状态。
func New(p Persister, clock risk.Clock, sink EventSink) *Store {
	if clock == nil {
		clock = risk.NowUTC
	}
	s := &Store{
		persister: p,
		clock:     clock,
		sink:      sink,
		state:     risk.NewState(clock.Now()),
	}
	if p == nil {
		return s
	}
	loaded, err := p.Load()
	if err != nil {
		s.logEvent("state_load_fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return s
	}
	s.state = loaded
	s.logEvent("state_loaded", map[string]interface{}{
		"total_exposure":   loaded.TotalExposure,
		"active_positions": loaded.ActivePositions,
		"last_update":      loaded.LastUpdate,
	})
	return s
}

// Snapshot 返回当前状态副本。
func (s *Store) Snapshot() risk.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply 写入一次评估结果并同步持久化，返回更新后的快照。
// 持久化失败时内存状态仍然生效，错误交由调用方记录。
// then 在锁内按提交顺序调用（状态推送），不得阻塞或回调 Store。
func (s *Store) Apply(ev risk.Evaluation, then ...func(risk.State)) (risk.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Apply(ev, s.clock.Now())
	snapshot := s.state
	var err error
	if s.persister != nil {
		if err = s.save(snapshot); err != nil {
			s.logEvent("state_persist", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	for _, fn := range then {
		fn(snapshot)
	}
	return snapshot, err
}

// save 捕获 persister 的 panic，保证锁一定释放且后续可继续使用。
func (s *Store) save(st risk.State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPersistPanic, r)
		}
	}()
	return s.persister.Save(st)
}

// ErrPersistPanic persister 在保存时 panic。
var ErrPersistPanic = errors.New("persister panicked")

func (s *Store) logEvent(event string, fields map[string]interface{}) {
	if s == nil || s.sink == nil {
		return
	}
	s.sink(event, fields)
}
