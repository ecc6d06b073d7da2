package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk-engine-go/risk"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type memPersister struct {
	mu      sync.Mutex
	loaded  risk.State
	loadErr error
	saveErr error
	panicOn bool
	saved   []risk.State
}

func (m *memPersister) Load() (risk.State, error) { return m.loaded, m.loadErr }

func (m *memPersister) Save(st risk.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOn {
		panic("boom")
	}
	m.saved = append(m.saved, st)
	return m.saveErr
}

func TestNewLoadsPersistedState(t *testing.T) {
	p := &memPersister{loaded: risk.State{TotalExposure: 0.4, ActivePositions: 2, LastUpdate: "1690000000"}}
	var events []string
	st := New(p, fixedClock{t: time.Unix(1700000000, 0)}, func(ev string, _ map[string]interface{}) {
		events = append(events, ev)
	})

	assert.Equal(t, p.loaded, st.Snapshot())
	assert.Equal(t, []string{"state_loaded"}, events)
}

func TestNewFallsBackToZeroState(t *testing.T) {
	p := &memPersister{loadErr: errors.New("corrupt")}
	var events []string
	st := New(p, fixedClock{t: time.Unix(1700000000, 0)}, func(ev string, _ map[string]interface{}) {
		events = append(events, ev)
	})

	assert.Equal(t, risk.State{LastUpdate: "1700000000"}, st.Snapshot())
	assert.Equal(t, []string{"state_load_fallback"}, events)
}

func TestApplyPersistsSynchronously(t *testing.T) {
	p := &memPersister{}
	st := New(p, fixedClock{t: time.Unix(1700000100, 0)}, nil)

	snap, err := st.Apply(risk.Evaluation{VaR: 10, CVaR: 13, Drawdown: 5, Exposure: 0.3, ActivePositions: 2})
	require.NoError(t, err)

	want := risk.State{TotalExposure: 0.3, ActivePositions: 2, VaR: 10, CVaR: 13, Drawdown: 5, LastUpdate: "1700000100"}
	assert.Equal(t, want, snap)
	assert.Equal(t, want, st.Snapshot())
	require.Len(t, p.saved, 1)
	assert.Equal(t, want, p.saved[0])
}

func TestApplySaveFailureKeepsMemoryState(t *testing.T) {
	p := &memPersister{saveErr: errors.New("disk full")}
	st := New(p, nil, nil)

	snap, err := st.Apply(risk.Evaluation{Exposure: 0.7})
	require.Error(t, err)
	assert.Equal(t, 0.7, snap.TotalExposure)
	assert.Equal(t, 0.7, st.Snapshot().TotalExposure)

	// 锁已释放，后续调用不受影响
	p.saveErr = nil
	_, err = st.Apply(risk.Evaluation{Exposure: 0.2})
	require.NoError(t, err)
	assert.Equal(t, 0.2, st.Snapshot().TotalExposure)
}

func TestApplyPersisterPanicReleasesLock(t *testing.T) {
	p := &memPersister{panicOn: true}
	st := New(p, nil, nil)

	_, err := st.Apply(risk.Evaluation{Exposure: 0.1})
	assert.ErrorIs(t, err, ErrPersistPanic)
	assert.Equal(t, 0.1, st.Snapshot().TotalExposure)
}

func TestSnapshotStableWithoutMutation(t *testing.T) {
	st := New(nil, fixedClock{t: time.Unix(1700000000, 0)}, nil)
	assert.Equal(t, st.Snapshot(), st.Snapshot())
}

func TestConcurrentApplyAndSnapshot(t *testing.T) {
	p := &memPersister{}
	st := New(p, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = st.Apply(risk.Evaluation{ActivePositions: i, Exposure: float64(i)})
		}(i)
		go func() {
			defer wg.Done()
			snap := st.Snapshot()
			assert.Equal(t, float64(snap.ActivePositions), snap.TotalExposure)
		}()
	}
	wg.Wait()
	assert.Len(t, p.saved, 50)
}

func TestApplyHooksRunInCommitOrder(t *testing.T) {
	st := New(&memPersister{}, nil, nil)

	var (
		mu        sync.Mutex
		published []risk.State
	)
	record := func(snap risk.State) {
		mu.Lock()
		published = append(published, snap)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = st.Apply(risk.Evaluation{ActivePositions: i, Exposure: float64(i)}, record)
		}(i)
	}
	wg.Wait()

	require.Len(t, published, 50)
	assert.Equal(t, st.Snapshot(), published[len(published)-1])
}

func TestApplyHooksRunOnSaveFailure(t *testing.T) {
	st := New(&memPersister{saveErr: errors.New("disk full")}, nil, nil)

	var got []risk.State
	snap, err := st.Apply(risk.Evaluation{Exposure: 0.4}, func(s risk.State) { got = append(got, s) })
	require.Error(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, snap, got[0])
}
