package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func TestLatencyWatch(t *testing.T) {
	fc := &fakeClock{t: time.Unix(0, 0)}
	var slowOps []string
	w := NewLatencyWatch(time.Millisecond, func(op string, _ time.Duration) {
		slowOps = append(slowOps, op)
	})
	w.clock = fc

	done := w.Start("evaluate")
	fc.t = fc.t.Add(500 * time.Microsecond)
	assert.Equal(t, 500*time.Microsecond, done())
	assert.Empty(t, slowOps)

	done = w.Start("validate")
	fc.t = fc.t.Add(2 * time.Millisecond)
	done()
	assert.Equal(t, []string{"validate"}, slowOps)

	var nilWatch *LatencyWatch
	assert.Equal(t, time.Duration(0), nilWatch.Start("x")())
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "1700000000", Timestamp(time.Unix(1700000000, 999)))
	assert.Equal(t, "1700000000", NewState(time.Unix(1700000000, 0)).LastUpdate)
}
