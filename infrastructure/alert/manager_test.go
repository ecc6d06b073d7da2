package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewManager(t *testing.T) {
	ch := NewMockChannel("test")
	mgr := NewManager([]Channel{ch}, 5*time.Minute)

	channels := mgr.GetChannels()
	require.Len(t, channels, 1)
	assert.Equal(t, "test", channels[0])

	mgr.AddChannel(NewMockChannel("second"))
	assert.Equal(t, []string{"test", "second"}, mgr.GetChannels())
}

func TestSendAlert(t *testing.T) {
	mock := NewMockChannel("mock")
	mgr := NewManager([]Channel{mock}, 5*time.Minute)

	err := mgr.SendAlert(Alert{
		Level:   LevelWarning,
		Message: "state file unwritable",
		Fields:  map[string]interface{}{"path": "state/risk_state.json"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, mock.Count())

	alert := mock.GetAlerts()[0]
	assert.Equal(t, LevelWarning, alert.Level)
	assert.Equal(t, "state/risk_state.json", alert.Fields["path"])
	assert.False(t, alert.Timestamp.IsZero())
}

func TestSendMapsTypeToLevel(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"TradeRejected", LevelInfo},
		{"Latency", LevelWarning},
		{"PersistFailure", LevelWarning},
		{"SomethingElse", LevelWarning},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			mock := NewMockChannel("mock")
			mgr := NewManager([]Channel{mock}, time.Minute)
			mgr.Send(tt.typ, "msg")
			require.Equal(t, 1, mock.Count())
			assert.Equal(t, tt.want, mock.GetAlerts()[0].Level)
			assert.Equal(t, tt.typ, mock.GetAlerts()[0].Type)
		})
	}
}

func TestThrottleByType(t *testing.T) {
	mock := NewMockChannel("mock")
	mgr := NewManager([]Channel{mock}, time.Hour)

	mgr.Send("PersistFailure", "err=disk full")
	mgr.Send("PersistFailure", "err=permission denied")
	mgr.Send("Latency", "op=evaluate")
	assert.Equal(t, 2, mock.Count())

	mgr.ResetThrottle()
	mgr.Send("PersistFailure", "err=disk full")
	assert.Equal(t, 3, mock.Count())
}

func TestThrottlerWindow(t *testing.T) {
	now := time.Unix(0, 0)
	th := NewThrottler(time.Second)
	th.now = func() time.Time { return now }

	assert.True(t, th.Allow("k"))
	assert.False(t, th.Allow("k"))
	now = now.Add(time.Second)
	assert.True(t, th.Allow("k"))
}

func TestAllChannelsFail(t *testing.T) {
	mock := NewMockChannel("mock")
	mock.SetShouldError(true)
	mgr := NewManager([]Channel{mock}, 0)

	err := mgr.SendError("boom", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel mock failed")

	ok := NewMockChannel("ok")
	mgr.AddChannel(ok)
	assert.NoError(t, mgr.SendError("boom", nil))
	assert.Equal(t, 1, ok.Count())
}

func TestZapChannel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ch := NewZapChannel("zap", zap.New(core))

	require.NoError(t, ch.Send(Alert{Level: LevelError, Type: "PersistFailure", Message: "save failed", Fields: map[string]interface{}{"backend": "file"}}))
	require.NoError(t, ch.Send(Alert{Level: LevelInfo, Type: "TradeRejected", Message: "rejected"}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "save failed", entries[0].Message)
	assert.Equal(t, "file", entries[0].ContextMap()["backend"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "zap", ch.Name())
}
