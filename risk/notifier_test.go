package risk

import (
	"errors"
	"testing"
	"time"
)

type memAlert struct{ typ, msg string }

func (m *memAlert) Send(typ, msg string) {
	m.typ = typ
	m.msg = msg
}

func TestNotifier(t *testing.T) {
	alert := &memAlert{}
	n := NewNotifier(alert, nil)
	n.NotifyTradeRejected("ETHUSDT", "Post-trade exposure 80.00% exceeds maximum 75.00%")
	if alert.typ != "TradeRejected" {
		t.Fatalf("expected TradeRejected, got %s", alert.typ)
	}
	n.NotifyPersistFailure(errors.New("disk full"))
	if alert.typ != "PersistFailure" {
		t.Fatalf("expected PersistFailure, got %s", alert.typ)
	}
	n.NotifySlow("evaluate", 3*time.Millisecond)
	if alert.typ != "Latency" {
		t.Fatalf("expected Latency, got %s", alert.typ)
	}
}
