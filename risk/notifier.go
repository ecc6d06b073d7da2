package risk

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AlertClient 抽象告警发送。
type AlertClient interface {
	Send(typ, msg string)
}

type Notifier struct {
	alert AlertClient
	log   *zap.Logger
}

func NewNotifier(alert AlertClient, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{alert: alert, log: log}
}

func (n *Notifier) NotifyTradeRejected(symbol string, reason string) {
	msg := "TradeRejected symbol=" + symbol + " reason=" + reason
	n.log.Warn(msg)
	if n.alert != nil {
		n.alert.Send("TradeRejected", msg)
	}
}

func (n *Notifier) NotifyPersistFailure(err error) {
	msg := "RiskStatePersistFailed"
	if err != nil {
		msg += " err=" + err.Error()
	}
	n.log.Error(msg)
	if n.alert != nil {
		n.alert.Send("PersistFailure", msg)
	}
}

func (n *Notifier) NotifySlow(op string, elapsed time.Duration) {
	msg := fmt.Sprintf("SlowRiskOperation op=%s elapsed=%s", op, elapsed)
	n.log.Warn(msg, zap.Int64("elapsed_us", elapsed.Microseconds()))
	if n.alert != nil {
		n.alert.Send("Latency", msg)
	}
}
