package risk

// Guard 交易准入检查，返回 nil 表示放行。
type Guard interface {
	Check(trade TradeRequest, snapshot State) error
}

// MultiGuard 顺序执行多个 Guard，只要有一个返回错误则中止。
type MultiGuard struct {
	Guards []Guard
}

func (m MultiGuard) Check(trade TradeRequest, snapshot State) error {
	for _, g := range m.Guards {
		if g == nil {
			continue
		}
		if err := g.Check(trade, snapshot); err != nil {
			return err
		}
	}
	return nil
}
