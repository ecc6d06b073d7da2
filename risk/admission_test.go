package risk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGuard struct {
	err   error
	calls *int
}

func (s stubGuard) Check(TradeRequest, State) error {
	if s.calls != nil {
		*s.calls++
	}
	return s.err
}

func TestMultiGuardShortCircuits(t *testing.T) {
	calls := 0
	g := MultiGuard{
		Guards: []Guard{
			stubGuard{},
			nil,
			stubGuard{err: ErrDrawdownExceeded},
			stubGuard{calls: &calls},
		},
	}
	err := g.Check(TradeRequest{}, State{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDrawdownExceeded))
	assert.Equal(t, 0, calls)
}

func TestAdmitRejectsOnDrawdown(t *testing.T) {
	trade := TradeRequest{
		Symbol:          "BTCUSDT",
		Side:            "buy",
		Quantity:        1,
		Price:           10,
		PortfolioValue:  1000,
		CurrentDrawdown: 0.09,
	}
	d := Admit(trade, State{}, DefaultLimits())

	assert.False(t, d.Approved)
	assert.Equal(t, "Current drawdown 9.00% exceeds maximum 8.00%", d.Reason)
	assert.Nil(t, d.PostTradeExposure)
	assert.Nil(t, d.ProjectedDrawdown)
}

func TestAdmitRejectsOnExposure(t *testing.T) {
	trade := TradeRequest{
		Symbol:         "BTCUSDT",
		Side:           "buy",
		Quantity:       1,
		Price:          300,
		PortfolioValue: 1000,
	}
	d := Admit(trade, State{TotalExposure: 0.5}, DefaultLimits())

	assert.False(t, d.Approved)
	assert.Equal(t, "Post-trade exposure 80.00% exceeds maximum 75.00%", d.Reason)
	require.NotNil(t, d.PostTradeExposure)
	assert.InDelta(t, 0.8, *d.PostTradeExposure, 1e-12)
	assert.Nil(t, d.ProjectedDrawdown)
}

func TestAdmitApproves(t *testing.T) {
	trade := TradeRequest{
		Symbol:         "ETHUSDT",
		Side:           "sell",
		Quantity:       1,
		Price:          100,
		PortfolioValue: 1000,
	}
	d := Admit(trade, State{TotalExposure: 0.2, Drawdown: 4.5}, DefaultLimits())

	assert.True(t, d.Approved)
	assert.Equal(t, "Within exposure limits", d.Reason)
	require.NotNil(t, d.PostTradeExposure)
	require.NotNil(t, d.ProjectedDrawdown)
	// 卖单不改变交易额符号
	assert.InDelta(t, 0.3, *d.PostTradeExposure, 1e-12)
	assert.Equal(t, 4.5, *d.ProjectedDrawdown)
}

func TestAdmitDrawdownCheckedFirst(t *testing.T) {
	trade := TradeRequest{Quantity: 100, Price: 100, PortfolioValue: 1000, CurrentDrawdown: 0.5}
	d := Admit(trade, State{TotalExposure: 0.9}, DefaultLimits())

	assert.False(t, d.Approved)
	assert.Contains(t, d.Reason, "Current drawdown 50.00%")
}

func TestPostTradeExposureNonPositivePortfolio(t *testing.T) {
	trade := TradeRequest{Quantity: 1, Price: 300, PortfolioValue: 0}
	assert.Equal(t, 0.0, PostTradeExposure(trade, State{TotalExposure: 0.5}))

	d := Admit(trade, State{TotalExposure: 0.5}, DefaultLimits())
	assert.True(t, d.Approved)
	assert.Equal(t, 0.0, *d.PostTradeExposure)
}

func TestRejectionUnwraps(t *testing.T) {
	err := ExposureGuard{Max: 0.1}.Check(TradeRequest{Quantity: 1, Price: 500, PortfolioValue: 1000}, State{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExposureExceeded)

	var rej *Rejection
	require.True(t, errors.As(err, &rej))
	assert.InDelta(t, 0.5, *rej.PostTradeExposure, 1e-12)
}

func TestLimitsValidate(t *testing.T) {
	assert.NoError(t, DefaultLimits().Validate())

	bad := []Limits{
		{Confidence: 0.5, MaxExposure: 0.75, MaxDrawdown: 0.08},
		{Confidence: 1, MaxExposure: 0.75, MaxDrawdown: 0.08},
		{Confidence: 0.99, MaxExposure: 0, MaxDrawdown: 0.08},
		{Confidence: 0.99, MaxExposure: 0.75, MaxDrawdown: 0},
		{Confidence: 0.99, MaxExposure: 0.75, MaxDrawdown: 1.5},
	}
	for _, l := range bad {
		assert.ErrorIs(t, l.Validate(), ErrInvalidLimits, "%+v", l)
	}
}
