package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nWish8/Sandbox/backtest"
	"github.com/nWish8/Sandbox/market"
	"github.com/nWish8/Sandbox/risk"
)

// sampleResult runs a scripted strategy with two round trips, the second
// closed by end-of-data liquidation.
func sampleResult(t *testing.T) *backtest.Result {
	t.Helper()

	p := market.DefaultWalk()
	p.Bars = 40
	p.StartPrice = 100
	series, err := market.RandomWalk("WALK", p)
	require.NoError(t, err)

	actions := map[int]backtest.Action{
		2:  backtest.Long(risk.Units(10)),
		10: backtest.Flatten(),
		20: backtest.Long(risk.Units(5)),
	}
	strat := backtest.Named("script", nil, func(c backtest.Context) backtest.Action {
		return actions[c.BarIndex]
	})

	cfg := backtest.DefaultConfig()
	cfg.LiquidateAtEnd = true
	eng, err := backtest.NewEngine(cfg)
	require.NoError(t, err)
	res, err := eng.Run(context.Background(), series, strat)
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)

	res.RunID = "01HZRUN0000000000000000001"
	return res
}
