// Package journal persists backtest runs: a run summary, its closed
// trades and its equity curve, keyed by run ID.
package journal

import (
	"encoding/json"
	"time"

	"github.com/nWish8/Sandbox/analytics"
	"github.com/nWish8/Sandbox/backtest"
)

// RunRecord is the summary row of one run.
type RunRecord struct {
	RunID     string
	Created   time.Time
	Strategy  string
	Symbol    string
	Timeframe string
	Dataset   string
	Start     time.Time
	End       time.Time
	Bars      int

	Config []byte // backtest.Config as JSON

	StartBalance float64
	EndBalance   float64
	NetPL        float64
	Commission   float64

	Trades int
	Wins   int
	Losses int

	Report analytics.Report

	// Org report only.
	Notes       []string
	NextActions []string
}

// ReturnPct is the total return in percent.
func (r RunRecord) ReturnPct() float64 {
	if r.StartBalance == 0 {
		return 0
	}
	return 100 * (r.EndBalance - r.StartBalance) / r.StartBalance
}

// TradeRecord is one closed trade of a run.
type TradeRecord struct {
	RunID      string
	TradeID    int
	Symbol     string
	Side       string
	Size       float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	Commission float64
	RealizedPL float64
	PnLPct     float64
}

// EquityRecord is one bar of a run's equity curve.
type EquityRecord struct {
	RunID        string
	Bar          int
	Time         time.Time
	Cash         float64
	PositionSize float64
	MarkPrice    float64
	Equity       float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

// FromResult flattens a finished run into journal records. res.RunID
// must already be set.
func FromResult(res *backtest.Result, dataset string) (RunRecord, []TradeRecord, []EquityRecord, error) {
	cfg, err := json.Marshal(res.Config)
	if err != nil {
		return RunRecord{}, nil, nil, err
	}

	rep := res.Report
	run := RunRecord{
		RunID:        res.RunID,
		Created:      time.Now().UTC(),
		Strategy:     res.Strategy,
		Symbol:       res.Symbol,
		Timeframe:    res.Timeframe,
		Dataset:      dataset,
		Start:        res.Start,
		End:          res.End,
		Bars:         rep.Bars,
		Config:       cfg,
		StartBalance: rep.InitialCash,
		EndBalance:   rep.FinalEquity,
		NetPL:        rep.FinalEquity - rep.InitialCash,
		Commission:   rep.TotalCommission,
		Trades:       rep.Trades,
		Wins:         rep.Wins,
		Losses:       rep.Losses,
		Report:       rep,
	}

	trades := make([]TradeRecord, len(res.Trades))
	for i, t := range res.Trades {
		trades[i] = TradeRecord{
			RunID:      res.RunID,
			TradeID:    t.ID,
			Symbol:     res.Symbol,
			Side:       t.Side.String(),
			Size:       t.Size,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			Commission: t.Commission,
			RealizedPL: t.PnL,
			PnLPct:     t.PnLPct,
		}
	}

	equity := make([]EquityRecord, len(res.Snapshots))
	for i, s := range res.Snapshots {
		equity[i] = EquityRecord{
			RunID:        res.RunID,
			Bar:          s.BarIndex,
			Time:         s.Time,
			Cash:         s.Cash,
			PositionSize: s.PositionSize,
			MarkPrice:    s.MarkPrice,
			Equity:       s.Equity,
		}
	}
	return run, trades, equity, nil
}

// Record writes a finished run to j.
func Record(j Journal, res *backtest.Result, dataset string) error {
	run, trades, equity, err := FromResult(res, dataset)
	if err != nil {
		return err
	}
	if err := j.RecordRun(run); err != nil {
		return err
	}
	for _, t := range trades {
		if err := j.RecordTrade(t); err != nil {
			return err
		}
	}
	for _, e := range equity {
		if err := j.RecordEquity(e); err != nil {
			return err
		}
	}
	return nil
}
