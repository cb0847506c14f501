// Package backtest drives a strategy over a price series one bar at a time.
//
// For each bar i the engine settles the order left pending by bar i-1 at
// bar i's open, asks the strategy to decide with everything known at bar
// i's close, submits at most one order, and marks the portfolio at the
// close. An order submitted on bar i can therefore never fill on bar i.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/nWish8/Sandbox/analytics"
	"github.com/nWish8/Sandbox/indicators"
	"github.com/nWish8/Sandbox/market"
	"github.com/nWish8/Sandbox/risk"
	"github.com/nWish8/Sandbox/sim"
)

// Engine runs backtests under one Config. An Engine holds no run state
// and may be shared by concurrent runs.
type Engine struct {
	cfg Config
	log *zap.Logger
}

type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// runState is the state of one backtest.
type runState struct {
	cfg    Config
	log    *zap.Logger
	ledger *sim.Ledger
	exec   *sim.Simulator
}

// Run executes strat over s. Cancelling ctx aborts the run and discards
// its partial state.
func (e *Engine) Run(ctx context.Context, s *market.Series, strat Strategy) (*Result, error) {
	if s == nil || s.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrInvalidConfig)
	}
	if strat == nil {
		return nil, fmt.Errorf("%w: nil strategy", ErrInvalidConfig)
	}

	lines, err := indicators.ComputeAll(ctx, s, strat.Indicators())
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", strat.Name(), err)
	}

	log := e.log.With(zap.String("strategy", strat.Name()), zap.String("symbol", s.Symbol()))
	log.Info("backtest started", zap.Int("bars", s.Len()), zap.Int("indicators", len(lines)))

	r := &runState{
		cfg:    e.cfg,
		log:    log,
		ledger: sim.NewLedger(e.cfg.InitialCash),
		exec: sim.NewSimulator(sim.ExecConfig{
			CommissionRate: e.cfg.CommissionRate,
			Slippage:       e.cfg.Slippage,
			AllowShort:     e.cfg.AllowShort,
		}),
	}

	n := s.Len()
	states := make([]State, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			log.Info("backtest canceled", zap.Int("bar", i))
			return nil, err
		}
		if err := r.step(s, i, lines, strat); err != nil {
			return nil, fmt.Errorf("backtest %s: bar %d: %w", strat.Name(), i, err)
		}
		states = append(states, ledgerState(r.ledger))
	}

	if o, ok := r.ledger.Pending(); ok {
		if err := r.ledger.Cancel(o.ID, "end of data"); err != nil {
			return nil, err
		}
		log.Debug("order canceled at end of data", zap.Int("order", o.ID))
	}

	res := e.result(s, strat, r.ledger, states)
	log.Info("backtest finished",
		zap.Int("trades", res.Report.Trades),
		zap.Float64("final_equity", res.Report.FinalEquity),
		zap.Stringer("total_return", res.Report.TotalReturn),
	)
	return res, nil
}

func (r *runState) step(s *market.Series, i int, lines map[string]indicators.Line, strat Strategy) error {
	b := s.At(i)

	out, err := r.exec.Settle(r.ledger, b, i)
	if err != nil {
		return err
	}
	r.logOutcome(i, out)

	pos := r.ledger.Position()
	c := Context{
		BarIndex:   i,
		Time:       b.Time,
		Bar:        b,
		Indicators: Snapshot{lines: lines, index: i},
		Position:   pos,
		Cash:       r.ledger.Cash(),
		Equity:     r.ledger.Equity(b.Close),
		State:      positionState(pos),
	}
	if err := r.act(c, strat.Decide(c)); err != nil {
		return err
	}

	if r.cfg.LiquidateAtEnd && i == s.Len()-1 {
		out, err := r.exec.Liquidate(r.ledger, i, b.Time, b.Close)
		if err != nil {
			return err
		}
		r.logOutcome(i, out)
	}

	_, err = r.ledger.MarkToMarket(i, b.Time, b.Close)
	return err
}

// act turns an Action into at most one order.
func (r *runState) act(c Context, a Action) error {
	var (
		side sim.Side
		size float64
	)
	held := math.Abs(c.Position.Size)

	switch a.Kind {
	case Hold:
		return nil
	case Exit:
		if c.Position.IsFlat() {
			return nil
		}
		side, size = sim.Sell, held
		if c.Position.Direction() == sim.Short {
			side = sim.Buy
		}
	case EnterLong, EnterShort:
		spec := a.Size
		if spec.IsDefault() {
			spec = r.cfg.defaultSize()
		}
		units, err := risk.Resolve(spec, c.Equity, c.Bar.Close, r.cfg.LotSize)
		if err != nil {
			r.log.Warn("size not resolved", zap.Int("bar", c.BarIndex), zap.Error(err))
			units = 0
		}
		side, size = sim.Buy, units
		if a.Kind == EnterShort {
			side = sim.Sell
		}
		// A zero size goes to the ledger unchanged so it is logged as
		// rejected, never topped up into a bare exit.
		if units > 0 && c.Position.Direction() == sim.Direction(-side) {
			size += held
		}
	default:
		return fmt.Errorf("unknown action %s", a.Kind)
	}

	o, err := r.ledger.Submit(side, size, c.BarIndex)
	if errors.Is(err, sim.ErrInvalidOrder) {
		r.log.Debug("order rejected", zap.Int("bar", c.BarIndex), zap.Int("order", o.ID), zap.String("reason", o.Reason))
		return nil
	}
	if err != nil {
		return err
	}
	r.log.Debug("order submitted",
		zap.Int("bar", c.BarIndex),
		zap.Int("order", o.ID),
		zap.Stringer("side", o.Side),
		zap.Float64("size", o.Size),
		zap.String("reason", a.Reason),
	)
	return nil
}

func (r *runState) logOutcome(i int, out sim.Outcome) {
	if out.Order == nil {
		return
	}
	if out.Filled {
		r.log.Debug("order filled",
			zap.Int("bar", i),
			zap.Int("order", out.Order.ID),
			zap.Stringer("side", out.Order.Side),
			zap.Float64("size", out.FilledSize),
			zap.Float64("price", out.Order.FillPrice),
			zap.Float64("commission", out.Order.Commission),
		)
		for _, t := range out.Trades {
			r.log.Debug("trade closed", zap.Int("trade", t.ID), zap.Float64("pnl", t.PnL))
		}
		return
	}
	r.log.Debug("order rejected",
		zap.Int("bar", i),
		zap.Int("order", out.Order.ID),
		zap.Error(out.Rejection),
	)
}

func (e *Engine) periodsPerYear(s *market.Series) float64 {
	if e.cfg.PeriodsPerYear > 0 {
		return e.cfg.PeriodsPerYear
	}
	if ppy, err := market.PeriodsPerYear(s.Timeframe()); err == nil {
		return ppy
	}
	return analytics.DefaultPeriodsPerYear
}
