package journal

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nWish8/Sandbox/analytics"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	report, err := json.Marshal(r.Report)
	if err != nil {
		return err
	}
	_, err = j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, symbol, timeframe, dataset, start_time, end_time, bars, config,
		 start_balance, end_balance, net_pl, commission, trades, wins, losses,
		 max_drawdown, sharpe, profit_factor, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, r.Symbol, r.Timeframe, r.Dataset, r.Start, r.End, r.Bars, string(r.Config),
		r.StartBalance, r.EndBalance, r.NetPL, r.Commission, r.Trades, r.Wins, r.Losses,
		nullable(r.Report.MaxDrawdown), nullable(r.Report.Sharpe), nullable(r.Report.ProfitFactor), string(report),
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, trade_id, symbol, side, size, entry_price, exit_price, entry_time, exit_time, commission, realized_pl, pnl_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.TradeID, t.Symbol, t.Side, t.Size, t.EntryPrice, t.ExitPrice,
		t.EntryTime, t.ExitTime, t.Commission, t.RealizedPL, t.PnLPct,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, bar, time, cash, position_size, mark_price, equity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Bar, e.Time, e.Cash, e.PositionSize, e.MarkPrice, e.Equity,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// nullable stores an n/a metric as NULL.
func nullable(m analytics.Metric) sql.NullFloat64 {
	return sql.NullFloat64{Float64: m.Value, Valid: m.Valid}
}
