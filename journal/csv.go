package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var (
	runsHeader   = []string{"run_id", "strategy", "symbol", "timeframe", "start", "end", "bars", "start_balance", "end_balance", "net_pl", "trades", "wins", "losses"}
	tradesHeader = []string{"run_id", "trade_id", "symbol", "side", "size", "entry_price", "exit_price", "entry_time", "exit_time", "commission", "realized_pl", "pnl_pct"}
	equityHeader = []string{"run_id", "bar", "time", "cash", "position_size", "mark_price", "equity"}
)

// CSVJournal writes runs.csv, trades.csv and equity.csv into a directory.
type CSVJournal struct {
	runs, trades, equity *csv.Writer
	files                []*os.File
}

func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	j := &CSVJournal{}
	open := func(name string, header []string) (*csv.Writer, error) {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.runs, err = open("runs.csv", runsHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.trades, err = open("trades.csv", tradesHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.equity, err = open("equity.csv", equityHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	return write(j.runs, []string{
		r.RunID,
		r.Strategy,
		r.Symbol,
		r.Timeframe,
		r.Start.Format(time.RFC3339),
		r.End.Format(time.RFC3339),
		strconv.Itoa(r.Bars),
		f(r.StartBalance),
		f(r.EndBalance),
		f(r.NetPL),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
	})
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return write(j.trades, []string{
		t.RunID,
		strconv.Itoa(t.TradeID),
		t.Symbol,
		t.Side,
		f(t.Size),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.EntryTime.Format(time.RFC3339),
		t.ExitTime.Format(time.RFC3339),
		f(t.Commission),
		f(t.RealizedPL),
		f(t.PnLPct),
	})
}

func (j *CSVJournal) RecordEquity(e EquityRecord) error {
	return write(j.equity, []string{
		e.RunID,
		strconv.Itoa(e.Bar),
		e.Time.Format(time.RFC3339),
		f(e.Cash),
		f(e.PositionSize),
		f(e.MarkPrice),
		f(e.Equity),
	})
}

func (j *CSVJournal) Close() error {
	for _, w := range []*csv.Writer{j.runs, j.trades, j.equity} {
		w.Flush()
		if err := w.Error(); err != nil {
			j.closeFiles()
			return err
		}
	}
	return j.closeFiles()
}

func (j *CSVJournal) closeFiles() error {
	var first error
	for _, fh := range j.files {
		if err := fh.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = nil
	return first
}

func write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
