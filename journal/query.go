package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned for an unknown run ID.
var ErrNotFound = errors.New("not found")

const runColumns = `run_id, created, strategy, symbol, timeframe, dataset, start_time, end_time, bars, config,
	start_balance, end_balance, net_pl, commission, trades, wins, losses, report`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var (
		r      RunRecord
		config string
		report string
	)
	err := s.Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Symbol, &r.Timeframe, &r.Dataset,
		&r.Start, &r.End, &r.Bars, &config,
		&r.StartBalance, &r.EndBalance, &r.NetPL, &r.Commission,
		&r.Trades, &r.Wins, &r.Losses, &report,
	)
	if err != nil {
		return RunRecord{}, err
	}
	r.Config = []byte(config)
	if err := json.Unmarshal([]byte(report), &r.Report); err != nil {
		return RunRecord{}, fmt.Errorf("run %s: decode report: %w", r.RunID, err)
	}
	return r, nil
}

// GetRun returns one run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	return r, err
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (j *SQLite) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY created DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTradesByRunID returns the trades of a run in close order.
func (j *SQLite) ListTradesByRunID(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, trade_id, symbol, side, size, entry_price, exit_price, entry_time, exit_time, commission, realized_pl, pnl_pct
		FROM trades
		WHERE run_id = ?
		ORDER BY trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.TradeID,
			&rec.Symbol,
			&rec.Side,
			&rec.Size,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.EntryTime,
			&rec.ExitTime,
			&rec.Commission,
			&rec.RealizedPL,
			&rec.PnLPct,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRunID returns a run's equity curve in bar order.
func (j *SQLite) ListEquityByRunID(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, bar, time, cash, position_size, mark_price, equity
		FROM equity
		WHERE run_id = ?
		ORDER BY bar ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var rec EquityRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Bar,
			&rec.Time,
			&rec.Cash,
			&rec.PositionSize,
			&rec.MarkPrice,
			&rec.Equity,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportRunOrg loads a run and its trades and renders the Org report.
func (j *SQLite) ExportRunOrg(runID string) (string, error) {
	run, err := j.GetRun(runID)
	if err != nil {
		return "", err
	}
	trades, err := j.ListTradesByRunID(runID)
	if err != nil {
		return "", err
	}
	return FormatRunOrg(run, trades)
}
