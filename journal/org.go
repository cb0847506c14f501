package journal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

var runOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
	"money": func(x float64) string { return fmt.Sprintf("%.2f", x) },
}

var runOrg = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

type orgView struct {
	RunRecord
	Trades []TradeRecord
}

// FormatRunOrg renders a run and its trades as an Org-mode entry.
func FormatRunOrg(run RunRecord, trades []TradeRecord) (string, error) {
	var buf bytes.Buffer
	if err := runOrg.Execute(&buf, orgView{RunRecord: run, Trades: trades}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteRunOrg writes the Org entry to dir/<run id>.org and returns the path.
func WriteRunOrg(dir string, run RunRecord, trades []TradeRecord) (string, error) {
	s, err := FormatRunOrg(run, trades)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, run.RunID+".org")
	return path, os.WriteFile(path, []byte(s), 0o644)
}

const RunOrgTemplate = `* BACKTEST: {{.Strategy}} {{.Symbol}} {{if .Timeframe}}{{.Timeframe}}{{else}}(timeframe?){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:TIMEFRAME:   {{if .Timeframe}}{{.Timeframe}}{{else}}(timeframe?){{end}}
:SYMBOL:      {{.Symbol}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{date .Start}}
:END_DATE:    {{date .End}}
:BARS:        {{.Bars}}
:START_BAL:   {{money .StartBalance}}
:END_BAL:     {{money .EndBalance}}
:NET_PL:      {{money .NetPL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:MAX_DD:      {{.Report.MaxDrawdown.Pct}}
:TRADES:      {{.RunRecord.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:WIN_RATE:    {{.Report.WinRate.Pct}}
:PROFIT_FAC:  {{.Report.ProfitFactor}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Configuration
#+begin_src json
{{printf "%s" .Config}}
#+end_src

** Performance Summary
- Net P/L:          *{{money .NetPL}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Annualized:       *{{.Report.AnnualizedReturn.Pct}}*
- Max Drawdown:     *{{.Report.MaxDrawdown.Pct}}*
- Sharpe:           *{{.Report.Sharpe}}*
- Sortino:          *{{.Report.Sortino}}*
- Win Rate:         *{{.Report.WinRate.Pct}}*
- Profit Factor:    *{{.Report.ProfitFactor}}*
- Commission:       *{{money .Commission}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.RunRecord.Trades}} |
{{- if .Trades}}

** Trades
| # | Side | Size | Entry | Exit | Opened | Closed | P/L |
|---+------+------+-------+------+--------+--------+-----|
{{- range .Trades}}
| {{.TradeID}} | {{.Side}} | {{printf "%g" .Size}} | {{printf "%.5f" .EntryPrice}} | {{printf "%.5f" .ExitPrice}} | {{date .EntryTime}} | {{date .ExitTime}} | {{money .RealizedPL}} |
{{- end}}
{{- end}}
{{- if .Notes}}

** Observations
{{- range .Notes}}
- {{.}}
{{- end}}
{{- end}}
{{- if .NextActions}}

** Notes / Next Actions
{{- range .NextActions}}
- [ ] {{.}}
{{- end}}
{{- end}}
`

// FormatTradeOrg renders one trade as an Org-mode block with its facts in
// a PROPERTIES drawer and empty review headings.
func FormatTradeOrg(t TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s #%d (%s)\n", t.Symbol, t.TradeID, shortID(t.RunID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":RUN_ID: %s\n", t.RunID)
	fmt.Fprintf(&b, ":TRADE_ID: %d\n", t.TradeID)
	fmt.Fprintf(&b, ":SYMBOL: %s\n", t.Symbol)
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Side)
	fmt.Fprintf(&b, ":SIZE: %g\n", t.Size)
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.5f\n", t.EntryPrice)
	fmt.Fprintf(&b, ":EXIT_PRICE: %.5f\n", t.ExitPrice)
	fmt.Fprintf(&b, ":OPEN_TIME: %s\n", t.EntryTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":CLOSE_TIME: %s\n", t.ExitTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":COMMISSION: %.2f\n", t.Commission)
	fmt.Fprintf(&b, ":REALIZED_PL: %.2f\n", t.RealizedPL)
	b.WriteString(":END:\n\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")
	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
