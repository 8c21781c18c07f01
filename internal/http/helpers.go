package http

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"opsboard/internal/core"
)

// amountFormatter renders money with locale grouping and a fixed currency suffix.
type amountFormatter struct {
	printer *message.Printer
	suffix  string
}

func newAmountFormatter(tag language.Tag, suffix string) amountFormatter {
	if tag == language.Und {
		tag = language.English
	}
	return amountFormatter{printer: message.NewPrinter(tag), suffix: strings.TrimSpace(suffix)}
}

func (f amountFormatter) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s := f.printer.Sprintf("%.2f", v)
	if f.suffix == "" {
		return s
	}
	return s + " " + f.suffix
}

// Count formats an integer with locale grouping.
func (f amountFormatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}

// barWidth scales count against max as a rounded percentage. Non-zero values get at
// least 2% so they stay visible.
func barWidth(count, max int) int {
	if max <= 0 || count <= 0 {
		return 0
	}
	width := (count*100 + max/2) / max
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

type chartRow struct {
	Label string
	Count int
	Width int
}

type chartView struct {
	Title string
	Total int
	Rows  []chartRow
}

func newChartView(title string, series core.ChartSeries) chartView {
	max := series.Max()
	v := chartView{Title: title, Total: series.Total(), Rows: make([]chartRow, 0, len(series))}
	for _, e := range series {
		label := e.Label
		if label == "" {
			label = "(none)"
		}
		v.Rows = append(v.Rows, chartRow{Label: label, Count: e.Count, Width: barWidth(e.Count, max)})
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
