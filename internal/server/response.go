package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
	"github.com/ahmethakanbesel/stockseries/internal/series"
	"github.com/ahmethakanbesel/stockseries/internal/stats"
)

type APIResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type daysResponse struct {
	Symbol   string               `json:"symbol"`
	Source   string               `json:"source"`
	Interval scraper.Interval     `json:"interval"`
	Days     []series.DailyRecord `json:"days"`
}

type fieldPoint struct {
	Date  calendar.Date   `json:"date"`
	Value decimal.Decimal `json:"value"`
}

type fieldResponse struct {
	Symbol string       `json:"symbol"`
	Field  string       `json:"field"`
	Values []fieldPoint `json:"values"`
}

type statisticsResponse struct {
	Symbol     string                 `json:"symbol"`
	Key        map[string]stats.Value `json:"key"`
	Statistics map[string]stats.Value `json:"statistics"`
}

type statisticResponse struct {
	Symbol string      `json:"symbol"`
	Name   string      `json:"name"`
	Label  string      `json:"label"`
	Value  stats.Value `json:"value"`
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[T]{
		Message: "ok",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[string]{
		Message: message,
		Data:    "",
	})
}

func writeDaysCSV(w http.ResponseWriter, symbol string, days []series.DailyRecord) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", symbol))
	w.WriteHeader(http.StatusOK)

	_, _ = fmt.Fprintln(w, "Date,Open,High,Low,Close,Adj Close,Volume")
	for _, d := range days {
		_, _ = fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%d\n", //nolint:gosec // CSV output from internal domain types, not user input
			d.Date,
			d.Open.StringFixed(2),
			d.High.StringFixed(2),
			d.Low.StringFixed(2),
			d.Close.StringFixed(2),
			d.AdjClose.StringFixed(2),
			d.Volume,
		)
	}
}

func writeFieldCSV(w http.ResponseWriter, symbol string, field series.Field, points []fieldPoint) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.csv", symbol, field))
	w.WriteHeader(http.StatusOK)

	_, _ = fmt.Fprintf(w, "Date,%s\n", field)
	for _, p := range points {
		v := p.Value.String()
		if field != series.Volume {
			v = p.Value.StringFixed(2)
		}
		_, _ = fmt.Fprintf(w, "%s,%s\n", p.Date, v) //nolint:gosec // CSV output from internal domain types, not user input
	}
}
