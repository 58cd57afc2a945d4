// Package stock builds a ticker's price history and key statistics from a
// Source and answers date lookups against them.
package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
	"github.com/ahmethakanbesel/stockseries/internal/series"
	"github.com/ahmethakanbesel/stockseries/internal/stats"
)

// ErrFetchFailed wraps every failure to obtain a usable history or
// statistics page while building a Stock.
var ErrFetchFailed = errors.New("fetch failed")

// Stock is a ticker's history and statistics, fetched once at construction
// and read-only afterwards.
type Stock struct {
	ticker   string
	interval scraper.Interval
	from, to calendar.Date
	series   *series.Series
	stats    *stats.Store
	now      func() time.Time
}

type options struct {
	from, to calendar.Date
	interval scraper.Interval
	now      func() time.Time
}

// Option configures New.
type Option func(*options)

// WithRange requests history between from and to. If either is zero the
// year to date is fetched.
func WithRange(from, to calendar.Date) Option {
	return func(o *options) { o.from, o.to = from, to }
}

// WithInterval sets the record spacing. Defaults to daily.
func WithInterval(i scraper.Interval) Option {
	return func(o *options) {
		if i != "" {
			o.interval = i
		}
	}
}

// WithClock replaces time.Now for the year-to-date default and for lookups
// without a date.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New fetches the history and then the statistics of ticker from src. Both
// fetches complete before New returns; a failure of either is reported as
// ErrFetchFailed.
func New(ctx context.Context, src scraper.Source, ticker string, opts ...Option) (*Stock, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker cannot be empty")
	}

	o := options{interval: scraper.Daily, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	from, to := o.from, o.to
	if from.IsZero() || to.IsZero() {
		to = calendar.Today(o.now())
		from = calendar.New(to.Year, time.January, 1)
	}

	records, err := src.History(ctx, ticker, from, to, o.interval)
	if err != nil {
		return nil, fmt.Errorf("%w: %s history: %w", ErrFetchFailed, ticker, err)
	}

	ser, err := series.New(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %s history: %w", ErrFetchFailed, ticker, err)
	}
	if ser.Len() == 0 {
		return nil, fmt.Errorf("%w: %s history: %w", ErrFetchFailed, ticker, scraper.ErrNoData)
	}

	raw, err := src.Statistics(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: %s statistics: %w", ErrFetchFailed, ticker, err)
	}
	if len(raw) == 0 {
		slog.Warn("no statistics published", "ticker", ticker, "source", src.Name())
	}

	s := &Stock{
		ticker:   ticker,
		interval: o.interval,
		from:     from,
		to:       to,
		series:   ser,
		stats:    stats.NewStore(raw),
		now:      o.now,
	}

	slog.Info("created stock", "ticker", ticker, "source", src.Name(),
		"from", from.String(), "to", to.String(), "records", ser.Len(), "statistics", s.stats.Len())

	return s, nil
}

func (s *Stock) Ticker() string                   { return s.ticker }
func (s *Stock) Interval() scraper.Interval       { return s.interval }
func (s *Stock) Period() (from, to calendar.Date) { return s.from, s.to }
func (s *Stock) Series() *series.Series           { return s.series }
func (s *Stock) Statistics() *stats.Store         { return s.stats }

// orToday substitutes today's date for a zero date.
func (s *Stock) orToday(d calendar.Date) calendar.Date {
	if d.IsZero() {
		return calendar.Today(s.now())
	}
	return d
}

// DayInfo returns the trading day for d, or the nearest preceding one. A zero
// d means today.
func (s *Stock) DayInfo(d calendar.Date) (series.DailyRecord, error) {
	return s.series.Day(s.orToday(d))
}

// DayRange returns the trading days from start up to, not including, the
// day end resolves to.
func (s *Stock) DayRange(start, end calendar.Date) ([]series.DailyRecord, error) {
	return s.series.Range(s.orToday(start), end)
}

// Field returns one field of the trading day for d.
func (s *Stock) Field(f series.Field, d calendar.Date) (decimal.Decimal, error) {
	return s.series.FieldAt(f, s.orToday(d))
}

// FieldRange returns one field of every record DayRange returns.
func (s *Stock) FieldRange(f series.Field, start, end calendar.Date) ([]decimal.Decimal, error) {
	return s.series.FieldRange(f, s.orToday(start), end)
}

func (s *Stock) Open(d calendar.Date) (decimal.Decimal, error)     { return s.Field(series.Open, d) }
func (s *Stock) High(d calendar.Date) (decimal.Decimal, error)     { return s.Field(series.High, d) }
func (s *Stock) Low(d calendar.Date) (decimal.Decimal, error)      { return s.Field(series.Low, d) }
func (s *Stock) Close(d calendar.Date) (decimal.Decimal, error)    { return s.Field(series.Close, d) }
func (s *Stock) AdjClose(d calendar.Date) (decimal.Decimal, error) { return s.Field(series.AdjClose, d) }

func (s *Stock) Volume(d calendar.Date) (int64, error) {
	r, err := s.DayInfo(d)
	if err != nil {
		return 0, err
	}
	return r.Volume, nil
}

func (s *Stock) OpenRange(start, end calendar.Date) ([]decimal.Decimal, error) {
	return s.FieldRange(series.Open, start, end)
}

func (s *Stock) HighRange(start, end calendar.Date) ([]decimal.Decimal, error) {
	return s.FieldRange(series.High, start, end)
}

func (s *Stock) LowRange(start, end calendar.Date) ([]decimal.Decimal, error) {
	return s.FieldRange(series.Low, start, end)
}

func (s *Stock) CloseRange(start, end calendar.Date) ([]decimal.Decimal, error) {
	return s.FieldRange(series.Close, start, end)
}

func (s *Stock) AdjCloseRange(start, end calendar.Date) ([]decimal.Decimal, error) {
	return s.FieldRange(series.AdjClose, start, end)
}

func (s *Stock) VolumeRange(start, end calendar.Date) ([]int64, error) {
	days, err := s.DayRange(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(days))
	for i, d := range days {
		out[i] = d.Volume
	}
	return out, nil
}

func (s *Stock) MarketCap() (stats.Value, error)       { return s.stats.MarketCap() }
func (s *Stock) AvgVolume10Day() (stats.Value, error)  { return s.stats.AvgVolume10Day() }
func (s *Stock) AvgVolume3Month() (stats.Value, error) { return s.stats.AvgVolume3Month() }
func (s *Stock) PERatio() (stats.Value, error)         { return s.stats.TrailingPE() }
func (s *Stock) EPS() (stats.Value, error)             { return s.stats.DilutedEPS() }
func (s *Stock) Beta() (stats.Value, error)            { return s.stats.Beta() }
