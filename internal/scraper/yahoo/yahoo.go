// Package yahoo implements a Source for Yahoo Finance: daily history from the
// CSV download endpoint (cookie + crumb authenticated) and key statistics
// scraped from the quote page.
package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
	"github.com/ahmethakanbesel/stockseries/internal/series"
)

const (
	defaultHistoryEndpoint    = "https://query1.finance.yahoo.com/v7/finance/download"
	defaultStatisticsEndpoint = "https://finance.yahoo.com/quote"
	defaultRateLimit          = 2 // requests per second
	userAgent                 = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var (
	_ scraper.Source    = (*Scraper)(nil)
	_ scraper.Refresher = (*Scraper)(nil)
)

// Scraper fetches history and statistics from Yahoo Finance.
type Scraper struct {
	client             *http.Client
	creds              scraper.CredentialProvider
	limiter            *rate.Limiter
	historyEndpoint    string
	statisticsEndpoint string
	loc                *time.Location
	now                func() time.Time
}

// New creates a Scraper with the given options applied. Without
// WithCredentials it owns a SessionProvider built on its HTTP client.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client:             &http.Client{Timeout: 30 * time.Second},
		limiter:            rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
		historyEndpoint:    defaultHistoryEndpoint,
		statisticsEndpoint: defaultStatisticsEndpoint,
		loc:                time.Local,
		now:                time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.creds == nil {
		s.creds = NewSessionProvider(WithSessionClient(s.client))
	}
	return s
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithCredentials sets the provider of the session cookie and crumb. Share
// one provider between scrapers to reuse a single session.
func WithCredentials(p scraper.CredentialProvider) Option {
	return func(s *Scraper) { s.creds = p }
}

// WithRateLimit caps upstream requests per second.
func WithRateLimit(requestsPerSecond int) Option {
	return func(s *Scraper) {
		if requestsPerSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithHistoryEndpoint overrides the history download endpoint.
func WithHistoryEndpoint(ep string) Option {
	return func(s *Scraper) { s.historyEndpoint = strings.TrimRight(ep, "/") }
}

// WithStatisticsEndpoint overrides the quote page root used for statistics.
func WithStatisticsEndpoint(ep string) Option {
	return func(s *Scraper) { s.statisticsEndpoint = strings.TrimRight(ep, "/") }
}

// WithLocation sets the zone whose midnight the period timestamps use.
func WithLocation(loc *time.Location) Option {
	return func(s *Scraper) { s.loc = loc }
}

// Name returns the source identifier.
func (s *Scraper) Name() string { return "yahoo" }

// Refresh re-acquires the session credentials.
func (s *Scraper) Refresh(ctx context.Context) error {
	_, err := s.creds.Refresh(ctx)
	return err
}

// History downloads the records for symbol between from and to.
func (s *Scraper) History(ctx context.Context, symbol string, from, to calendar.Date, interval scraper.Interval) ([]series.DailyRecord, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("start and end dates are required")
	}
	if from.After(to) {
		return nil, fmt.Errorf("start date cannot be after end date")
	}
	if interval == "" {
		interval = scraper.Daily
	}

	creds, err := s.creds.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("yahoo auth: %w", err)
	}

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(from.Unix(s.loc), 10))
	params.Set("period2", strconv.FormatInt(s.periodEnd(to), 10))
	params.Set("interval", string(interval))
	params.Set("events", "history")
	params.Set("crumb", creds.Crumb)

	reqURL := fmt.Sprintf("%s/%s?%s", s.historyEndpoint, url.PathEscape(symbol), params.Encode())

	body, err := s.get(ctx, reqURL, creds.Cookie)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty history for %s", scraper.ErrNoData, symbol)
	}

	records, err := parseHistoryCSV(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse yahoo history: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no trading days for %s", scraper.ErrNoData, symbol)
	}

	slog.Info("retrieved yahoo history", "symbol", symbol,
		"from", from.String(), "to", to.String(), "interval", string(interval),
		"count", len(records))

	return records, nil
}

// periodEnd is local midnight of to, or the current time when to is today or
// later so that the bar of the session in progress is included.
func (s *Scraper) periodEnd(to calendar.Date) int64 {
	now := s.now()
	if to.Before(calendar.FromTime(now.In(s.loc))) {
		return to.Unix(s.loc)
	}
	return now.Unix()
}

// Statistics scrapes the key-statistics page for symbol.
func (s *Scraper) Statistics(ctx context.Context, symbol string) (map[string]string, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}

	esc := url.PathEscape(symbol)
	reqURL := fmt.Sprintf("%s/%s/key-statistics?p=%s", s.statisticsEndpoint, esc, url.QueryEscape(symbol))

	body, err := s.get(ctx, reqURL, "")
	if err != nil {
		return nil, err
	}

	stats, err := extractStatistics(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	slog.Info("retrieved yahoo statistics", "symbol", symbol, "count", len(stats))
	return stats, nil
}

// get performs a rate-limited GET. 401 and 403 are reported as
// scraper.ErrUnauthorized; the cached session is left alone so the caller
// decides whether to refresh it.
func (s *Scraper) get(ctx context.Context, reqURL, cookie string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	res, err := s.client.Do(req) //nolint:gosec // URL built from internal config
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: yahoo returned HTTP %d", scraper.ErrUnauthorized, res.StatusCode)
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("yahoo returned HTTP %d for %s", res.StatusCode, req.URL.Path)
	}

	return io.ReadAll(res.Body)
}
