package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
	"github.com/ahmethakanbesel/stockseries/internal/series"
	"github.com/ahmethakanbesel/stockseries/internal/stats"
	"github.com/ahmethakanbesel/stockseries/internal/stock"
)

// --- fake source ---
type fakeSource struct {
	records    []series.DailyRecord
	statistics map[string]string
	historyErr error
	panics     bool
}

func (f *fakeSource) Name() string { return "yahoo" }

func (f *fakeSource) History(_ context.Context, _ string, _, _ calendar.Date, _ scraper.Interval) ([]series.DailyRecord, error) {
	if f.panics {
		panic("boom")
	}
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.records, nil
}

func (f *fakeSource) Statistics(context.Context, string) (map[string]string, error) {
	return f.statistics, nil
}

func day(t *testing.T, date string, price float64, volume int64) series.DailyRecord {
	t.Helper()
	p := decimal.NewFromFloat(price)
	r, err := series.NewRecord(calendar.MustParse(date), p, p, p, p, p, volume)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func newFakeSource(t *testing.T) *fakeSource {
	t.Helper()
	return &fakeSource{
		records: []series.DailyRecord{
			day(t, "2017-01-03", 116.15, 100),
			day(t, "2017-01-04", 116.02, 200),
			day(t, "2017-02-01", 128.75, 300),
			day(t, "2017-02-02", 128.53, 400),
		},
		statistics: map[string]string{
			stats.LabelMarketCap: "2.87T",
			stats.LabelBeta:      "N/A",
			"Ex-Dividend Date":   "Feb 9, 2017",
		},
	}
}

func newTestServer(t *testing.T, src scraper.Source) *httptest.Server {
	t.Helper()
	reg := scraper.NewRegistry()
	reg.Register(src)
	svc := stock.NewService(reg)
	svc.SetClock(func() time.Time { return time.Date(2017, time.March, 1, 12, 0, 0, 0, time.UTC) })

	srv := httptest.NewServer(NewHandler(svc))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	res, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer func() { _ = res.Body.Close() }()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, body
}

func decode[T any](t *testing.T, body []byte) APIResponse[T] {
	t.Helper()
	var out APIResponse[T]
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, newFakeSource(t))

	res, body := get(t, srv, "/health")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if got := decode[map[string]string](t, body).Data["status"]; got != "ok" {
		t.Errorf("expected status ok, got %q", got)
	}
	if res.Header.Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, newFakeSource(t))

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = res.Body.Close()

	if got := res.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected abc-123, got %q", got)
	}
}

func TestListSources(t *testing.T) {
	srv := newTestServer(t, newFakeSource(t))

	_, body := get(t, srv, "/api/v1/sources")
	got := decode[[]string](t, body).Data
	if len(got) != 1 || got[0] != "yahoo" {
		t.Errorf("expected [yahoo], got %v", got)
	}
}

func TestGetDays(t *testing.T) {
	srv := newTestServer(t, newFakeSource(t))

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"whole series", "", []string{"2017-01-03", "2017-01-04", "2017-02-01", "2017-02-02"}},
		{"exact day", "?date=2017-01-04", []string{"2017-01-04"}},
		{"weekend resolves back", "?date=2017-01-07", []string{"2017-01-04"}},
		{"before first record", "?date=2016-12-01", []string{"2017-01-03"}},
		{"range", "?date=2017-01-03&endDate=2017-02-02", []string{"2017-01-03", "2017-01-04", "2017-02-01"}},
		{"range from first record", "?endDate=2017-02-01", []string{"2017-01-03", "2017-01-04"}},
		{"slash separators", "?date=2017/1/4", []string{"2017-01-04"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := get(t, srv, "/api/v1/stocks/aapl/days"+tt.query)
			if res.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", res.StatusCode, body)
			}

			data := decode[daysResponse](t, body).Data
			if data.Symbol != "AAPL" {
				t.Errorf("expected symbol AAPL, got %s", data.Symbol)
			}
			if data.Interval != scraper.Daily {
				t.Errorf("expected daily interval, got %s", data.Interval)
			}
			if len(data.Days) != len(tt.want) {
				t.Fatalf("expected %d days, got %d", len(tt.want), len(data.Days))
			}
			for i, d := range data.Days {
				if d.Date.String() != tt.want[i] {
					t.Errorf("day %d: expected %s, got %s", i, tt.want[i], d.Date)
				}
			}
		})
	}
}

func TestGetDaysCSV(t *testing.T) {
	srv := newTestServer(t, newFakeSource(t))

	res, body := get(t, srv, "/api/v1/stocks/AAPL/days?date=2017-01-03&endDate=2017-02-01&format=csv")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %s", ct)
	}

	want := "Date,Open,High,Low,Close,Adj Close,Volume\n" +
		"2017-01-03,116.15,116.15,116.15,116.15,116.15,100\n" +
		"2017-01-04,116.02,116.02,116.02,116.02,116.02,200\n"
	if string(body) != want {
		t.Errorf("unexpected CSV:\n%s", body)
	}
}

func TestGetField(t *testing.T) {
	srv := newTestServer(t, newFakeSource(t))

	res, body := get(t, srv, "/api/v1/stocks/AAPL/fields/close?date=2017-02-01&endDate=2017-03-01")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.StatusCode, body)
	}

	data := decode[fieldResponse](t, body).Data
	if data.Field != "close" {
		t.Errorf("expected field close, got %s", data.Field)
	}
	// The end date resolves to the last record, which the range excludes.
	if len(data.Values) != 1 {
		t.Fatalf("expected 1 value, got %d", len(data.Values))
	}
	if data.Values[0].Value.StringFixed(2) != "128.75" {
		t.Errorf("expected 128.75, got %s", data.Values[0].Value)
	}
}

func TestGetFieldVolumeCSV(t *testing.T) {
	srv := newTestServer(t, newFakeSource(t))

	_, body := get(t, srv, "/api/v1/stocks/AAPL/fields/volume?format=csv")
	want := "Date,volume\n2017-01-03,100\n2017-01-04,200\n2017-02-01,300\n2017-02-02,400\n"
	if string(body) != want {
		t.Errorf("unexpected CSV:\n%s", body)
	}
}

func TestStatistics(t *testing.T) {
	srv := newTestServer(t, newFakeSource(t))

	res, body := get(t, srv, "/api/v1/stocks/AAPL/statistics")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var out APIResponse[struct {
		Symbol     string                     `json:"symbol"`
		Key        map[string]json.RawMessage `json:"key"`
		Statistics map[string]json.RawMessage `json:"statistics"`
	}]
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}

	if got := string(out.Data.Key["marketCap"]); got != `"2870000000000"` {
		t.Errorf("unexpected marketCap %s", got)
	}
	if got := string(out.Data.Key["beta"]); got != "null" {
		t.Errorf("expected null beta, got %s", got)
	}
	if got, ok := out.Data.Key["trailingPE"]; ok {
		t.Errorf("expected unpublished trailingPE to be absent, got %s", got)
	}
	if len(out.Data.Key) != 2 {
		t.Errorf("expected 2 key statistics, got %d", len(out.Data.Key))
	}
	if got := string(out.Data.Statistics["Ex-Dividend Date"]); got != `"2017-02-09"` {
		t.Errorf("unexpected ex-dividend date %s", got)
	}
}

func TestGetStatistic(t *testing.T) {
	srv := newTestServer(t, newFakeSource(t))

	res, body := get(t, srv, "/api/v1/stocks/AAPL/statistics/marketCap")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var out APIResponse[struct {
		Label string          `json:"label"`
		Value json.RawMessage `json:"value"`
	}]
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Data.Label != stats.LabelMarketCap {
		t.Errorf("unexpected label %s", out.Data.Label)
	}
	if string(out.Data.Value) != `"2870000000000"` {
		t.Errorf("unexpected value %s", out.Data.Value)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeSource)
		path   string
		status int
	}{
		{"malformed date", nil, "/api/v1/stocks/AAPL/days?date=2017-01/04", http.StatusBadRequest},
		{"reversed fetch range", nil, "/api/v1/stocks/AAPL/days?from=2017-02-01&to=2017-01-01", http.StatusBadRequest},
		{"reversed lookup range", nil, "/api/v1/stocks/AAPL/days?date=2017-02-02&endDate=2017-01-03", http.StatusBadRequest},
		{"bad interval", nil, "/api/v1/stocks/AAPL/days?interval=hourly", http.StatusBadRequest},
		{"bad format", nil, "/api/v1/stocks/AAPL/days?format=xml", http.StatusBadRequest},
		{"unknown source", nil, "/api/v1/stocks/AAPL/days?source=tefas", http.StatusBadRequest},
		{"unknown field", nil, "/api/v1/stocks/AAPL/fields/dividend", http.StatusBadRequest},
		{"unknown statistic", nil, "/api/v1/stocks/AAPL/statistics/pegRatio", http.StatusNotFound},
		{"unpublished statistic", nil, "/api/v1/stocks/AAPL/statistics/dilutedEPS", http.StatusNotFound},
		{"upstream failure", func(f *fakeSource) { f.historyErr = errors.New("connection refused") }, "/api/v1/stocks/AAPL/days", http.StatusBadGateway},
		{"credentials unavailable", func(f *fakeSource) { f.historyErr = scraper.ErrCredentialUnavailable }, "/api/v1/stocks/AAPL/days", http.StatusBadGateway},
		{"no data", func(f *fakeSource) { f.records = nil }, "/api/v1/stocks/AAPL/days", http.StatusBadGateway},
		{"panic", func(f *fakeSource) { f.panics = true }, "/api/v1/stocks/AAPL/days", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource(t)
			if tt.mutate != nil {
				tt.mutate(src)
			}
			srv := newTestServer(t, src)

			res, body := get(t, srv, tt.path)
			if res.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, res.StatusCode, body)
			}
			if msg := decode[string](t, body).Message; strings.TrimSpace(msg) == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestToAppErrorPrefersUpstream(t *testing.T) {
	_, parseErr := calendar.Parse("garbage")
	err := errors.Join(stock.ErrFetchFailed, parseErr)

	if got := toAppError(err).HTTPStatus(); got != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", got)
	}
	if got := toAppError(parseErr).HTTPStatus(); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
	if got := toAppError(errors.New("other")).HTTPStatus(); got != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got)
	}
}
