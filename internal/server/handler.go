package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ahmethakanbesel/stockseries/internal/apperror"
	"github.com/ahmethakanbesel/stockseries/internal/calendar"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
	"github.com/ahmethakanbesel/stockseries/internal/series"
	"github.com/ahmethakanbesel/stockseries/internal/stats"
	"github.com/ahmethakanbesel/stockseries/internal/stock"
)

const defaultSource = "yahoo"

type handler struct {
	svc *stock.Service
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListSources())
}

// query holds the parameters shared by the stock endpoints. from/to select
// what is fetched, date/endDate what is returned from it.
type query struct {
	load    stock.LoadRequest
	date    calendar.Date
	endDate calendar.Date
	format  string
}

func parseQuery(r *http.Request) (query, error) {
	v := r.URL.Query()

	q := query{
		load: stock.LoadRequest{
			Source:   v.Get("source"),
			Symbol:   strings.ToUpper(r.PathValue("symbol")),
			Interval: scraper.Interval(v.Get("interval")),
		},
		format: v.Get("format"),
	}
	if q.load.Source == "" {
		q.load.Source = defaultSource
	}
	if q.format != "" && q.format != "json" && q.format != "csv" {
		return query{}, apperror.New(apperror.BadRequest, "format must be json or csv")
	}

	for _, p := range []struct {
		key string
		dst *calendar.Date
	}{
		{"from", &q.load.From},
		{"to", &q.load.To},
		{"date", &q.date},
		{"endDate", &q.endDate},
	} {
		d, err := parseDate(v, p.key)
		if err != nil {
			return query{}, err
		}
		*p.dst = d
	}

	return q, nil
}

func parseDate(v url.Values, key string) (calendar.Date, error) {
	s := v.Get(key)
	if s == "" {
		return calendar.Date{}, nil
	}
	d, err := calendar.Parse(s)
	if err != nil {
		return calendar.Date{}, apperror.New(apperror.BadRequest, fmt.Sprintf("invalid %s: %v", key, err))
	}
	return d, nil
}

// days selects records from st. Without date or endDate the whole fetched
// series is returned; with only date the single resolved day; with endDate
// the end-exclusive range starting at date, or at the first record.
func (q query) days(st *stock.Stock) ([]series.DailyRecord, error) {
	switch {
	case !q.endDate.IsZero():
		start := q.date
		if start.IsZero() {
			first, _ := st.Series().First()
			start = first.Date
		}
		return st.DayRange(start, q.endDate)
	case !q.date.IsZero():
		d, err := st.DayInfo(q.date)
		if err != nil {
			return nil, err
		}
		return []series.DailyRecord{d}, nil
	default:
		return st.Series().Records(), nil
	}
}

func (h *handler) getDays(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	st, err := h.svc.Load(r.Context(), q.load)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	days, err := q.days(st)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if q.format == "csv" {
		writeDaysCSV(w, st.Ticker(), days)
		return
	}

	writeJSON(w, http.StatusOK, daysResponse{
		Symbol:   st.Ticker(),
		Source:   q.load.Source,
		Interval: st.Interval(),
		Days:     days,
	})
}

func (h *handler) getField(w http.ResponseWriter, r *http.Request) {
	field, err := series.ParseField(r.PathValue("field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	st, err := h.svc.Load(r.Context(), q.load)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	days, err := q.days(st)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	points := make([]fieldPoint, len(days))
	for i, d := range days {
		points[i] = fieldPoint{Date: d.Date, Value: d.Value(field)}
	}

	if q.format == "csv" {
		writeFieldCSV(w, st.Ticker(), field, points)
		return
	}

	writeJSON(w, http.StatusOK, fieldResponse{
		Symbol: st.Ticker(),
		Field:  field.String(),
		Values: points,
	})
}

func (h *handler) listStatistics(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	st, err := h.svc.Load(r.Context(), q.load)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Labels the source did not publish are left out; a published N/A is null.
	store := st.Statistics()
	key := make(map[string]stats.Value, len(stats.Named))
	for name, label := range stats.Named {
		if v, err := store.Get(label); err == nil {
			key[name] = v
		}
	}

	writeJSON(w, http.StatusOK, statisticsResponse{
		Symbol:     st.Ticker(),
		Key:        key,
		Statistics: store.All(),
	})
}

func (h *handler) getStatistic(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	label, ok := stats.Named[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown statistic %q", name))
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	st, err := h.svc.Load(r.Context(), q.load)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	v, err := st.Statistics().Get(label)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statisticResponse{
		Symbol: st.Ticker(),
		Name:   name,
		Label:  label,
		Value:  v,
	})
}

// toAppError maps domain errors onto transport codes. Upstream failures are
// checked first since they may wrap parse errors from the fetched payload.
func toAppError(err error) *apperror.AppError {
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		return ae
	}

	var pe *calendar.ParseError
	switch {
	case errors.Is(err, stock.ErrFetchFailed),
		errors.Is(err, scraper.ErrCredentialUnavailable),
		errors.Is(err, scraper.ErrUnauthorized):
		return apperror.New(apperror.Upstream, err.Error())
	case errors.As(err, &pe), errors.Is(err, series.ErrInvalidRange):
		return apperror.New(apperror.BadRequest, err.Error())
	case errors.Is(err, stats.ErrNotFound), errors.Is(err, series.ErrEmptySeries):
		return apperror.New(apperror.NotFound, err.Error())
	}

	slog.Error("unhandled error", "error", err)
	return apperror.New(apperror.Internal, "internal server error")
}

func writeServiceError(w http.ResponseWriter, err error) {
	ae := toAppError(err)
	writeError(w, ae.HTTPStatus(), ae.Message())
}
