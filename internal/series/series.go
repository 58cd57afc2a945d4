package series

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
)

var (
	ErrEmptySeries  = errors.New("series has no records")
	ErrInvalidRange = errors.New("start date resolves after end date")
	ErrUnordered    = errors.New("records are not strictly increasing by date")
)

// Series is an immutable, date-ordered sequence of daily records together
// with its first-day-of-month index.
type Series struct {
	records []DailyRecord
	index   FirstDayIndex
}

// New copies records, checks they are strictly increasing by date and builds
// the first-day index.
func New(records []DailyRecord) (*Series, error) {
	cp := make([]DailyRecord, len(records))
	copy(cp, records)

	for i := 1; i < len(cp); i++ {
		if !cp[i-1].Date.Before(cp[i].Date) {
			return nil, fmt.Errorf("%w: %s at %d follows %s", ErrUnordered, cp[i].Date, i, cp[i-1].Date)
		}
	}

	return &Series{records: cp, index: BuildFirstDayIndex(cp)}, nil
}

// Len returns the number of records.
func (s *Series) Len() int { return len(s.records) }

// At returns the record at position i.
func (s *Series) At(i int) DailyRecord { return s.records[i] }

// Records returns a copy of all records, oldest first.
func (s *Series) Records() []DailyRecord {
	cp := make([]DailyRecord, len(s.records))
	copy(cp, s.records)
	return cp
}

// Index returns the first-day-of-month index.
func (s *Series) Index() FirstDayIndex { return s.index }

// First and Last return the boundary records; ok is false for an empty series.
func (s *Series) First() (DailyRecord, bool) {
	if len(s.records) == 0 {
		return DailyRecord{}, false
	}
	return s.records[0], true
}

func (s *Series) Last() (DailyRecord, bool) {
	if len(s.records) == 0 {
		return DailyRecord{}, false
	}
	return s.records[len(s.records)-1], true
}

// Resolve returns the position of the record dated d. When d is not a trading
// day the nearest preceding trading day is returned. Dates in months the
// index does not cover resolve to 0 if they precede the first record and to
// the last position otherwise.
func (s *Series) Resolve(d calendar.Date) (int, error) {
	if len(s.records) == 0 {
		return 0, ErrEmptySeries
	}
	last := len(s.records) - 1

	i, ok := s.index.LookupDate(d)
	if !ok {
		if d.Before(s.records[0].Date) {
			return 0, nil
		}
		return last, nil
	}

	// Forward probe from the month's first trading day; bounded by the
	// number of trading days in the month.
	for {
		switch calendar.Compare(s.records[i].Date, d) {
		case calendar.Before:
			if i == last {
				return i, nil
			}
			i++
		case calendar.After:
			if i == 0 {
				return 0, nil
			}
			return i - 1, nil
		default:
			return i, nil
		}
	}
}

// Day returns the record Resolve picks for d.
func (s *Series) Day(d calendar.Date) (DailyRecord, error) {
	i, err := s.Resolve(d)
	if err != nil {
		return DailyRecord{}, err
	}
	return s.records[i], nil
}

// Range returns the records from the position of start up to, but not
// including, the position of end.
func (s *Series) Range(start, end calendar.Date) ([]DailyRecord, error) {
	from, to, err := s.bounds(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]DailyRecord, to-from)
	copy(out, s.records[from:to])
	return out, nil
}

func (s *Series) bounds(start, end calendar.Date) (int, int, error) {
	from, err := s.Resolve(start)
	if err != nil {
		return 0, 0, err
	}
	to, err := s.Resolve(end)
	if err != nil {
		return 0, 0, err
	}
	if from > to {
		return 0, 0, fmt.Errorf("%w: %s (index %d) > %s (index %d)", ErrInvalidRange, start, from, end, to)
	}
	return from, to, nil
}

// FieldAt returns field f of the record Resolve picks for d.
func (s *Series) FieldAt(f Field, d calendar.Date) (decimal.Decimal, error) {
	r, err := s.Day(d)
	if err != nil {
		return decimal.Zero, err
	}
	return r.Value(f), nil
}

// FieldRange returns field f for every record Range(start, end) returns.
func (s *Series) FieldRange(f Field, start, end calendar.Date) ([]decimal.Decimal, error) {
	from, to, err := s.bounds(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, 0, to-from)
	for _, r := range s.records[from:to] {
		out = append(out, r.Value(f))
	}
	return out, nil
}
