// Package calendar provides a calendar date without time-of-day or timezone,
// and the ordering used by every date decision in the series index.
package calendar

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Order is the result of comparing two dates.
type Order int

const (
	Before Order = -1
	Equal  Order = 0
	After  Order = 1
)

func (o Order) String() string {
	switch o {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return "equal"
	}
}

// Date is a (year, month, day) triple.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the date for the given year, month and day.
func New(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// FromTime drops the time-of-day from t, keeping its calendar date in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the local calendar date of now.
func Today(now time.Time) Date {
	return FromTime(now.Local())
}

// Compare reports whether a is Before, Equal to or After b.
// Year dominates, then month, then day.
func Compare(a, b Date) Order {
	switch {
	case a.Year != b.Year:
		return sign(a.Year - b.Year)
	case a.Month != b.Month:
		return sign(int(a.Month) - int(b.Month))
	default:
		return sign(a.Day - b.Day)
	}
}

func sign(n int) Order {
	switch {
	case n < 0:
		return Before
	case n > 0:
		return After
	default:
		return Equal
	}
}

func (d Date) Compare(o Date) Order { return Compare(d, o) }
func (d Date) Before(o Date) bool   { return Compare(d, o) == Before }
func (d Date) After(o Date) bool    { return Compare(d, o) == After }
func (d Date) Equal(o Date) bool    { return Compare(d, o) == Equal }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Unix returns the Unix timestamp of midnight of d in loc, the same value
// mktime produces for a local date.
func (d Date) Unix(loc *time.Location) int64 {
	return d.Time(loc).Unix()
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(layout, string(b))
	if err != nil {
		return &ParseError{Input: string(b), Reason: err.Error()}
	}
	*d = FromTime(t)
	return nil
}
