package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// dateRe matches year-first dates. Go's regexp has no backreferences, so the
// two separators are captured separately and compared in Parse.
var dateRe = regexp.MustCompile(`^(\d{4})([./-])(\d{1,2})([./-])(\d{1,2})`)

// ParseError is returned for text that does not hold a valid date.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %s", e.Input, e.Reason)
}

// Parse reads a date written as year, month and day joined by a single
// separator, one of '.', '-' or '/' (e.g. "1990-01-15", "1990/1/15").
// Mixed separators are rejected. Text after the day is ignored so
// timestamps such as "2017-01-03 00:00:00" are accepted.
func Parse(s string) (Date, error) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return Date{}, &ParseError{Input: s, Reason: "expected YYYY-MM-DD, YYYY/MM/DD or YYYY.MM.DD"}
	}
	if m[2] != m[4] {
		return Date{}, &ParseError{Input: s, Reason: "mixed separators"}
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[5])

	if month < 1 || month > 12 {
		return Date{}, &ParseError{Input: s, Reason: "month out of range"}
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || t.Day() != day {
		return Date{}, &ParseError{Input: s, Reason: "day out of range"}
	}

	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}
