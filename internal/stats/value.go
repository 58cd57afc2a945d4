// Package stats parses and stores the key statistics published for a ticker.
package stats

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
)

// Kind tells which field of a Value is meaningful.
type Kind int

const (
	Null Kind = iota
	Number
	Date
	Text
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Date:
		return "date"
	case Text:
		return "text"
	default:
		return "null"
	}
}

// Value is one parsed statistic.
type Value struct {
	Kind   Kind
	Number decimal.Decimal
	Date   calendar.Date
	Text   string
}

func (v Value) IsNull() bool { return v.Kind == Null }

// Float returns the number as a float64; ok is false for non-numbers.
func (v Value) Float() (f float64, ok bool) {
	if v.Kind != Number {
		return 0, false
	}
	f, _ = v.Number.Float64()
	return f, true
}

func (v Value) String() string {
	switch v.Kind {
	case Number:
		return v.Number.String()
	case Date:
		return v.Date.String()
	case Text:
		return v.Text
	default:
		return notApplicable
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Number:
		return json.Marshal(v.Number)
	case Date:
		return json.Marshal(v.Date)
	case Text:
		return json.Marshal(v.Text)
	default:
		return []byte("null"), nil
	}
}

const notApplicable = "N/A"

var (
	numberRe = regexp.MustCompile(`^([-+]?\d[\d,]*(?:\.\d+)?)([MBTk%]?)(?:\s|$)`)
	dateRe   = regexp.MustCompile(`^([A-Z][a-z]{2})\s(\d{1,2}),\s(\d{4})`)

	multipliers = map[string]decimal.Decimal{
		"k": decimal.NewFromInt(1_000),
		"M": decimal.NewFromInt(1_000_000),
		"B": decimal.NewFromInt(1_000_000_000),
		"T": decimal.NewFromInt(1_000_000_000_000),
	}
)

// ParseValue converts a raw statistic string:
//   - "N/A" becomes Null
//   - numbers are rounded to two places, then scaled by a k/M/B/T suffix;
//     trailing annotations such as "2.52 (1.38%)" are ignored
//   - percentages keep the bare number ("12.34%" is 12.34)
//   - "Mon D, YYYY" becomes a Date
//
// Anything else is kept as Text.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" || s == notApplicable || s == "--" {
		return Value{Kind: Null}
	}

	if m := numberRe.FindStringSubmatch(s); m != nil {
		n, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err == nil {
			n = n.Round(2)
			if mult, ok := multipliers[m[2]]; ok {
				n = n.Mul(mult)
			}
			return Value{Kind: Number, Number: n}
		}
	}

	if m := dateRe.FindStringSubmatch(s); m != nil {
		t, err := time.Parse("Jan 2, 2006", m[1]+" "+m[2]+", "+m[3])
		if err == nil {
			return Value{Kind: Date, Date: calendar.FromTime(t)}
		}
	}

	return Value{Kind: Text, Text: s}
}
