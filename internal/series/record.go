// Package series holds a stock's daily price history and the date index used
// to resolve calendar dates to trading days.
package series

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
)

// pricePlaces is the number of decimal places prices are rounded to.
const pricePlaces = 2

// Field selects one value of a DailyRecord. The numeric values are the
// positions of the fields in a daily tuple.
type Field int

const (
	Open Field = iota
	High
	Low
	Close
	AdjClose
	Volume
)

var fieldNames = [...]string{"open", "high", "low", "close", "adjClose", "volume"}

func (f Field) String() string {
	if f < Open || f > Volume {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField returns the Field named s ("open", "high", "low", "close",
// "adjClose" or "volume").
func ParseField(s string) (Field, error) {
	for i, name := range fieldNames {
		if name == s {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

// DailyRecord is one trading day.
type DailyRecord struct {
	Date     calendar.Date   `json:"date"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adjClose"`
	Volume   int64           `json:"volume"`
}

// NewRecord builds a DailyRecord, rounding every price to two places.
func NewRecord(date calendar.Date, open, high, low, closePrice, adjClose decimal.Decimal, volume int64) (DailyRecord, error) {
	if volume < 0 {
		return DailyRecord{}, fmt.Errorf("negative volume %d on %s", volume, date)
	}
	return DailyRecord{
		Date:     date,
		Open:     open.Round(pricePlaces),
		High:     high.Round(pricePlaces),
		Low:      low.Round(pricePlaces),
		Close:    closePrice.Round(pricePlaces),
		AdjClose: adjClose.Round(pricePlaces),
		Volume:   volume,
	}, nil
}

// Value projects field f out of r. Volume is returned as a whole number.
func (r DailyRecord) Value(f Field) decimal.Decimal {
	switch f {
	case Open:
		return r.Open
	case High:
		return r.High
	case Low:
		return r.Low
	case Close:
		return r.Close
	case AdjClose:
		return r.AdjClose
	case Volume:
		return decimal.NewFromInt(r.Volume)
	default:
		return decimal.Zero
	}
}
