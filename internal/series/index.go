package series

import (
	"time"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
)

type monthKey struct {
	year  int
	month time.Month
}

// FirstDayIndex maps a (year, month) pair to the position of the earliest
// record in that month. Months without trading days have no entry.
type FirstDayIndex struct {
	first map[monthKey]int
}

// BuildFirstDayIndex indexes records in a single pass. records must be
// ordered by date, so the first record seen for a month is its first day.
func BuildFirstDayIndex(records []DailyRecord) FirstDayIndex {
	idx := FirstDayIndex{first: make(map[monthKey]int)}
	for i, r := range records {
		k := monthKey{year: r.Date.Year, month: r.Date.Month}
		if _, ok := idx.first[k]; !ok {
			idx.first[k] = i
		}
	}
	return idx
}

// Lookup returns the position of the first trading day of year/month.
func (x FirstDayIndex) Lookup(year int, month time.Month) (int, bool) {
	i, ok := x.first[monthKey{year: year, month: month}]
	return i, ok
}

// LookupDate is Lookup for the month containing d.
func (x FirstDayIndex) LookupDate(d calendar.Date) (int, bool) {
	return x.Lookup(d.Year, d.Month)
}

// Len returns the number of indexed months.
func (x FirstDayIndex) Len() int { return len(x.first) }
