package yahoo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
	"github.com/ahmethakanbesel/stockseries/internal/series"
)

// historyColumns is the column count of a download row:
// Date,Open,High,Low,Close,Adj Close,Volume
const historyColumns = 7

// parseHistoryCSV parses a history download. The header line and blank
// lines are skipped, as are rows the source publishes with "null" values.
func parseHistoryCSV(r io.Reader) ([]series.DailyRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		records []series.DailyRecord
		line    int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++
		if line == 1 {
			continue
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < historyColumns {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, historyColumns, len(row))
		}
		if hasNull(row) {
			continue
		}

		rec, err := parseDay(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func hasNull(row []string) bool {
	for _, v := range row {
		if v == "null" {
			return true
		}
	}
	return false
}

func parseDay(row []string) (series.DailyRecord, error) {
	date, err := calendar.Parse(row[0])
	if err != nil {
		return series.DailyRecord{}, err
	}

	var prices [5]decimal.Decimal
	for i := range prices {
		prices[i], err = decimal.NewFromString(row[i+1])
		if err != nil {
			return series.DailyRecord{}, fmt.Errorf("column %d: %w", i+2, err)
		}
	}

	volume, err := strconv.ParseInt(row[6], 10, 64)
	if err != nil {
		return series.DailyRecord{}, fmt.Errorf("volume: %w", err)
	}

	return series.NewRecord(date, prices[0], prices[1], prices[2], prices[3], prices[4], volume)
}
