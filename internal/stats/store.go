package stats

import (
	"errors"
	"fmt"
	"sort"
)

// Labels as published on the key-statistics page.
const (
	LabelMarketCap       = "Market Cap (intraday)"
	LabelAvgVolume10Day  = "Avg Vol (10 day)"
	LabelAvgVolume3Month = "Avg Vol (3 month)"
	LabelTrailingPE      = "Trailing P/E"
	LabelDilutedEPS      = "Diluted EPS (ttm)"
	LabelBeta            = "Beta"
)

var ErrNotFound = errors.New("statistic not found")

// Store maps a statistic label to its parsed value. It is read-only once built.
type Store struct {
	values map[string]Value
}

// NewStore parses every raw value in the label->text mapping.
func NewStore(raw map[string]string) *Store {
	values := make(map[string]Value, len(raw))
	for label, text := range raw {
		values[label] = ParseValue(text)
	}
	return &Store{values: values}
}

// Get returns the value published under label.
func (s *Store) Get(label string) (Value, error) {
	v, ok := s.values[label]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrNotFound, label)
	}
	return v, nil
}

// Labels returns every published label, sorted.
func (s *Store) Labels() []string {
	labels := make([]string, 0, len(s.values))
	for l := range s.values {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// All returns a copy of the parsed mapping.
func (s *Store) All() map[string]Value {
	out := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Store) Len() int { return len(s.values) }

func (s *Store) MarketCap() (Value, error)       { return s.Get(LabelMarketCap) }
func (s *Store) AvgVolume10Day() (Value, error)  { return s.Get(LabelAvgVolume10Day) }
func (s *Store) AvgVolume3Month() (Value, error) { return s.Get(LabelAvgVolume3Month) }
func (s *Store) TrailingPE() (Value, error)      { return s.Get(LabelTrailingPE) }
func (s *Store) DilutedEPS() (Value, error)      { return s.Get(LabelDilutedEPS) }
func (s *Store) Beta() (Value, error)            { return s.Get(LabelBeta) }

// Named maps the API names of the key statistics to their labels.
var Named = map[string]string{
	"marketCap":       LabelMarketCap,
	"avgVolume10Day":  LabelAvgVolume10Day,
	"avgVolume3Month": LabelAvgVolume3Month,
	"trailingPE":      LabelTrailingPE,
	"dilutedEPS":      LabelDilutedEPS,
	"beta":            LabelBeta,
}
