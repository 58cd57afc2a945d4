package stats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmethakanbesel/stockseries/internal/calendar"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw      string
		wantKind Kind
		want     string
	}{
		{"1.23", Number, "1.23"},
		{"N/A", Null, "N/A"},
		{"2.45T", Number, "2450000000000"},
		{"903.76B", Number, "903760000000"},
		{"31.5M", Number, "31500000"},
		{"512.3k", Number, "512300"},
		{"12.34%", Number, "12.34"},
		{"-0.52", Number, "-0.52"},
		{"1,234,567", Number, "1234567"},
		{"18.256", Number, "18.26"},
		{"Feb 10, 2017", Date, "2017-02-10"},
		{"Nov 3, 2016", Date, "2016-11-03"},
		{"2.52 (1.38%)", Number, "2.52"},
		{"1.23 (-0.5%)", Number, "1.23"},
		{"45.2M (Jun 14, 2018)", Number, "45200000"},
		{"2:1", Text, "2:1"},
		{"2017-02-09", Text, "2017-02-09"},
		{"  ", Null, "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := ParseValue(tt.raw)
			assert.Equal(t, tt.wantKind, v.Kind)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestParseValue_Float(t *testing.T) {
	f, ok := ParseValue("1.23").Float()
	require.True(t, ok)
	assert.InDelta(t, 1.23, f, 1e-9)

	f, ok = ParseValue("2.45T").Float()
	require.True(t, ok)
	assert.InDelta(t, 2450000000000.0, f, 1e-3)

	_, ok = ParseValue("N/A").Float()
	assert.False(t, ok)
}

func TestParseValue_Date(t *testing.T) {
	v := ParseValue("Feb 10, 2017")
	require.Equal(t, Date, v.Kind)
	assert.Equal(t, calendar.New(2017, 2, 10), v.Date)
}

func TestStore_Accessors(t *testing.T) {
	s := NewStore(map[string]string{
		"Beta":                     "1.23",
		"Forward Dividend & Yield": "N/A",
		"Market Cap (intraday)":    "2.45T",
		"Avg Vol (10 day)":         "25.1M",
		"Avg Vol (3 month)":        "27.34M",
		"Trailing P/E":             "18.45",
		"Diluted EPS (ttm)":        "8.31",
	})

	beta, err := s.Beta()
	require.NoError(t, err)
	assert.Equal(t, "1.23", beta.String())

	mc, err := s.MarketCap()
	require.NoError(t, err)
	f, _ := mc.Float()
	assert.InDelta(t, 2450000000000.0, f, 1e-3)

	v, err := s.Get("Forward Dividend & Yield")
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = s.AvgVolume10Day()
	require.NoError(t, err)
	assert.Equal(t, "25100000", v.String())

	v, err = s.AvgVolume3Month()
	require.NoError(t, err)
	assert.Equal(t, "27340000", v.String())

	v, err = s.TrailingPE()
	require.NoError(t, err)
	assert.Equal(t, "18.45", v.String())

	v, err = s.DilutedEPS()
	require.NoError(t, err)
	assert.Equal(t, "8.31", v.String())

	assert.Equal(t, 7, s.Len())
	assert.Equal(t, "Avg Vol (10 day)", s.Labels()[0])
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore(map[string]string{"Beta": "1.23"})

	_, err := s.TrailingPE()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get("Shares Outstanding")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Named(t *testing.T) {
	for name, label := range Named {
		assert.NotEmpty(t, name)
		assert.NotEmpty(t, label)
	}
	assert.Equal(t, LabelTrailingPE, Named["trailingPE"])
}

func TestValue_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Value{
		"n": ParseValue("N/A"),
		"d": ParseValue("Feb 10, 2017"),
		"t": ParseValue("2:1"),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":null,"d":"2017-02-10","t":"2:1"}`, string(b))
}
