package data

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicksCSVNanosecondColumn(t *testing.T) {
	in := "participant_timestamp_ns,price\n2,2.22\n1,2.21\n"
	ticks, err := ParseTicksCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ticks, 2)

	// Rows come back sorted ascending.
	assert.Equal(t, int64(1), ticks[0].TimestampNS)
	assert.Equal(t, "2.21", ticks[0].Price.String())
	assert.Equal(t, int64(2), ticks[1].TimestampNS)
}

func TestParseTicksCSVCaseInsensitiveColumns(t *testing.T) {
	in := "TS,PRICE\n5,3.14\n"
	ticks, err := ParseTicksCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ticks, 1)
	assert.Equal(t, int64(5), ticks[0].TimestampNS)
}

func TestParseTicksCSVFuzzyColumnMatch(t *testing.T) {
	in := "my_timestamp_ns_col,trade_price_usd\n7,1.05\n"
	ticks, err := ParseTicksCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ticks, 1)
	assert.Equal(t, "1.05", ticks[0].Price.String())
}

func TestParseTicksCSVISOFallback(t *testing.T) {
	in := "iso_utc,price\n2024-01-02T14:30:00Z,2.21\n2024-01-02T14:30:01,2.22\n"
	ticks, err := ParseTicksCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.Equal(t, int64(1_000_000_000), ticks[1].TimestampNS-ticks[0].TimestampNS)
}

func TestParseTicksCSVDropsUnusableRows(t *testing.T) {
	in := "ts,price\nnot-a-ts,2.21\n2,not-a-price\n3,2.23\n"
	ticks, err := ParseTicksCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ticks, 1)
	assert.Equal(t, int64(3), ticks[0].TimestampNS)
}

func TestParseTicksCSVErrors(t *testing.T) {
	_, err := ParseTicksCSV(strings.NewReader(""))
	assert.Error(t, err, "empty file")

	_, err = ParseTicksCSV(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err, "no price column")

	_, err = ParseTicksCSV(strings.NewReader("ts,price\nx,y\n"))
	assert.Error(t, err, "no usable rows")
}

func TestParseTicksCSVPreservesPriceExactness(t *testing.T) {
	in := "ts,price\n1,2.215\n"
	ticks, err := ParseTicksCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "2.215", ticks[0].Price.String())
}
