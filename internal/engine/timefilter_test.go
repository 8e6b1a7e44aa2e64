package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-backtest/internal/model"
)

func etNS(t *testing.T, y int, mo time.Month, day, h, m, s int) int64 {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return time.Date(y, mo, day, h, m, s, 0, loc).UnixNano()
}

func TestInRTHBoundaries(t *testing.T) {
	// June: Eastern daylight time.
	assert.False(t, InRTH(etNS(t, 2024, time.June, 10, 9, 29, 59)))
	assert.True(t, InRTH(etNS(t, 2024, time.June, 10, 9, 30, 0)))
	assert.True(t, InRTH(etNS(t, 2024, time.June, 10, 12, 0, 0)))
	assert.True(t, InRTH(etNS(t, 2024, time.June, 10, 15, 59, 59)))
	// 16:00:00 is exclusive.
	assert.False(t, InRTH(etNS(t, 2024, time.June, 10, 16, 0, 0)))
}

func TestInRTHHonorsDST(t *testing.T) {
	// The same Eastern wall-clock instant is a different UTC offset in
	// January (EST) and June (EDT); both must read as open.
	assert.True(t, InRTH(etNS(t, 2024, time.January, 8, 10, 0, 0)))
	assert.True(t, InRTH(etNS(t, 2024, time.June, 10, 10, 0, 0)))

	// 14:35 UTC is 09:35 EST (open) in winter but 10:35 EDT in summer.
	winter := time.Date(2024, time.January, 8, 14, 35, 0, 0, time.UTC).UnixNano()
	assert.True(t, InRTH(winter))
	earlyWinter := time.Date(2024, time.January, 8, 14, 25, 0, 0, time.UTC).UnixNano()
	assert.False(t, InRTH(earlyWinter)) // 09:25 EST, pre-open
}

func TestRTHFilterBlocksExactTriggers(t *testing.T) {
	open := etNS(t, 2024, time.June, 10, 10, 0, 0)
	preOpen := etNS(t, 2024, time.June, 10, 8, 0, 0)

	c := model.GridConfig{
		Step:          d("0.01"),
		Spread:        d("0.01"),
		RTH:           true,
		ExactOnly:     true,
		WindowStartNS: 0,
		WindowEndNS:   1 << 62,
	}
	res := mustRun(t, c, []model.Tick{
		{TimestampNS: preOpen, Price: d("2.21")}, // exact match, but pre-open
		{TimestampNS: open, Price: d("2.21")},
		{TimestampNS: open + 1, Price: d("2.22")},
	})

	// The pre-open print neither armed nor counted as a sample.
	assert.Equal(t, 2, res.Samples)
	assert.Equal(t, 1, res.Totals["2.21"])
}

func TestInScopeWindowBounds(t *testing.T) {
	c := model.GridConfig{WindowStartNS: 100, WindowEndNS: 200}
	assert.False(t, inScope(c, 99))
	assert.True(t, inScope(c, 100))
	assert.True(t, inScope(c, 199))
	assert.False(t, inScope(c, 200))
}
