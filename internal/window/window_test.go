package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFullDays(t *testing.T) {
	b, err := Resolve("2024-01-02", "2024-01-03", "", "", "America/New_York")
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, loc).UnixNano(), b.StartNS)
	// End date exclusive of the following midnight.
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, loc).UnixNano(), b.EndNS)
}

func TestResolveWithTimes(t *testing.T) {
	b, err := Resolve("2024-01-02", "2024-01-02", "09:30", "16:00:00", "")
	require.NoError(t, err)

	loc, _ := time.LoadLocation(DefaultTimezone)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 30, 0, 0, loc).UnixNano(), b.StartNS)
	assert.Equal(t, time.Date(2024, 1, 2, 16, 0, 0, 0, loc).UnixNano(), b.EndNS)
}

func TestResolveOtherTimezone(t *testing.T) {
	b, err := Resolve("2024-01-02", "2024-01-02", "00:00", "01:00", "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).UnixNano(), b.StartNS)
	assert.Equal(t, int64(time.Hour), b.EndNS-b.StartNS)
}

func TestResolveErrors(t *testing.T) {
	_, err := Resolve("2024-01-02", "2024-01-01", "", "", "")
	assert.Error(t, err, "end before start")

	_, err = Resolve("02/01/2024", "2024-01-03", "", "", "")
	assert.Error(t, err, "bad date format")

	_, err = Resolve("2024-01-02", "2024-01-02", "9am", "", "")
	assert.Error(t, err, "bad time format")

	_, err = Resolve("2024-01-02", "2024-01-03", "", "", "Not/AZone")
	assert.Error(t, err, "bad timezone")

	_, err = Resolve("2024-01-02", "2024-01-02", "16:00", "09:30", "")
	assert.Error(t, err, "inverted times")
}

func TestFromNS(t *testing.T) {
	b, err := FromNS(1, 2)
	require.NoError(t, err)
	assert.Equal(t, Bounds{StartNS: 1, EndNS: 2}, b)

	_, err = FromNS(2, 2)
	assert.Error(t, err)
}
