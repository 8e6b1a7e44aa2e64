package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridScaleCoversStepAndSpread(t *testing.T) {
	g := newGrid(d("0.05"), d("0.02"))
	assert.Equal(t, int32(2), g.scale)
	assert.Equal(t, int64(5), g.stepUnits)
	assert.Equal(t, int64(2), g.spreadUnits)

	g = newGrid(d("0.5"), d("0.25"))
	assert.Equal(t, int32(2), g.scale)
	assert.Equal(t, int64(50), g.stepUnits)
	assert.Equal(t, int64(25), g.spreadUnits)
}

func TestGridUnitsExactness(t *testing.T) {
	g := newGrid(d("0.01"), d("0.01"))

	u, ok := g.units(d("2.21"))
	require.True(t, ok)
	assert.Equal(t, int64(221), u)

	// Equivalent decimal forms are the same level.
	u2, ok := g.units(d("2.2100"))
	require.True(t, ok)
	assert.Equal(t, u, u2)

	// A finer print has no exact lattice identity.
	_, ok = g.units(d("2.215"))
	assert.False(t, ok)
}

func TestGridOnStep(t *testing.T) {
	g := newGrid(d("0.05"), d("0.05"))
	u, ok := g.units(d("2.20"))
	require.True(t, ok)
	assert.True(t, g.onStep(u))

	u, ok = g.units(d("2.21"))
	require.True(t, ok)
	assert.False(t, g.onStep(u))
}

func TestGridLevelString(t *testing.T) {
	g := newGrid(d("0.01"), d("0.01"))
	assert.Equal(t, "2.21", g.levelString(221))
	assert.Equal(t, "0.09", g.levelString(9))

	g = newGrid(d("0.5"), d("0.5"))
	assert.Equal(t, "2.5", g.levelString(25))
}

func TestCrossedUpEnumeratesThresholds(t *testing.T) {
	g := newGrid(d("0.01"), d("0.01"))
	assert.Equal(t, []int64{211, 212, 213}, g.crossedUp(d("2.10"), d("2.13"), 0))
	// Exclusive of the starting price, inclusive of the ending one.
	assert.Empty(t, g.crossedUp(d("2.10"), d("2.10"), 0))
	// Fractional endpoints round to the lattice correctly.
	assert.Equal(t, []int64{250, 251}, g.crossedUp(d("2.495"), d("2.515"), 0))
}

func TestCrossedDownEnumeratesThresholds(t *testing.T) {
	g := newGrid(d("0.01"), d("0.01"))
	assert.Equal(t, []int64{212, 211, 210}, g.crossedDown(d("2.13"), d("2.10"), 0))
	assert.Equal(t, []int64{250}, g.crossedDown(d("2.505"), d("2.495"), 0))
}

func TestCrossedWithOffsetLattice(t *testing.T) {
	g := newGrid(d("0.05"), d("0.02"))
	// Close thresholds sit at multiples of 0.05 plus 0.02.
	assert.Equal(t, []int64{202, 207, 212}, g.crossedUp(d("2.00"), d("2.12"), g.spreadUnits))
}
