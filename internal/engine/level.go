package engine

import (
	"github.com/shopspring/decimal"
)

// grid fixes the lattice identity for one run. All level bookkeeping happens
// in integer "units" of 10^-scale, where scale covers the fractional digits
// of both step and spread, so trigger comparison is exact fixed-point and
// never a binary-float equality.
type grid struct {
	step   decimal.Decimal
	spread decimal.Decimal

	scale       int32
	stepUnits   int64
	spreadUnits int64
}

func newGrid(step, spread decimal.Decimal) grid {
	scale := int32(0)
	if e := -step.Exponent(); e > scale {
		scale = e
	}
	if e := -spread.Exponent(); e > scale {
		scale = e
	}
	return grid{
		step:        step,
		spread:      spread,
		scale:       scale,
		stepUnits:   step.Shift(scale).IntPart(),
		spreadUnits: spread.Shift(scale).IntPart(),
	}
}

// units converts a price to lattice units. ok is false when the price has
// more fractional digits than the lattice (e.g. a 2.245 print on a 0.01
// grid); such a print can never equal a trigger exactly.
func (g grid) units(p decimal.Decimal) (int64, bool) {
	s := p.Shift(g.scale)
	if !s.IsInteger() {
		return 0, false
	}
	return s.IntPart(), true
}

// onStep reports whether u is an exact multiple of the step.
func (g grid) onStep(u int64) bool {
	return u%g.stepUnits == 0
}

// price converts lattice units back to an exact decimal.
func (g grid) price(u int64) decimal.Decimal {
	return decimal.New(u, -g.scale)
}

// levelString is the canonical label for a level base, rendered at lattice
// precision so the same level always serializes identically.
func (g grid) levelString(u int64) string {
	return g.price(u).StringFixed(g.scale)
}

// crossedUp lists the lattice values offset+k*step passed when price rises
// from p0 to p1, exclusive of p0 and inclusive of p1, ascending.
func (g grid) crossedUp(p0, p1 decimal.Decimal, offset int64) []int64 {
	s1 := p1.Shift(g.scale)
	t := g.firstAbove(p0, offset)
	stepU := decimal.NewFromInt(g.stepUnits)
	var out []int64
	for t.Cmp(s1) <= 0 {
		out = append(out, t.IntPart())
		t = t.Add(stepU)
	}
	return out
}

// crossedDown lists the lattice values passed when price falls from p0 to
// p1, exclusive of p0 and inclusive of p1, descending.
func (g grid) crossedDown(p0, p1 decimal.Decimal, offset int64) []int64 {
	s1 := p1.Shift(g.scale)
	t := g.firstBelow(p0, offset)
	stepU := decimal.NewFromInt(g.stepUnits)
	var out []int64
	for t.Cmp(s1) >= 0 {
		out = append(out, t.IntPart())
		t = t.Sub(stepU)
	}
	return out
}

// firstAbove returns the smallest lattice value strictly greater than p,
// as an integer-valued decimal in lattice units.
func (g grid) firstAbove(p decimal.Decimal, offset int64) decimal.Decimal {
	stepU := decimal.NewFromInt(g.stepUnits)
	d := p.Shift(g.scale).Sub(decimal.NewFromInt(offset))
	m := d.Mod(stepU)
	base := d.Sub(m)
	// Mod takes the sign of the dividend; fix up to a true floor multiple.
	if d.Sign() < 0 && !m.IsZero() {
		base = base.Sub(stepU)
	}
	return base.Add(stepU).Add(decimal.NewFromInt(offset))
}

// firstBelow returns the largest lattice value strictly less than p.
func (g grid) firstBelow(p decimal.Decimal, offset int64) decimal.Decimal {
	stepU := decimal.NewFromInt(g.stepUnits)
	d := p.Shift(g.scale).Sub(decimal.NewFromInt(offset))
	m := d.Mod(stepU)
	base := d.Sub(m)
	if d.Sign() < 0 && !m.IsZero() {
		base = base.Sub(stepU)
	}
	if m.IsZero() {
		base = base.Sub(stepU)
	}
	return base.Add(decimal.NewFromInt(offset))
}
