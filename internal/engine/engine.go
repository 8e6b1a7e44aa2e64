package engine

import (
	"github.com/shopspring/decimal"

	"grid-backtest/internal/model"
)

// levelState tracks one grid level for the duration of a run. A level exists
// from the first time it is armed; durations has exactly cycles entries.
type levelState struct {
	armed bool
	armNS int64

	cycles       int
	firstCloseNS int64
	lastCloseNS  int64
	durations    []float64
}

// Engine is the per-run grid cycle state machine. It owns its level states
// exclusively; nothing is shared across runs, so independent runs may
// execute concurrently. Within a run, ticks must be fed sequentially.
type Engine struct {
	cfg model.GridConfig
	g   grid

	levels map[int64]*levelState

	havePrev  bool
	prevPrice decimal.Decimal
	prevNS    int64

	offered int // ticks fed, in-scope or not, for error positions
	samples int // ticks that reached the state machine
}

func New(cfg model.GridConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		g:      newGrid(cfg.Step, cfg.Spread),
		levels: make(map[int64]*levelState),
	}, nil
}

// Run feeds an adapter-supplied tick sequence through a fresh engine and
// assembles the result. It is a pure function of (ticks, cfg).
func Run(cfg model.GridConfig, symbol string, ticks []model.Tick) (model.Result, error) {
	e, err := New(cfg)
	if err != nil {
		return model.Result{}, err
	}
	for _, t := range ticks {
		if err := e.Feed(t); err != nil {
			return model.Result{}, err
		}
	}
	return e.Finalize(symbol), nil
}

// Feed processes one tick. Out-of-window and non-RTH ticks are dropped
// before the state machine; a non-positive price or a timestamp behind the
// previous in-scope tick fails the run with a DataError.
func (e *Engine) Feed(t model.Tick) error {
	idx := e.offered
	e.offered++

	if t.Price.Sign() <= 0 {
		return &DataError{Index: idx, Reason: "price must be positive", Tick: t}
	}
	if !inScope(e.cfg, t.TimestampNS) {
		return nil
	}
	if e.havePrev && t.TimestampNS < e.prevNS {
		return &DataError{Index: idx, Reason: "timestamp not monotonic", Tick: t}
	}

	e.samples++
	if e.cfg.ExactOnly {
		e.feedExact(t.Price, t.TimestampNS)
	} else {
		e.feedCrossing(t.Price, t.TimestampNS)
	}
	e.prevPrice = t.Price
	e.prevNS = t.TimestampNS
	e.havePrev = true
	return nil
}

// Samples returns the number of ticks that passed the time filter so far.
func (e *Engine) Samples() int { return e.samples }

// feedExact acts only on exact prints: a print at L+spread closes an armed
// L, a print on the grid arms its level. When spread is a multiple of step
// one print can do both, for two different levels; close runs first,
// matching the close-then-arm order of a single level's own lifecycle.
func (e *Engine) feedExact(p decimal.Decimal, ns int64) {
	u, ok := e.g.units(p)
	if !ok {
		return
	}
	if base := u - e.g.spreadUnits; e.g.onStep(base) {
		if st := e.levels[base]; st != nil && st.armed {
			e.closeLevel(base, ns)
		}
	}
	if e.g.onStep(u) {
		e.armLevel(u, ns)
	}
}

// feedCrossing resolves every grid threshold passed between the previous
// in-scope price and the current one, in the order price traversed them.
// Each threshold may close the level spread below it (if armed) and arm its
// own level (if idle); a gap tick resolves all of them in one call. The
// first in-scope tick only seeds the previous price.
func (e *Engine) feedCrossing(p decimal.Decimal, ns int64) {
	if !e.havePrev || p.Equal(e.prevPrice) {
		return
	}

	var arms, closes []int64
	up := p.GreaterThan(e.prevPrice)
	if up {
		arms = e.g.crossedUp(e.prevPrice, p, 0)
		closes = e.g.crossedUp(e.prevPrice, p, e.g.spreadUnits)
	} else {
		arms = e.g.crossedDown(e.prevPrice, p, 0)
		closes = e.g.crossedDown(e.prevPrice, p, e.g.spreadUnits)
	}

	// Merge-walk the two threshold streams in traversal order. Equal values
	// affect disjoint levels; close is taken first.
	i, j := 0, 0
	for i < len(arms) || j < len(closes) {
		takeClose := j < len(closes)
		if takeClose && i < len(arms) {
			if up {
				takeClose = closes[j] <= arms[i]
			} else {
				takeClose = closes[j] >= arms[i]
			}
		}
		if takeClose {
			base := closes[j] - e.g.spreadUnits
			if st := e.levels[base]; st != nil && st.armed {
				e.closeLevel(base, ns)
			}
			j++
		} else {
			e.armLevel(arms[i], ns)
			i++
		}
	}
}

func (e *Engine) armLevel(base int64, ns int64) {
	if base <= 0 {
		return
	}
	st := e.levels[base]
	if st == nil {
		st = &levelState{}
		e.levels[base] = st
	}
	if !st.armed {
		st.armed = true
		st.armNS = ns
	}
}

func (e *Engine) closeLevel(base int64, ns int64) {
	st := e.levels[base]
	st.cycles++
	st.durations = append(st.durations, float64(ns-st.armNS)/1e9)
	if st.cycles == 1 {
		st.firstCloseNS = ns
	}
	st.lastCloseNS = ns
	st.armed = false
}
