package engine

import (
	"sort"
	"time"

	"grid-backtest/internal/model"
)

// Finalize assembles the immutable Result: band-filtered totals for every
// level that was ever armed (zero-cycle levels included), and the top-N
// table sorted by cycles descending, ties by level price ascending. The
// band restricts reporting only; it never affected ingestion.
func (e *Engine) Finalize(symbol string) model.Result {
	type ranked struct {
		base int64
		st   *levelState
	}

	totals := make(map[string]int)
	rows := make([]ranked, 0, len(e.levels))
	for base, st := range e.levels {
		if !e.inBand(base) {
			continue
		}
		totals[e.g.levelString(base)] = st.cycles
		rows = append(rows, ranked{base: base, st: st})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].st.cycles != rows[j].st.cycles {
			return rows[i].st.cycles > rows[j].st.cycles
		}
		return rows[i].base < rows[j].base
	})
	if limit := e.cfg.TopLimit(); len(rows) > limit {
		rows = rows[:limit]
	}

	top := make([]model.TopLevel, 0, len(rows))
	for _, r := range rows {
		tl := model.TopLevel{
			Level:  e.g.levelString(r.base),
			Cycles: r.st.cycles,
		}
		if r.st.cycles > 0 {
			first, last := r.st.firstCloseNS, r.st.lastCloseNS
			tl.FirstCloseNS = &first
			tl.LastCloseNS = &last
			tl.MedianSecs = median(r.st.durations)
		}
		top = append(top, tl)
	}

	return model.Result{
		Symbol:    symbol,
		Step:      e.cfg.Step.String(),
		Spread:    e.cfg.Spread.String(),
		StartISO:  isoUTC(e.cfg.WindowStartNS),
		EndISO:    isoUTC(e.cfg.WindowEndNS),
		RTH:       e.cfg.RTH,
		Totals:    totals,
		TopLevels: top,
		Samples:   e.samples,
	}
}

func (e *Engine) inBand(base int64) bool {
	lv := e.g.price(base)
	if e.cfg.LevelMin != nil && lv.LessThan(*e.cfg.LevelMin) {
		return false
	}
	if e.cfg.LevelMax != nil && lv.GreaterThan(*e.cfg.LevelMax) {
		return false
	}
	return true
}

// median returns the statistical median of xs, nil when xs is empty.
func median(xs []float64) *float64 {
	n := len(xs)
	if n == 0 {
		return nil
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)
	m := n / 2
	v := sorted[m]
	if n%2 == 0 {
		v = (sorted[m-1] + sorted[m]) / 2
	}
	return &v
}

func isoUTC(ns int64) string {
	return time.Unix(0, ns).UTC().Format(time.RFC3339Nano)
}
