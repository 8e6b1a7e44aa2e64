package main

import (
	"flag"
	"fmt"

	"github.com/shopspring/decimal"

	"grid-backtest/internal/engine"
	"grid-backtest/internal/model"
)

// Demo:
// - Generate a synthetic oscillation between two grid levels plus one gap move
// - Run the engine in exact and crossing mode over the same sequence
// - Print the top-levels tables side by side to show the fill semantics differ
func main() {
	n := flag.Int("n", 40, "Number of oscillation round trips")
	flag.Parse()

	ticks := synthetic(*n)

	gc := model.GridConfig{
		Step:          decimal.RequireFromString("0.01"),
		Spread:        decimal.RequireFromString("0.01"),
		WindowStartNS: 0,
		WindowEndNS:   ticks[len(ticks)-1].TimestampNS + 1,
	}

	for _, exact := range []bool{true, false} {
		cfg := gc
		cfg.ExactOnly = exact
		res, err := engine.Run(cfg, "DEMO", ticks)
		if err != nil {
			panic(err)
		}

		mode := "crossing"
		if exact {
			mode = "exact"
		}
		fmt.Printf("mode=%s samples=%d levels=%d\n", mode, res.Samples, len(res.Totals))
		for _, tl := range res.TopLevels {
			fmt.Printf("  level=%s cycles=%d\n", tl.Level, tl.Cycles)
		}
		fmt.Println()
	}
}

// synthetic builds 2.21 <-> 2.22 round trips, then one gap from 2.20 to
// 2.25 that only crossing mode resolves into per-threshold events.
func synthetic(n int) []model.Tick {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	var ticks []model.Tick
	ns := int64(0)
	push := func(p decimal.Decimal) {
		ns += 1_000_000_000
		ticks = append(ticks, model.Tick{TimestampNS: ns, Price: p})
	}

	for i := 0; i < n; i++ {
		push(d("2.21"))
		push(d("2.22"))
	}
	push(d("2.20"))
	push(d("2.25"))
	return ticks
}
