package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"grid-backtest/internal/data"
	"grid-backtest/internal/engine"
	"grid-backtest/internal/model"
	"grid-backtest/internal/window"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backtest":
		cmdBacktest(os.Args[2:])
	case "export":
		cmdExport(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli backtest --ticks ticks.csv --symbol LCID [--step 0.01 --spread 0.01 --exact --rth] [--out totals.csv]")
	fmt.Println("  cli export   --ticks ticks.csv [--out totals.csv]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - ticks files may be .csv (timestamp+price columns) or .json ({symbol, ticks})")
	fmt.Println("  - backtest prints the top-levels table; export writes level,cycles rows")
}

type runFlags struct {
	ticksPath string
	symbol    string
	step      string
	spread    string
	exact     bool
	rth       bool
	levelMin  string
	levelMax  string
	startDate string
	endDate   string
	tz        string
	out       string
}

func bindFlags(fs *flag.FlagSet) *runFlags {
	rf := &runFlags{}
	fs.StringVar(&rf.ticksPath, "ticks", "", "Path to tick CSV or JSON file")
	fs.StringVar(&rf.symbol, "symbol", "", "Symbol label (defaults to the JSON file's symbol, or TEST)")
	fs.StringVar(&rf.step, "step", "0.01", "Grid step")
	fs.StringVar(&rf.spread, "spread", "0.01", "Grid spread")
	fs.BoolVar(&rf.exact, "exact", false, "Exact prints only (no crossing)")
	fs.BoolVar(&rf.rth, "rth", false, "Restrict to regular trading hours")
	fs.StringVar(&rf.levelMin, "level-min", "", "Report only levels >= this price")
	fs.StringVar(&rf.levelMax, "level-max", "", "Report only levels <= this price")
	fs.StringVar(&rf.startDate, "start-date", "", "Optional window start date (YYYY-MM-DD)")
	fs.StringVar(&rf.endDate, "end-date", "", "Optional window end date (YYYY-MM-DD)")
	fs.StringVar(&rf.tz, "tz", "", "IANA timezone for dates (default America/New_York)")
	fs.StringVar(&rf.out, "out", "", "Optional output CSV path")
	return rf
}

func cmdBacktest(args []string) {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	rf := bindFlags(fs)
	_ = fs.Parse(args)

	res := run(rf)

	fmt.Printf("symbol=%s step=%s spread=%s rth=%v window=[%s, %s)\n",
		res.Symbol, res.Step, res.Spread, res.RTH, res.StartISO, res.EndISO)
	fmt.Printf("samples=%d levels=%d\n\n", res.Samples, len(res.Totals))

	fmt.Printf("%-10s %-8s %-22s %-22s %-12s\n", "level", "cycles", "first_close_ns", "last_close_ns", "median_secs")
	for _, tl := range res.TopLevels {
		fmt.Printf("%-10s %-8d %-22s %-22s %-12s\n",
			tl.Level, tl.Cycles, fmtNS(tl.FirstCloseNS), fmtNS(tl.LastCloseNS), fmtSecs(tl.MedianSecs))
	}

	if rf.out != "" {
		writeOut(rf.out, res)
		fmt.Printf("\nWrote %d levels to %s\n", len(res.Totals), rf.out)
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	rf := bindFlags(fs)
	_ = fs.Parse(args)

	res := run(rf)
	if rf.out != "" {
		writeOut(rf.out, res)
		return
	}
	if err := engine.WriteTotalsCSV(os.Stdout, res); err != nil {
		panic(err)
	}
}

func run(rf *runFlags) model.Result {
	if rf.ticksPath == "" {
		fmt.Println("--ticks is required")
		os.Exit(2)
	}

	symbol, ticks := loadTicks(rf.ticksPath)
	if rf.symbol != "" {
		symbol = rf.symbol
	}
	if symbol == "" {
		symbol = "TEST"
	}
	if len(ticks) == 0 {
		fmt.Println("no ticks in file")
		os.Exit(1)
	}

	bounds := window.Bounds{
		StartNS: ticks[0].TimestampNS,
		EndNS:   ticks[len(ticks)-1].TimestampNS + 1,
	}
	if rf.startDate != "" && rf.endDate != "" {
		var err error
		bounds, err = window.Resolve(rf.startDate, rf.endDate, "", "", rf.tz)
		if err != nil {
			panic(err)
		}
	}

	gc := model.GridConfig{
		Step:          mustDecimal(rf.step, "step"),
		Spread:        mustDecimal(rf.spread, "spread"),
		RTH:           rf.rth,
		ExactOnly:     rf.exact,
		WindowStartNS: bounds.StartNS,
		WindowEndNS:   bounds.EndNS,
	}
	if rf.levelMin != "" {
		d := mustDecimal(rf.levelMin, "level-min")
		gc.LevelMin = &d
	}
	if rf.levelMax != "" {
		d := mustDecimal(rf.levelMax, "level-max")
		gc.LevelMax = &d
	}

	res, err := engine.Run(gc, symbol, ticks)
	if err != nil {
		panic(err)
	}
	return res
}

func loadTicks(path string) (string, []model.Tick) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		symbol, ticks, err := data.LoadTicksJSON(path)
		if err != nil {
			panic(err)
		}
		return symbol, ticks
	}
	ticks, err := data.LoadTicksCSV(path)
	if err != nil {
		panic(err)
	}
	return "", ticks
}

func writeOut(path string, res model.Result) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			panic(err)
		}
	}
	if err := engine.WriteTotalsCSVFile(path, res); err != nil {
		panic(err)
	}
}

func mustDecimal(s, name string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil || d.Sign() <= 0 {
		fmt.Printf("--%s must be a positive decimal, got %q\n", name, s)
		os.Exit(2)
	}
	return d
}

func fmtNS(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func fmtSecs(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}
