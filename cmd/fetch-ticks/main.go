package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"grid-backtest/internal/data"
	"grid-backtest/internal/model"
	"grid-backtest/internal/util"
	"grid-backtest/internal/window"
)

// fetch-ticks downloads a symbol's trades from Polygon into a tick CSV
// that cmd/cli and the upload endpoint can replay offline.
func main() {
	var (
		symbol    = flag.String("symbol", "", "Ticker to download, e.g. LCID")
		startDate = flag.String("start-date", "", "Start date (YYYY-MM-DD)")
		endDate   = flag.String("end-date", "", "End date (YYYY-MM-DD), full day inclusive")
		tz        = flag.String("tz", "", "IANA timezone for dates (default America/New_York)")
		output    = flag.String("output", "", "Output CSV path (default: ./data/<symbol>_ticks.csv)")
	)
	flag.Parse()

	_ = godotenv.Load()
	log := util.NewLogger(os.Getenv("LOG_LEVEL"))

	if *symbol == "" || *startDate == "" || *endDate == "" {
		fmt.Println("--symbol, --start-date and --end-date are required")
		os.Exit(2)
	}
	apiKey := os.Getenv("POLYGON_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("POLYGON_API_KEY environment variable is required")
	}

	bounds, err := window.Resolve(*startDate, *endDate, "", "", *tz)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid window")
	}

	outPath := *output
	if outPath == "" {
		outPath = filepath.Join("data", *symbol+"_ticks.csv")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create output directory")
	}
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create output file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"participant_timestamp_ns", "price"}); err != nil {
		log.Fatal().Err(err).Msg("failed to write header")
	}

	client := data.NewPolygonClient(apiKey, os.Getenv("POLYGON_BASE_URL"), log)
	rows := 0
	err = client.StreamTrades(context.Background(), data.TradesParams{
		Symbol:  *symbol,
		StartNS: bounds.StartNS,
		EndNS:   bounds.EndNS,
	}, func(t model.Tick) error {
		rows++
		return w.Write([]string{strconv.FormatInt(t.TimestampNS, 10), t.Price.String()})
	})
	if err != nil {
		log.Fatal().Err(err).Msg("fetch failed")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatal().Err(err).Msg("failed to flush CSV")
	}

	fmt.Printf("Wrote %d ticks to %s\n", rows, outPath)
}
