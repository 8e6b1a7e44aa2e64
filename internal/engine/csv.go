package engine

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"grid-backtest/internal/model"
)

// WriteTotalsCSV projects a result's totals to level,cycles rows, levels
// ascending. This is the export format consumed by spreadsheets and the
// /api/v1/export endpoint.
func WriteTotalsCSV(w io.Writer, res model.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"level", "cycles"}); err != nil {
		return err
	}

	keys := make([]string, 0, len(res.Totals))
	for k := range res.Totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := decimal.NewFromString(keys[i])
		b, errB := decimal.NewFromString(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a.LessThan(b)
	})

	for _, k := range keys {
		if err := cw.Write([]string{k, strconv.Itoa(res.Totals[k])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTotalsCSVFile writes the totals projection to path.
func WriteTotalsCSVFile(path string, res model.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteTotalsCSV(f, res)
}
