package data

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"

	"grid-backtest/internal/model"
)

// TickFile is the on-disk JSON shape for sample tick data:
//
//	{
//	  "symbol": "LCID",
//	  "ticks": [{"timestamp_ns": 1, "price": "2.21"}, ...]
//	}
//
// Prices are strings so they survive the round trip exactly.
type TickFile struct {
	Symbol string    `json:"symbol"`
	Ticks  []tickRow `json:"ticks"`
}

type tickRow struct {
	TimestampNS int64  `json:"timestamp_ns"`
	Price       string `json:"price"`
}

// LoadTicksJSON reads a sample tick file and returns its symbol and the
// ticks sorted ascending by timestamp.
func LoadTicksJSON(path string) (string, []model.Tick, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	var tf TickFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return "", nil, fmt.Errorf("failed to parse tick file: %w", err)
	}

	ticks := make([]model.Tick, 0, len(tf.Ticks))
	for i, row := range tf.Ticks {
		price, err := decimal.NewFromString(row.Price)
		if err != nil {
			return "", nil, fmt.Errorf("tick %d: invalid price %q", i, row.Price)
		}
		ticks = append(ticks, model.Tick{TimestampNS: row.TimestampNS, Price: price})
	}
	sort.SliceStable(ticks, func(i, j int) bool {
		return ticks[i].TimestampNS < ticks[j].TimestampNS
	})
	return tf.Symbol, ticks, nil
}
