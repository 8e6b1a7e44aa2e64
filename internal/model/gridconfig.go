package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTopLevels is how many rows the top-levels table keeps.
const DefaultTopLevels = 10

// GridConfig holds the parameters for one backtest run.
//
// Step and Spread are exact decimals (e.g. "0.01", "0.05"); Spread need not
// equal Step. LevelMin/LevelMax restrict reporting only, never ingestion.
// The window is half-open: WindowStartNS <= ts < WindowEndNS.
type GridConfig struct {
	Step   decimal.Decimal
	Spread decimal.Decimal

	RTH       bool
	ExactOnly bool

	LevelMin *decimal.Decimal
	LevelMax *decimal.Decimal

	WindowStartNS int64
	WindowEndNS   int64

	// TopN limits the top-levels table; 0 means DefaultTopLevels.
	TopN int
}

// Validate rejects a config before any tick is processed.
func (c GridConfig) Validate() error {
	if c.Step.Sign() <= 0 {
		return fmt.Errorf("step must be positive, got %s", c.Step)
	}
	if c.Spread.Sign() <= 0 {
		return fmt.Errorf("spread must be positive, got %s", c.Spread)
	}
	if c.WindowStartNS >= c.WindowEndNS {
		return errors.New("window start must be before window end")
	}
	if c.LevelMin != nil && c.LevelMax != nil && c.LevelMin.GreaterThan(*c.LevelMax) {
		return fmt.Errorf("level_min %s exceeds level_max %s", c.LevelMin, c.LevelMax)
	}
	if c.TopN < 0 {
		return fmt.Errorf("top_n must not be negative, got %d", c.TopN)
	}
	return nil
}

// TopLimit resolves the effective top-levels table size.
func (c GridConfig) TopLimit() int {
	if c.TopN == 0 {
		return DefaultTopLevels
	}
	return c.TopN
}
