package engine

import (
	"fmt"

	"grid-backtest/internal/model"
)

// DataError reports a data-integrity fault in the tick stream: a
// non-monotonic timestamp or a non-positive price. The engine fails the run
// at the first offending tick; it never reorders or silently skips.
type DataError struct {
	Index  int // zero-based position in the fed sequence
	Reason string
	Tick   model.Tick
}

func (e *DataError) Error() string {
	return fmt.Sprintf("tick %d (ts=%d price=%s): %s",
		e.Index, e.Tick.TimestampNS, e.Tick.Price, e.Reason)
}
