package engine

import (
	"sync"
	"time"
	_ "time/tzdata"

	"grid-backtest/internal/model"
)

// Regular trading hours, 09:30:00 inclusive to 16:00:00 exclusive,
// America/New_York civil time.
const (
	rthOpenSec  = 9*3600 + 30*60
	rthCloseSec = 16 * 3600
)

var (
	easternOnce sync.Once
	easternLoc  *time.Location
)

func eastern() *time.Location {
	easternOnce.Do(func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			panic(err)
		}
		easternLoc = loc
	})
	return easternLoc
}

// InRTH reports whether ns falls inside regular trading hours on the
// US Eastern civil calendar, honoring daylight-saving transitions.
func InRTH(ns int64) bool {
	t := time.Unix(0, ns).In(eastern())
	sec := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return sec >= rthOpenSec && sec < rthCloseSec
}

// inScope decides whether a tick reaches the state machine. Dropped ticks
// do not count toward samples and never move the previous in-scope price.
func inScope(cfg model.GridConfig, ns int64) bool {
	if ns < cfg.WindowStartNS || ns >= cfg.WindowEndNS {
		return false
	}
	if cfg.RTH && !InRTH(ns) {
		return false
	}
	return true
}
