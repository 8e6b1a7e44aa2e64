package model

// TopLevel is one row of the top-levels table.
type TopLevel struct {
	Level        string   `json:"level"`
	Cycles       int      `json:"cycles"`
	FirstCloseNS *int64   `json:"first_close_ns"`
	LastCloseNS  *int64   `json:"last_close_ns"`
	MedianSecs   *float64 `json:"median_secs"`
}

// Result is the immutable output of one run. Totals maps canonical level
// strings to cycle counts for every band-eligible level that was armed at
// least once, zero-cycle levels included. TopLevels is sorted by cycles
// descending, ties broken by level price ascending.
type Result struct {
	Symbol    string         `json:"symbol"`
	Step      string         `json:"step"`
	Spread    string         `json:"spread"`
	StartISO  string         `json:"start_iso"`
	EndISO    string         `json:"end_iso"`
	RTH       bool           `json:"rth"`
	Totals    map[string]int `json:"totals"`
	TopLevels []TopLevel     `json:"top_levels"`
	Samples   int            `json:"samples"`
}
