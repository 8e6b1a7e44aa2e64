package models

// BacktestQuery holds the query parameters shared by GET /api/v1/backtest
// and GET /api/v1/export. The window is either explicit nanosecond bounds
// (start_ns/end_ns) or calendar dates/times in tz.
type BacktestQuery struct {
	Symbol string `form:"symbol" binding:"required"`

	StartNS *int64 `form:"start_ns"`
	EndNS   *int64 `form:"end_ns"`

	StartDate string `form:"start_date"` // YYYY-MM-DD
	EndDate   string `form:"end_date"`
	StartTime string `form:"start_time"` // HH:MM or HH:MM:SS
	EndTime   string `form:"end_time"`
	TZ        string `form:"tz"` // IANA name, default America/New_York

	Step      string `form:"step"`
	Spread    string `form:"spread"`
	RTH       *bool  `form:"rth"`
	ExactOnly *bool  `form:"exact_only"`

	ExcludeTRF    bool `form:"exclude_trf"`
	MaxCorrection *int `form:"max_correction"`

	LevelMin string `form:"level_min"`
	LevelMax string `form:"level_max"`
}

// CSVBacktestForm holds the multipart fields for POST /api/v1/backtest/csv;
// the tick file itself travels in the "file" part. The window is implied by
// the file contents.
type CSVBacktestForm struct {
	Symbol    string `form:"symbol"`
	Step      string `form:"step"`
	Spread    string `form:"spread"`
	RTH       *bool  `form:"rth"`
	ExactOnly *bool  `form:"exact_only"`
	LevelMin  string `form:"level_min"`
	LevelMax  string `form:"level_max"`
}
