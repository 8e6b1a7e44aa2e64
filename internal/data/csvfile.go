package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"grid-backtest/internal/metrics"
	"grid-backtest/internal/model"
)

// Recognized column names, checked case-insensitively and then by
// fuzzy-contains match.
var (
	nsColumns    = []string{"participant_timestamp_ns", "participant_timestamp", "timestamp_ns", "time_ns", "ts"}
	isoColumns   = []string{"iso_utc", "iso", "time", "timestamp"}
	priceColumns = []string{"price", "trade_price", "p"}
)

// ParseTicksCSV reads a tabular tick file into the canonical shape.
// Timestamps come from a nanosecond column, falling back to an ISO-8601
// column interpreted as UTC; prices from a price column. Unusable rows are
// dropped, the remainder is sorted by timestamp ascending. A file with no
// usable rows is an error.
func ParseTicksCSV(r io.Reader) ([]model.Tick, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV appears empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	nsIdx := pickColumn(header, nsColumns)
	isoIdx := pickColumn(header, isoColumns)
	priceIdx := pickColumn(header, priceColumns)
	if priceIdx < 0 {
		return nil, fmt.Errorf("couldn't find a price column in %v", header)
	}

	var ticks []model.Tick
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		ns, ok := rowTimestamp(row, nsIdx, isoIdx)
		if !ok {
			continue
		}
		if priceIdx >= len(row) {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(row[priceIdx]))
		if err != nil {
			continue
		}
		metrics.TicksIngested.WithLabelValues("csv").Inc()
		ticks = append(ticks, model.Tick{TimestampNS: ns, Price: price})
	}

	if len(ticks) == 0 {
		return nil, fmt.Errorf("no usable rows (timestamp/price) found in CSV")
	}

	sort.SliceStable(ticks, func(i, j int) bool {
		return ticks[i].TimestampNS < ticks[j].TimestampNS
	})
	return ticks, nil
}

// LoadTicksCSV reads a tick CSV from disk.
func LoadTicksCSV(path string) ([]model.Tick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTicksCSV(f)
}

// pickColumn resolves a column index: exact case-insensitive match first,
// then the first header containing any candidate as a substring.
func pickColumn(header []string, candidates []string) int {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, cand := range candidates {
		for i, h := range lower {
			if h == cand {
				return i
			}
		}
	}
	for i, h := range lower {
		for _, cand := range candidates {
			// Single-letter aliases like "p" match exactly only.
			if len(cand) > 1 && strings.Contains(h, cand) {
				return i
			}
		}
	}
	return -1
}

func rowTimestamp(row []string, nsIdx, isoIdx int) (int64, bool) {
	if nsIdx >= 0 && nsIdx < len(row) {
		if ns, err := strconv.ParseInt(strings.TrimSpace(row[nsIdx]), 10, 64); err == nil {
			return ns, true
		}
	}
	if isoIdx >= 0 && isoIdx < len(row) {
		if ns, ok := parseISO(strings.TrimSpace(row[isoIdx])); ok {
			return ns, true
		}
	}
	return 0, false
}

// parseISO accepts RFC3339 or a bare "YYYY-MM-DDTHH:MM:SS[.frac]"
// interpreted as UTC.
func parseISO(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UnixNano(), true
	}
	bare := strings.TrimSuffix(s, "Z")
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999"} {
		if t, err := time.ParseInLocation(layout, bare, time.UTC); err == nil {
			return t.UnixNano(), true
		}
	}
	return 0, false
}
