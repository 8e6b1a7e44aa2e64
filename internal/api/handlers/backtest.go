package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"grid-backtest/internal/api/models"
	"grid-backtest/internal/config"
	"grid-backtest/internal/data"
	"grid-backtest/internal/engine"
	"grid-backtest/internal/metrics"
	"grid-backtest/internal/model"
	"grid-backtest/internal/window"
)

// BacktestHandler runs grid cycle backtests over remotely fetched ticks.
type BacktestHandler struct {
	cfg    *config.Config
	client *data.PolygonClient
	log    zerolog.Logger
}

// NewBacktestHandler creates the handler. The Polygon API key comes from
// the POLYGON_API_KEY environment variable.
func NewBacktestHandler(cfg *config.Config, log zerolog.Logger) *BacktestHandler {
	client := data.NewPolygonClient(os.Getenv("POLYGON_API_KEY"), cfg.Polygon.BaseURL, log)
	return &BacktestHandler{cfg: cfg, client: client, log: log}
}

// Run handles GET /api/v1/backtest.
func (h *BacktestHandler) Run(c *gin.Context) {
	res, ok := h.runFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.BacktestResponse{
		RunID:  uuid.NewString(),
		Result: res,
	})
}

// Export handles GET /api/v1/export: the same run, projected to
// level,cycles CSV rows.
func (h *BacktestHandler) Export(c *gin.Context) {
	res, ok := h.runFromQuery(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_levels.csv", res.Symbol))
	c.Status(http.StatusOK)
	if err := engine.WriteTotalsCSV(c.Writer, res); err != nil {
		h.log.Error().Err(err).Msg("failed to write CSV export")
	}
}

// runFromQuery binds the shared query shape, fetches ticks and runs the
// engine. On failure it writes the error response and returns ok=false.
func (h *BacktestHandler) runFromQuery(c *gin.Context) (model.Result, bool) {
	var q models.BacktestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return model.Result{}, false
	}

	bounds, err := resolveWindow(q)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_WINDOW", err.Error(), nil)
		return model.Result{}, false
	}

	gc, err := h.buildGridConfig(q, bounds)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error(), nil)
		return model.Result{}, false
	}

	ticks, err := h.client.FetchTrades(c.Request.Context(), data.TradesParams{
		Symbol:        q.Symbol,
		StartNS:       bounds.StartNS,
		EndNS:         bounds.EndNS,
		ExcludeTRF:    q.ExcludeTRF,
		MaxCorrection: q.MaxCorrection,
	})
	if err != nil {
		writeFetchError(c, err)
		return model.Result{}, false
	}

	res, err := engine.Run(gc, q.Symbol, ticks)
	if err != nil {
		writeEngineError(c, err)
		return model.Result{}, false
	}
	metrics.BacktestsTotal.WithLabelValues(modeLabel(gc)).Inc()
	return res, true
}

func (h *BacktestHandler) buildGridConfig(q models.BacktestQuery, bounds window.Bounds) (model.GridConfig, error) {
	stepStr := q.Step
	if stepStr == "" {
		stepStr = h.cfg.Engine.Step
	}
	spreadStr := q.Spread
	if spreadStr == "" {
		spreadStr = h.cfg.Engine.Spread
	}

	step, err := decimal.NewFromString(stepStr)
	if err != nil {
		return model.GridConfig{}, fmt.Errorf("step must be a valid decimal, got %q", stepStr)
	}
	spread, err := decimal.NewFromString(spreadStr)
	if err != nil {
		return model.GridConfig{}, fmt.Errorf("spread must be a valid decimal, got %q", spreadStr)
	}

	gc := model.GridConfig{
		Step:          step,
		Spread:        spread,
		RTH:           h.cfg.DefaultRTH(),
		ExactOnly:     h.cfg.DefaultExactOnly(),
		WindowStartNS: bounds.StartNS,
		WindowEndNS:   bounds.EndNS,
		TopN:          h.cfg.Engine.TopLevels,
	}
	if q.RTH != nil {
		gc.RTH = *q.RTH
	}
	if q.ExactOnly != nil {
		gc.ExactOnly = *q.ExactOnly
	}

	if gc.LevelMin, err = parseOptionalDecimal(q.LevelMin, "level_min"); err != nil {
		return model.GridConfig{}, err
	}
	if gc.LevelMax, err = parseOptionalDecimal(q.LevelMax, "level_max"); err != nil {
		return model.GridConfig{}, err
	}
	if err := gc.Validate(); err != nil {
		return model.GridConfig{}, err
	}
	return gc, nil
}

func resolveWindow(q models.BacktestQuery) (window.Bounds, error) {
	switch {
	case q.StartDate != "" && q.EndDate != "":
		return window.Resolve(q.StartDate, q.EndDate, q.StartTime, q.EndTime, q.TZ)
	case q.StartNS != nil && q.EndNS != nil:
		return window.FromNS(*q.StartNS, *q.EndNS)
	default:
		return window.Bounds{}, fmt.Errorf("provide either (start_ns & end_ns) or (start_date & end_date)")
	}
}

func parseOptionalDecimal(s, name string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be a valid decimal, got %q", name, s)
	}
	return &d, nil
}

func modeLabel(gc model.GridConfig) string {
	if gc.ExactOnly {
		return "exact"
	}
	return "crossing"
}

func writeError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: message, Details: details},
	})
}

func writeFetchError(c *gin.Context, err error) {
	var pe *data.PolygonError
	if errors.As(err, &pe) {
		status := http.StatusBadRequest
		switch pe.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			status = http.StatusUnauthorized
		case http.StatusTooManyRequests:
			status = http.StatusTooManyRequests
		}
		writeError(c, status, pe.Code, pe.Message, map[string]interface{}{
			"status_code": pe.StatusCode,
			"retry_after": pe.RetryAfter,
		})
		return
	}
	writeError(c, http.StatusBadRequest, "DATA_FETCH_ERROR", err.Error(), nil)
}

func writeEngineError(c *gin.Context, err error) {
	var de *engine.DataError
	if errors.As(err, &de) {
		writeError(c, http.StatusUnprocessableEntity, "DATA_INTEGRITY", de.Error(), map[string]interface{}{
			"tick_index": de.Index,
		})
		return
	}
	writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error(), nil)
}
