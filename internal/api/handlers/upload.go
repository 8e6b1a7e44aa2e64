package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"grid-backtest/internal/api/models"
	"grid-backtest/internal/data"
	"grid-backtest/internal/engine"
	"grid-backtest/internal/metrics"
	"grid-backtest/internal/model"
)

// RunCSV handles POST /api/v1/backtest/csv: runs the engine over an
// uploaded tick file, no provider calls. The run window spans the file's
// first to last tick; RTH defaults off and exact-only on, since uploads
// are usually curated print sequences.
func (h *BacktestHandler) RunCSV(c *gin.Context) {
	var form models.CSVBacktestForm
	if err := c.ShouldBind(&form); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "MISSING_FILE", "a CSV file part named \"file\" is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_FILE", err.Error(), nil)
		return
	}
	defer f.Close()

	ticks, err := data.ParseTicksCSV(f)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CSV", err.Error(), nil)
		return
	}

	gc, err := h.buildCSVGridConfig(form, ticks)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error(), nil)
		return
	}

	symbol := form.Symbol
	if symbol == "" {
		symbol = "TEST"
	}

	res, err := engine.Run(gc, symbol, ticks)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	metrics.BacktestsTotal.WithLabelValues(modeLabel(gc)).Inc()

	c.JSON(http.StatusOK, models.BacktestResponse{
		RunID:  uuid.NewString(),
		Result: res,
	})
}

func (h *BacktestHandler) buildCSVGridConfig(form models.CSVBacktestForm, ticks []model.Tick) (model.GridConfig, error) {
	stepStr := form.Step
	if stepStr == "" {
		stepStr = h.cfg.Engine.Step
	}
	spreadStr := form.Spread
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
		RTH:           false,
		ExactOnly:     true,
		WindowStartNS: ticks[0].TimestampNS,
		WindowEndNS:   ticks[len(ticks)-1].TimestampNS + 1,
		TopN:          h.cfg.Engine.TopLevels,
	}
	if form.RTH != nil {
		gc.RTH = *form.RTH
	}
	if form.ExactOnly != nil {
		gc.ExactOnly = *form.ExactOnly
	}

	if gc.LevelMin, err = parseOptionalDecimal(form.LevelMin, "level_min"); err != nil {
		return model.GridConfig{}, err
	}
	if gc.LevelMax, err = parseOptionalDecimal(form.LevelMax, "level_max"); err != nil {
		return model.GridConfig{}, err
	}
	if err := gc.Validate(); err != nil {
		return model.GridConfig{}, err
	}
	return gc, nil
}
