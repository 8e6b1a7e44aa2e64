package models

import "grid-backtest/internal/model"

// BacktestResponse wraps an engine result with a server-assigned run ID.
type BacktestResponse struct {
	RunID string `json:"run_id"`
	model.Result
}

// ErrorResponse represents an error response envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
