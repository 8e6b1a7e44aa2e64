package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-backtest/internal/api/models"
	"grid-backtest/internal/config"
)

func newTestRouter(t *testing.T, polygonURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Polygon.BaseURL = polygonURL
	t.Setenv("POLYGON_API_KEY", "test-key-0123456789")

	h := NewBacktestHandler(cfg, zerolog.Nop())
	r := gin.New()
	r.GET("/api/v1/backtest", h.Run)
	r.GET("/api/v1/export", h.Export)
	r.POST("/api/v1/backtest/csv", h.RunCSV)
	return r
}

func fakePolygon(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[
			{"participant_timestamp":1,"price":2.21},
			{"participant_timestamp":2,"price":2.22},
			{"participant_timestamp":3,"price":2.21},
			{"participant_timestamp":4,"price":2.22}
		]}`)
	}))
}

func TestBacktestEndpoint(t *testing.T) {
	srv := fakePolygon(t)
	defer srv.Close()
	r := newTestRouter(t, srv.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/backtest?symbol=LCID&start_ns=1&end_ns=100&rth=false&exact_only=true", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.BacktestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "LCID", resp.Symbol)
	assert.Equal(t, 4, resp.Samples)
	assert.Equal(t, 2, resp.Totals["2.21"])
	assert.Equal(t, 0, resp.Totals["2.22"])
}

func TestBacktestEndpointRequiresWindow(t *testing.T) {
	srv := fakePolygon(t)
	defer srv.Close()
	r := newTestRouter(t, srv.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/backtest?symbol=LCID", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_WINDOW", resp.Error.Code)
}

func TestExportEndpointWritesCSV(t *testing.T) {
	srv := fakePolygon(t)
	defer srv.Close()
	r := newTestRouter(t, srv.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/export?symbol=LCID&start_ns=1&end_ns=100&rth=false&exact_only=true", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "LCID_levels.csv")
	assert.Contains(t, w.Body.String(), "level,cycles\n")
	assert.Contains(t, w.Body.String(), "2.21,2\n")
}

func TestCSVUploadEndpoint(t *testing.T) {
	r := newTestRouter(t, "http://localhost:0")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "ticks.csv")
	require.NoError(t, err)
	fmt.Fprint(fw, "timestamp_ns,price\n1,2.21\n2,2.22\n3,2.21\n4,2.22\n")
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backtest/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.BacktestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Uploads default to exact-only with RTH off and the symbol TEST.
	assert.Equal(t, "TEST", resp.Symbol)
	assert.Equal(t, 2, resp.Totals["2.21"])
	assert.Equal(t, 4, resp.Samples)
}

func TestCSVUploadRejectsMissingFile(t *testing.T) {
	r := newTestRouter(t, "http://localhost:0")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("symbol", "LCID"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backtest/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "MISSING_FILE", resp.Error.Code)
}
