package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/ecsa/internal/models"
	"github.com/spacesedan/ecsa/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAnalyzer struct {
	res *pipeline.Result
	err error
	got pipeline.Request
}

func (m *mockAnalyzer) Run(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	m.got = req
	return m.res, m.err
}

func uploadRequest(t *testing.T, transcript, ticker, date string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if transcript != "" {
		part, err := w.CreateFormFile("transcript", "call.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte(transcript))
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("ticker", ticker))
	require.NoError(t, w.WriteField("date", date))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func okResult() *pipeline.Result {
	return &pipeline.Result{
		Report: &models.AnalysisReport{
			RunID:    "run-1",
			Ticker:   "AAPL",
			CallDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
			Warnings: []string{"market_lookup: no data"},
		},
		PDF: []byte("%PDF-1.3 test"),
	}
}

func TestHandleAnalyzeReturnsPDF(t *testing.T) {
	analyzer := &mockAnalyzer{res: okResult()}
	srv := NewServer(":0", analyzer, nil)

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, uploadRequest(t, "Revenue grew.", "aapl", "2024-05-02"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="AAPL_ECSA_Report_2024-05-02.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "run-1", rec.Header().Get(HEADER_RUN_ID))
	assert.Equal(t, "1", rec.Header().Get(HEADER_WARNINGS))
	assert.Equal(t, "%PDF-1.3 test", rec.Body.String())

	assert.Equal(t, "Revenue grew.", analyzer.got.Transcript)
	assert.Equal(t, "aapl", analyzer.got.Ticker)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), analyzer.got.CallDate)
}

func TestHandleAnalyzeBadDate(t *testing.T) {
	analyzer := &mockAnalyzer{res: okResult()}
	srv := NewServer(":0", analyzer, nil)

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, uploadRequest(t, "Revenue grew.", "AAPL", "05/02/2024"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, analyzer.got.Transcript, "analysis must not run")
}

func TestHandleAnalyzeValidationError(t *testing.T) {
	analyzer := &mockAnalyzer{err: errors.Join(pipeline.ErrInvalidRequest, errors.New("Transcript (required)"))}
	srv := NewServer(":0", analyzer, nil)

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, uploadRequest(t, "", "AAPL", "2024-05-02"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Transcript")
}

func TestHandleAnalyzeStageFailure(t *testing.T) {
	analyzer := &mockAnalyzer{err: &pipeline.StageError{State: pipeline.StateScoring, Err: errors.New("model crashed: secret detail")}}
	srv := NewServer(":0", analyzer, nil)

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, uploadRequest(t, "Revenue grew.", "AAPL", "2024-05-02"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "analysis failed during scoring", body["error"])
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestHandleAnalyzeNotMultipart(t *testing.T) {
	srv := NewServer(":0", &mockAnalyzer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"ticker":"AAPL"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := NewServer(":0", &mockAnalyzer{}, &healthy)

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["llm_healthy"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := NewServer(":0", &mockAnalyzer{}, nil)

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
