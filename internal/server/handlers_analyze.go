package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spacesedan/ecsa/internal/pipeline"
	"github.com/spacesedan/ecsa/internal/report"
)

const (
	HEADER_RUN_ID   = "X-ECSA-Run-ID"
	HEADER_WARNINGS = "X-ECSA-Warnings"
)

// handleAnalyze accepts a multipart form with a transcript file, a ticker and
// a call date (YYYY-MM-DD) and responds with the PDF report.
func (s *Server) handleAnalyze(c echo.Context) error {
	transcript, err := readTranscript(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	req := pipeline.Request{
		Transcript: transcript,
		Ticker:     strings.TrimSpace(c.FormValue("ticker")),
	}
	if raw := strings.TrimSpace(c.FormValue("date")); raw != "" {
		req.CallDate, err = time.Parse(time.DateOnly, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be formatted YYYY-MM-DD"})
		}
	}

	res, err := s.analyzer.Run(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		slog.Error("[Server] Analysis failed",
			slog.String("ticker", req.Ticker),
			slog.String("error", err.Error()))

		msg := "analysis failed"
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			msg = fmt.Sprintf("analysis failed during %s", stageErr.State)
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": msg})
	}

	name := report.FileName(res.Report.Ticker, res.Report.CallDate)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	c.Response().Header().Set(HEADER_RUN_ID, res.Report.RunID)
	c.Response().Header().Set(HEADER_WARNINGS, strconv.Itoa(len(res.Report.Warnings)))
	return c.Blob(http.StatusOK, "application/pdf", res.PDF)
}

func readTranscript(c echo.Context) (string, error) {
	fh, err := c.FormFile("transcript")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", fmt.Errorf("invalid upload: %w", err)
	}
	if fh.Size > MAX_UPLOAD_BYTES {
		return "", fmt.Errorf("transcript exceeds %d bytes", MAX_UPLOAD_BYTES)
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MAX_UPLOAD_BYTES+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MAX_UPLOAD_BYTES {
		return "", fmt.Errorf("transcript exceeds %d bytes", MAX_UPLOAD_BYTES)
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
