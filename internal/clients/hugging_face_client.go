package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/ecsa/internal/metrics"
	"github.com/spacesedan/ecsa/internal/models"
	"github.com/spacesedan/ecsa/internal/utils"
)

// HuggingFaceClient classifies sentences through a hosted inference endpoint.
type HuggingFaceClient struct {
	Client         *http.Client
	Endpoint       string
	Token          string
	InitialBackoff time.Duration
	BatchSize      int
}

func NewHuggingFaceClient(endpoint, token string, timeout time.Duration) *HuggingFaceClient {
	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.String("endpoint", endpoint),
		slog.Duration("timeout", timeout))
	return &HuggingFaceClient{
		Client: &http.Client{
			Timeout: timeout,
		},
		Endpoint:       endpoint,
		Token:          token,
		InitialBackoff: INITIAL_BACKOFF,
		BatchSize:      utils.BATCH_SIZE,
	}
}

// Classify returns the highest-scoring label for each sentence.
func (h *HuggingFaceClient) Classify(ctx context.Context, sentences []string) ([]string, error) {
	slog.Info("[HuggingFaceClient] Requesting sentence classification",
		slog.Int("sentences", len(sentences)))
	start := time.Now()

	labels := make([]string, 0, len(sentences))
	batches := utils.Batches(sentences, h.BatchSize)
	for i, batch := range batches {
		utils.LogBatchProcessing("remote-classifier", i, len(batches), len(batch))

		var result models.ClassificationResponse
		if err := h.postJSON(ctx, models.ClassificationRequest{Inputs: batch}, &result); err != nil {
			slog.Error("[HuggingFaceClient] Classification request failed",
				slog.Duration("elapsed", time.Since(start)))
			return nil, err
		}
		if len(result) != len(batch) {
			return nil, fmt.Errorf("classifier returned %d results for %d inputs", len(result), len(batch))
		}

		for _, candidates := range result {
			labels = append(labels, bestLabel(candidates))
		}
	}

	slog.Info("[HuggingFaceClient] Classification request successful",
		slog.Duration("elapsed", time.Since(start)))
	return labels, nil
}

func (h *HuggingFaceClient) DoWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.InitialBackoff

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)
		if h.Token != "" {
			req.Header.Set("Authorization", "Bearer "+h.Token)
		}

		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if resp != nil {
			resp.Body.Close()
		}
		if attempt == MAX_RETRIES-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}

	if err == nil {
		err = fmt.Errorf("server error: %s", errMsg(nil, resp))
	}
	return nil, err
}

// helper function for posting data to the inference endpoint
func (h *HuggingFaceClient) postJSON(ctx context.Context, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := h.DoWithRetry(ctx, body)
	if err != nil {
		metrics.RemoteCallsTotal.WithLabelValues("classifier", "error").Inc()
		slog.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", h.Endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RemoteCallsTotal.WithLabelValues("classifier", "error").Inc()
		slog.Error("[HuggingFaceClient] Unexpected status",
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		metrics.RemoteCallsTotal.WithLabelValues("classifier", "error").Inc()
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", h.Endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	metrics.RemoteCallsTotal.WithLabelValues("classifier", "ok").Inc()
	return nil
}

func bestLabel(candidates []models.ClassificationLabel) string {
	var best models.ClassificationLabel
	for i, c := range candidates {
		if i == 0 || c.Score > best.Score {
			best = c
		}
	}
	return best.Label
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
