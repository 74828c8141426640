package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/ecsa/internal/utils"
)

const finbertPipelineName = "finbertSentimentPipeline"

var (
	hugotInstance *HugotClassifier
	hugotErr      error
	hugotOnce     sync.Once
)

// HugotClassifier runs a text-classification model locally through ONNX
// Runtime.
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.Mutex
}

// GetHugotClassifier loads the model once per process, downloading it into
// modelDir when it is not there yet.
func GetHugotClassifier(modelName, modelDir string) (*HugotClassifier, error) {
	hugotOnce.Do(func() {
		hugotInstance, hugotErr = newHugotClassifier(modelName, modelDir)
	})
	return hugotInstance, hugotErr
}

func newHugotClassifier(modelName, modelDir string) (*HugotClassifier, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[HugotClassifier] Model not found, downloading...",
			slog.String("model", modelName))
		modelPath, err = hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to download model %s: %w", modelName, err)
		}
		slog.Info("[HugotClassifier] Model downloaded successfully", slog.String("path", modelPath))
	} else {
		slog.Info("[HugotClassifier] Using existing model", slog.String("path", modelPath))
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      finbertPipelineName,
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to initialize classification pipeline: %w", err)
	}

	return &HugotClassifier{session: session, pipeline: pipeline}, nil
}

// Classify returns the top label for each sentence.
func (h *HugotClassifier) Classify(ctx context.Context, sentences []string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	labels := make([]string, 0, len(sentences))
	batches := utils.Batches(sentences, utils.BATCH_SIZE)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		utils.LogBatchProcessing("finbert", i, len(batches), len(batch))

		output, err := h.pipeline.RunPipeline(batch)
		if err != nil {
			return nil, fmt.Errorf("classification failed: %w", err)
		}
		if len(output.ClassificationOutputs) != len(batch) {
			return nil, fmt.Errorf("classification returned %d outputs for %d inputs",
				len(output.ClassificationOutputs), len(batch))
		}

		for _, candidates := range output.ClassificationOutputs {
			labels = append(labels, topLabel(candidates))
		}
	}

	slog.Info("[HugotClassifier] Classified sentences",
		slog.Int("sentences", len(sentences)),
		slog.Duration("elapsed", time.Since(start)))

	return labels, nil
}

func (h *HugotClassifier) Close() error {
	return h.session.Destroy()
}

func topLabel(candidates []pipelines.ClassificationOutput) string {
	var best pipelines.ClassificationOutput
	for i, c := range candidates {
		if i == 0 || c.Score > best.Score {
			best = c
		}
	}
	return best.Label
}
