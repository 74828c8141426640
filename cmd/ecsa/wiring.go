package main

import (
	"fmt"
	"log/slog"

	"github.com/spacesedan/ecsa/config"
	"github.com/spacesedan/ecsa/internal/clients"
	"github.com/spacesedan/ecsa/internal/lexicon"
	"github.com/spacesedan/ecsa/internal/llm"
	"github.com/spacesedan/ecsa/internal/market"
	"github.com/spacesedan/ecsa/internal/pipeline"
	"github.com/spacesedan/ecsa/internal/sentiment"
)

// app holds the process-wide collaborators shared by every run.
type app struct {
	pipeline *pipeline.Pipeline
	llm      *clients.OpenAIClient
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(cfg *config.Config, observer pipeline.Observer) (*app, error) {
	a := &app{}

	lex, err := lexicon.Shared(cfg.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load word lists: %w", err)
	}

	classifier, err := buildClassifier(cfg, a)
	if err != nil {
		slog.Warn("[Main] Classifier unavailable, FinBERT scores will be empty",
			slog.String("backend", cfg.ClassifierBackend),
			slog.String("error", err.Error()))
	}

	a.llm = clients.GetOpenAIClient(clients.OpenAIOptions{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})

	feed := clients.NewYahooClient(clients.WithYahooBaseURL(cfg.MarketBaseURL))
	var correlator *market.Correlator
	if cfg.CacheEnabled() {
		cache, err := clients.NewValkeyClient(clients.ValkeyOptions{
			Address:  cfg.ValkeyAddr,
			Password: cfg.ValkeyPassword,
			UseTLS:   cfg.ValkeyTLS,
		})
		if err != nil {
			slog.Warn("[Main] Price cache unavailable, continuing without it",
				slog.String("error", err.Error()))
			correlator = market.NewCorrelator(feed, nil)
		} else {
			a.closers = append(a.closers, cache.Close)
			correlator = market.NewCorrelator(feed, cache)
		}
	} else {
		correlator = market.NewCorrelator(feed, nil)
	}

	a.pipeline = pipeline.New(pipeline.Deps{
		Cleanser: llm.NewCleanser(a.llm),
		Scorer:   sentiment.Models{Classifier: classifier, Lexicon: lex},
		Market:   correlator,
		Narrator: llm.NewNarrator(a.llm),
		Observer: observer,
	})
	return a, nil
}

func buildClassifier(cfg *config.Config, a *app) (sentiment.Classifier, error) {
	switch cfg.ClassifierBackend {
	case config.BACKEND_ONNX:
		h, err := sentiment.GetHugotClassifier(cfg.ClassifierModel, cfg.ModelDir)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := h.Close(); err != nil {
				slog.Warn("[Main] Failed to close classifier session", slog.String("error", err.Error()))
			}
		})
		return h, nil
	case config.BACKEND_REMOTE:
		return clients.NewHuggingFaceClient(cfg.HFClassifierURL, cfg.HFToken, cfg.HFClassifierTimeout), nil
	default:
		return nil, sentiment.ErrClassifierUnavailable
	}
}

// progressObserver prints each stage the way the interactive surface reports it.
func progressObserver(_ string, state pipeline.State) {
	fmt.Println(state.Message())
}
