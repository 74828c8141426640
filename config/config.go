package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BACKEND_ONNX   = "onnx"
	BACKEND_REMOTE = "remote"
	BACKEND_NONE   = "none"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Fixed credential for the chat-completion API.
	LLMAPIKey  string        `envconfig:"XAI_API_KEY"`
	LLMBaseURL string        `envconfig:"LLM_BASE_URL" default:"https://api.x.ai/v1"`
	LLMModel   string        `envconfig:"LLM_MODEL" default:"grok-3"`
	LLMTimeout time.Duration `envconfig:"LLM_TIMEOUT" default:"300s"`

	LexiconPath string `envconfig:"LM_DICTIONARY_PATH" default:"LMMD.csv"`

	ClassifierBackend   string        `envconfig:"CLASSIFIER_BACKEND" default:"onnx"`
	ClassifierModel     string        `envconfig:"CLASSIFIER_MODEL" default:"ProsusAI/finbert"`
	ModelDir            string        `envconfig:"MODEL_DIR" default:"./models"`
	HFToken             string        `envconfig:"HF_API_TOKEN"`
	HFClassifierURL     string        `envconfig:"HF_CLASSIFIER_ENDPOINT" default:"https://api-inference.huggingface.co/models/ProsusAI/finbert"`
	HFClassifierTimeout time.Duration `envconfig:"HF_CLASSIFIER_TIMEOUT" default:"60s"`

	MarketBaseURL string `envconfig:"MARKET_BASE_URL" default:"https://query1.finance.yahoo.com"`

	ValkeyAddr     string `envconfig:"VALKEY_INIT_ADDRESS"`
	ValkeyPassword string `envconfig:"VALKEY_PASSWORD"`
	ValkeyTLS      bool   `envconfig:"VALKEY_TLS" default:"false"`

	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads the process environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	switch cfg.ClassifierBackend {
	case BACKEND_ONNX, BACKEND_REMOTE, BACKEND_NONE:
	default:
		return nil, fmt.Errorf("unknown CLASSIFIER_BACKEND %q", cfg.ClassifierBackend)
	}

	if cfg.LLMTimeout <= 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT must be positive, got %s", cfg.LLMTimeout)
	}

	return &cfg, nil
}

// CacheEnabled reports whether a Valkey address was configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyAddr != ""
}
