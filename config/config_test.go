package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "CLASSIFIER_BACKEND", "LLM_TIMEOUT", "LLM_BASE_URL", "LLM_MODEL", "VALKEY_INIT_ADDRESS", "VALKEY_TLS")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.x.ai/v1", cfg.LLMBaseURL)
	assert.Equal(t, "grok-3", cfg.LLMModel)
	assert.Equal(t, 300*time.Second, cfg.LLMTimeout)
	assert.Equal(t, BACKEND_ONNX, cfg.ClassifierBackend)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CLASSIFIER_BACKEND", "remote")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("VALKEY_INIT_ADDRESS", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BACKEND_REMOTE, cfg.ClassifierBackend)
	assert.Equal(t, 45*time.Second, cfg.LLMTimeout)
	assert.True(t, cfg.CacheEnabled())
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("CLASSIFIER_BACKEND", "gpu")

	_, err := Load()
	assert.ErrorContains(t, err, "CLASSIFIER_BACKEND")
}
