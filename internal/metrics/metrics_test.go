package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStageOutcomesCounter(t *testing.T) {
	c := StageOutcomesTotal.WithLabelValues("test_stage", "success")
	before := testutil.ToFloat64(c)

	c.Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestLLMHealthyGauge(t *testing.T) {
	LLMHealthy.Set(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(LLMHealthy))
	LLMHealthy.Set(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(LLMHealthy))
}
