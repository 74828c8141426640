package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatches(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batches(items, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, Batches(items, 10))
	assert.Nil(t, Batches([]int{}, 3))
}

func TestBatchesDefaultSize(t *testing.T) {
	items := make([]string, BATCH_SIZE+1)

	got := Batches(items, 0)
	assert.Len(t, got, 2)
	assert.Len(t, got[0], BATCH_SIZE)
	assert.Len(t, got[1], 1)
}
