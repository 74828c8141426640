package utils

import "log/slog"

const BATCH_SIZE = 32

// Batches splits items into consecutive slices of at most size elements.
// The returned slices share the backing array of items.
func Batches[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = BATCH_SIZE
	}
	if len(items) == 0 {
		return nil
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}

func LogBatchProcessing(batchType string, index, total, size int) {
	slog.Debug("[Batch] Processing batch",
		slog.String("type", batchType),
		slog.Int("batch", index+1),
		slog.Int("of", total),
		slog.Int("batch_size", size))
}
