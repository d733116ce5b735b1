package batch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_EvenSplit(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	chunks := Chunk(items, 2)

	require.Len(t, chunks, 3)
	assert.Equal(t, []int{1, 2}, chunks[0])
	assert.Equal(t, []int{3, 4}, chunks[1])
	assert.Equal(t, []int{5, 6}, chunks[2])
}

func TestChunk_RemainderInLastChunk(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	chunks := Chunk(items, 3)

	require.Len(t, chunks, 2)
	assert.Equal(t, []int{1, 2, 3}, chunks[0])
	assert.Equal(t, []int{4, 5}, chunks[1])
}

func TestChunk_NonPositiveSizeReturnsSingleChunk(t *testing.T) {
	items := []int{1, 2, 3}

	for _, size := range []int{0, -1} {
		chunks := Chunk(items, size)
		require.Len(t, chunks, 1, "chunkSize=%d", size)
		assert.Equal(t, items, chunks[0])
	}
}

func TestChunk_NilInput(t *testing.T) {
	assert.Nil(t, Chunk[int](nil, 3))
}

func TestChunk_EmptyInput(t *testing.T) {
	assert.Empty(t, Chunk([]int{}, 3))
}

func TestChunk_OrderAndCountPreserved(t *testing.T) {
	var items []string
	for i := 0; i < 17; i++ {
		items = append(items, fmt.Sprintf("op-%d", i))
	}

	for _, size := range []int{1, 2, 5, 16, 17, 100} {
		chunks := Chunk(items, size)

		var rejoined []string
		for i, chunk := range chunks {
			if i < len(chunks)-1 {
				assert.Len(t, chunk, size)
			}
			rejoined = append(rejoined, chunk...)
		}
		assert.Equal(t, items, rejoined, "chunkSize=%d", size)
		assert.Len(t, chunks, (len(items)+size-1)/size, "chunkSize=%d", size)
	}
}

func TestChunk_FiveTransfersIntoBatchesOfThree(t *testing.T) {
	operations := make([]*Operation, 5)
	for i := range operations {
		operations[i] = &Operation{
			ID:   fmt.Sprintf("transfer-%d", i),
			Type: OpTransfer,
		}
	}

	batches := Chunk(operations, 3)

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 2)

	seen := make(map[string]bool)
	total := 0
	for _, b := range batches {
		for _, op := range b {
			assert.False(t, seen[op.ID], "operation %s appears twice", op.ID)
			seen[op.ID] = true
			total++
		}
	}
	assert.Equal(t, 5, total)
}
