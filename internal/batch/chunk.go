package batch

// Chunk partitions items into contiguous groups of size chunkSize, in
// order, with the last group possibly shorter. A chunkSize of zero or
// less returns everything in a single group; that is deliberate policy,
// not an error. A nil input yields a nil result.
func Chunk[T any](items []T, chunkSize int) [][]T {
	if items == nil {
		return nil
	}
	if chunkSize <= 0 {
		return [][]T{items}
	}

	chunks := make([][]T, 0, (len(items)+chunkSize-1)/chunkSize)
	for start := 0; start < len(items); start += chunkSize {
		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
