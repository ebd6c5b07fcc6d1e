// Package transfer implements the resumable, concurrent, range-based
// download engine: range planning from existing local file state, a
// bounded worker pool writing disjoint byte ranges into a shared output
// file, and orchestration around both.
package transfer

import "github.com/rpull/rpull/internal/utils"

// Chunk is a contiguous byte range of the target object, the unit of
// parallel work. Chunks partition [0, totalLength); only the last chunk
// may be shorter than the nominal chunk size.
type Chunk struct {
	Index  int
	Offset int64
	Length int64
	Done   bool
}

// Plan computes the ordered chunk list for a transfer. A chunk is marked
// Done when its entire byte range is already covered by bytes previously
// written to the local file; coverage is judged by length alone, the
// existing prefix is never content-verified.
func Plan(totalLength, existingLength, chunkSize int64) []Chunk {
	if chunkSize <= 0 {
		chunkSize = utils.DefaultChunkSize
	}
	if totalLength <= 0 {
		return nil
	}
	totalChunks := (totalLength + chunkSize - 1) / chunkSize
	chunks := make([]Chunk, 0, totalChunks)
	for i := int64(0); i < totalChunks; i++ {
		offset := i * chunkSize
		length := min(chunkSize, totalLength-offset)
		chunks = append(chunks, Chunk{
			Index:  int(i),
			Offset: offset,
			Length: length,
			Done:   existingLength >= offset+length,
		})
	}
	return chunks
}
