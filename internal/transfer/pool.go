package transfer

import (
	"context"
	"fmt"
	"io"

	"github.com/rpull/rpull/internal/remote"
	"github.com/rpull/rpull/internal/utils"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// runPool downloads every not-yet-done chunk through a bounded worker
// pool. Chunks are admitted in index order but may complete out of
// order. The first fatal error cancels the group context: no new chunks
// are admitted, in-flight fetches abort, and the error propagates.
func runPool(ctx context.Context, target remote.Target, sink *Sink, state *State, maxConcurrency int) error {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i := range state.Chunks {
		chunk := &state.Chunks[i]
		if chunk.Done {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return downloadChunk(ctx, target, sink, state, chunk)
		})
	}
	return g.Wait()
}

func downloadChunk(ctx context.Context, target remote.Target, sink *Sink, state *State, chunk *Chunk) error {
	body, err := target.FetchRange(ctx, chunk.Offset, chunk.Length)
	if err != nil {
		return fmt.Errorf("error fetching chunk %d: %w", chunk.Index, err)
	}
	defer body.Close()

	buffer := make([]byte, utils.DefaultBufferSize)
	var written int64
	for {
		bytesRead, readErr := body.Read(buffer)
		if bytesRead > 0 {
			// A stream yielding more than the requested range must never
			// write past the chunk boundary into a neighbor's range
			if written+int64(bytesRead) > chunk.Length {
				return fmt.Errorf("chunk %d overran its range: server sent more than %d bytes", chunk.Index, chunk.Length)
			}
			if _, writeErr := sink.WriteAt(buffer[:bytesRead], chunk.Offset+written); writeErr != nil {
				return fmt.Errorf("error writing chunk %d: %w", chunk.Index, writeErr)
			}
			written += int64(bytesRead)
			state.AddProgress(chunk.Index, int64(bytesRead))
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return fmt.Errorf("error reading chunk %d: %w", chunk.Index, readErr)
		}
	}
	if written != chunk.Length {
		return fmt.Errorf("chunk %d size mismatch: expected %d bytes, got %d", chunk.Index, chunk.Length, written)
	}
	chunk.Done = true
	log.Debug().Str("op", "transfer/pool").Msgf("Chunk %d complete (%d bytes at offset %d)", chunk.Index, written, chunk.Offset)
	return nil
}
