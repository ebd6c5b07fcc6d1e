package transfer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rpull/rpull/internal/progress"
	"github.com/rpull/rpull/internal/remote"
	"github.com/rpull/rpull/internal/utils"
)

type Options struct {
	Connections      int           // max concurrent chunk downloads, default 1
	ChunkSize        int64         // default utils.DefaultChunkSize
	ProgressInterval time.Duration // default 500ms
	ProgressOut      io.Writer     // default os.Stdout
	Quiet            bool          // suppress the live status line
}

// Run executes a full transfer: resolve local state, fetch the remote
// length, plan chunks, then run the worker pool and progress tracker
// concurrently until done. Bytes already on disk are trusted by length
// and skipped. Any engine failure aborts the transfer and surfaces as a
// single error; partial bytes stay on disk for a later resume.
func Run(ctx context.Context, target remote.Target, outputPath string, opts Options) error {
	if opts.Connections < 1 {
		opts.Connections = 1
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = utils.DefaultChunkSize
	}
	id := uuid.NewString()[:8]
	logger := utils.GetLogger("transfer").With().Str("id", id).Logger()

	existingLength, err := ExistingLength(outputPath)
	if err != nil {
		return err
	}
	totalLength, err := target.Length(ctx)
	if err != nil {
		return fmt.Errorf("error fetching object length: %w", err)
	}
	logger.Debug().Msgf("Object size %s, local bytes %s, chunk size %s, %d connections",
		humanize.IBytes(uint64(totalLength)), humanize.IBytes(uint64(existingLength)),
		humanize.IBytes(uint64(opts.ChunkSize)), opts.Connections)

	if existingLength >= totalLength {
		if totalLength == 0 {
			sink, err := OpenSink(outputPath)
			if err != nil {
				return err
			}
			if err := sink.Close(); err != nil {
				return err
			}
		}
		logger.Info().Msgf("%s already fully downloaded (%s)", outputPath, humanize.IBytes(uint64(totalLength)))
		return nil
	}

	state := NewState(totalLength, existingLength, opts.ChunkSize)
	sink, err := OpenSink(outputPath)
	if err != nil {
		return err
	}
	logger.Info().Msgf("Downloading %d of %d chunks to %s", state.Pending(), len(state.Chunks), outputPath)

	var tracker *progress.Tracker
	if !opts.Quiet {
		tracker = progress.NewTracker(progress.Options{
			Source:              state,
			TotalLength:         totalLength,
			BytesAlreadyPresent: state.BytesAlreadyPresent,
			Label:               outputPath,
			Interval:            opts.ProgressInterval,
			Out:                 opts.ProgressOut,
		})
		tracker.Start()
	}

	poolErr := runPool(ctx, target, sink, state, opts.Connections)
	if tracker != nil {
		tracker.Stop()
	}
	closeErr := sink.Close()
	if poolErr != nil {
		return poolErr
	}
	if closeErr != nil {
		return closeErr
	}
	if !state.Complete() {
		return fmt.Errorf("transfer incomplete: %d chunks still pending", state.Pending())
	}
	logger.Info().Msgf("Download complete: %s (%s)", outputPath, humanize.IBytes(uint64(totalLength)))
	return nil
}
