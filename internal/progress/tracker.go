// Package progress renders a live single-line status for a running
// transfer. It only reads shared counters; skipping it never affects
// transfer correctness.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rpull/rpull/internal/output"
	"github.com/rpull/rpull/internal/utils"
)

// Source exposes the live downloaded-byte total of a transfer.
type Source interface {
	Downloaded() int64
}

// Sample is a point-in-time view of transfer progress, recomputed each
// tick and never stored.
type Sample struct {
	Downloaded    int64
	Elapsed       time.Duration
	Percent       float64
	ThroughputBps float64
	ETA           time.Duration
	ETAKnown      bool
}

// Compute derives a Sample. Throughput counts only bytes fetched this
// run (downloaded minus the pre-existing baseline); ETA is unknown until
// throughput is positive.
func Compute(downloaded, totalLength, baseline int64, elapsed time.Duration) Sample {
	s := Sample{Downloaded: downloaded, Elapsed: elapsed}
	if totalLength > 0 {
		s.Percent = float64(downloaded) / float64(totalLength) * 100
	}
	if elapsed > 0 {
		s.ThroughputBps = float64(downloaded-baseline) / elapsed.Seconds()
	}
	if s.ThroughputBps > 0 {
		remaining := float64(totalLength - downloaded)
		s.ETA = time.Duration(remaining / s.ThroughputBps * float64(time.Second))
		s.ETAKnown = true
	}
	return s
}

type Options struct {
	Source              Source
	TotalLength         int64
	BytesAlreadyPresent int64
	Label               string
	Interval            time.Duration // default 500ms
	Out                 io.Writer     // default os.Stdout
}

// Tracker periodically samples a Source and rewrites one status line.
type Tracker struct {
	opts     Options
	start    time.Time
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewTracker(opts Options) *Tracker {
	if opts.Interval == 0 {
		opts.Interval = 500 * time.Millisecond
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Tracker{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the display loop. It terminates on its own once the
// source reaches TotalLength, or when Stop is called.
func (t *Tracker) Start() {
	t.start = time.Now()
	go t.loop()
}

// Stop ends the display loop and waits for the final line to render.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
	<-t.doneCh
}

func (t *Tracker) loop() {
	defer close(t.doneCh)
	ticker := time.NewTicker(t.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sample := t.sample()
			t.render(sample, false)
			if sample.Downloaded >= t.opts.TotalLength {
				t.render(sample, true)
				return
			}
		case <-t.stopCh:
			t.render(t.sample(), true)
			return
		}
	}
}

func (t *Tracker) sample() Sample {
	return Compute(t.opts.Source.Downloaded(), t.opts.TotalLength, t.opts.BytesAlreadyPresent, time.Since(t.start))
}

func (t *Tracker) render(s Sample, final bool) {
	label := t.opts.Label
	if len(label) > 25 {
		label = "..." + label[len(label)-22:]
	}
	eta := "calculating..."
	if s.ETAKnown {
		eta = utils.FormatETA(s.ETA)
	}
	// Shrink the bar on narrow terminals so the line never wraps
	barWidth := min(30, max(10, output.TerminalWidth()-60))
	sessionBytes := s.Downloaded - t.opts.BytesAlreadyPresent
	line := fmt.Sprintf("%s: %s %s/%s %s ETA: %s",
		label,
		output.ProgressBar(s.Downloaded, t.opts.TotalLength, barWidth),
		utils.FormatBytes(uint64(s.Downloaded)),
		utils.FormatBytes(uint64(t.opts.TotalLength)),
		utils.FormatSpeed(sessionBytes, s.Elapsed.Seconds()),
		eta,
	)
	fmt.Fprintf(t.opts.Out, "\r\033[K%s", line)
	if final {
		fmt.Fprintln(t.opts.Out)
	}
}
