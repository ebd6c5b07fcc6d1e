// Package remote abstracts range-capable remote objects. A Target reports
// its total byte length once and serves arbitrary [offset, offset+length)
// windows as streams.
package remote

import (
	"context"
	"errors"
	"io"
)

// Target is a remote object that supports ranged reads.
type Target interface {
	// Length returns the total byte size of the object.
	Length(ctx context.Context) (int64, error)
	// FetchRange returns a stream for the [offset, offset+length) window.
	FetchRange(ctx context.Context, offset, length int64) (io.ReadCloser, error)
}

// ErrNotFound indicates the object does not exist or credentials were rejected.
var ErrNotFound = errors.New("object not found or access denied")

// ErrRangeUnavailable indicates the requested byte range cannot be served.
var ErrRangeUnavailable = errors.New("requested byte range unavailable")
