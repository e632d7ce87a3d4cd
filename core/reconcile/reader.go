package reconcile

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ReaderConfig controls pagination and retries.
type ReaderConfig struct {
	// PageSize is the number of records requested per page.
	PageSize int
	// MaxAttempts bounds the fetches of one page, including the first one.
	MaxAttempts int
	// Backoff is the pause between two attempts of the same page.
	Backoff time.Duration
}

const (
	defaultPageSize    = 500
	defaultMaxAttempts = 3
)

// Reader turns a PageFetcher into a lazy sequence of record pages.
type Reader struct {
	fetcher PageFetcher
	start   Cursor
	cfg     ReaderConfig
	logger  *zap.Logger

	truncated bool
	err       error
}

// NewReader creates a reader starting at start.
func NewReader(fetcher PageFetcher, start Cursor, cfg ReaderConfig, logger *zap.Logger) *Reader {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{fetcher: fetcher, start: start, cfg: cfg, logger: logger}
}

// Pages returns the forward-only sequence of non-empty pages.
//
// The sequence ends on an empty page, when the source reports no more pages,
// when one page fails MaxAttempts times in a row, or when ctx is done. Nothing
// is raised to the caller; Err reports why the stream stopped early and
// Truncated tells a failing source apart from a cancellation.
// Ranging over Pages again restarts from the start cursor.
func (r *Reader) Pages(ctx context.Context) iter.Seq[[]RawRecord] {
	return func(yield func([]RawRecord) bool) {
		r.truncated = false
		r.err = nil

		cursor := r.start
		for {
			page, err := r.fetch(ctx, cursor)
			if err != nil {
				r.err = err
				r.truncated = ctx.Err() == nil
				return
			}
			if len(page.Records) == 0 {
				return
			}
			if !yield(page.Records) {
				return
			}
			if !page.HasMore {
				return
			}
			cursor = page.Next
		}
	}
}

// Truncated reports whether the last iteration stopped on a failing page.
// A canceled iteration is not truncated.
func (r *Reader) Truncated() bool {
	return r.truncated
}

// Err returns the error that stopped the last iteration early, if any.
func (r *Reader) Err() error {
	return r.err
}

// fetch retries the same cursor under a constant backoff bounded by
// MaxAttempts. A canceled context is returned as is, never as a truncation.
func (r *Reader) fetch(ctx context.Context, cursor Cursor) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.cfg.Backoff), uint64(r.cfg.MaxAttempts-1)),
		ctx,
	)
	attempt := 0
	page, err := backoff.RetryWithData(func() (Page, error) {
		attempt++
		page, err := r.fetcher.FetchPage(ctx, cursor, r.cfg.PageSize)
		if err != nil {
			r.logger.Warn("Page fetch failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", r.cfg.MaxAttempts),
				zap.Int("page", cursor.Page),
				zap.Int("offset", cursor.Offset),
				zap.Int64("after", cursor.After),
				zap.Error(err),
			)
		}
		return page, err
	}, policy)
	if err == nil {
		return page, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Page{}, ctxErr
	}
	return Page{}, fmt.Errorf("%w after %d attempts: %w", ErrStreamTruncated, attempt, err)
}
