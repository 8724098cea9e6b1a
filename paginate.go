package kuaishou

import (
	"context"
	"time"
)

// Cursor sentinel values. An empty cursor starts a run; the platform signals
// exhaustion with "" or "no_more".
const cursorStart = ""
const cursorNoMore = "no_more"

// Page is one fetched page of items plus the cursor for the next page.
type Page[T any] struct {
	Items  []T
	Cursor string
}

// fetchPageFunc fetches the page at the given cursor.
type fetchPageFunc[T any] func(ctx context.Context, cursor string) Result[Page[T]]

// paginateOptions parameterizes one pagination run.
type paginateOptions[T any] struct {
	// fetch retrieves one page; required.
	fetch fetchPageFunc[T]
	// startCursor begins the run mid-feed; empty starts from the top.
	startCursor string
	// filter keeps an item when it returns true; nil keeps everything.
	filter func(T) bool
	// pageCap bounds the number of pages walked.
	pageCap int
	// maxWanted bounds the number of collected items.
	maxWanted int
	// emptyStreakCap stops the run after this many consecutive pages whose
	// items all filtered out. Item filters (date window, like threshold) can
	// zero out many pages in a row without the feed being exhausted, so
	// stopping on the first empty page truncates valid results while never
	// stopping risks walking the whole feed.
	emptyStreakCap int
	// interPageDelay sleeps between successive pages.
	interPageDelay time.Duration
	// blockedBackoff overrides the cool-down hint from a Blocked result
	// when positive; used by tests to avoid real sleeps.
	blockedBackoff time.Duration
	// maxBlockedRetries bounds Blocked retries of a single cursor so a
	// permanently blocking platform cannot stall a run forever.
	maxBlockedRetries int
}

const (
	defaultEmptyStreakCap    = 3
	defaultMaxBlockedRetries = 3
)

// paginate walks a cursor-driven feed. Pages are fetched strictly in cursor
// order: each page's cursor comes from the prior response. Invariants:
//   - a cursor is consumed at most once per run, except when the fetch
//     reported Blocked, in which case the same cursor is retried after a
//     cool-down (the page was never served);
//   - a next-cursor equal to the cursor just fetched terminates the run
//     (the platform echoes the cursor instead of signaling exhaustion);
//   - Error and Empty terminate the run with whatever was collected.
func paginate[T any](ctx context.Context, opts paginateOptions[T]) []T {
	if opts.emptyStreakCap <= 0 {
		opts.emptyStreakCap = defaultEmptyStreakCap
	}
	if opts.maxBlockedRetries <= 0 {
		opts.maxBlockedRetries = defaultMaxBlockedRetries
	}

	var collected []T
	cursor := cursorStart
	if opts.startCursor != "" {
		cursor = opts.startCursor
	}
	emptyStreak := 0
	blockedRetries := 0

	for page := 1; opts.pageCap <= 0 || page <= opts.pageCap; {
		if opts.maxWanted > 0 && len(collected) >= opts.maxWanted {
			break
		}
		if ctx.Err() != nil {
			break
		}

		result := opts.fetch(ctx, cursor)

		switch result.Status {
		case StatusBlocked:
			blockedRetries++
			if blockedRetries > opts.maxBlockedRetries {
				logger.Warn().Int("page", page).Msg("giving up on blocked page")
				return capItems(collected, opts.maxWanted)
			}
			backoff := result.RetryAfter
			if opts.blockedBackoff > 0 {
				backoff = opts.blockedBackoff
			}
			logger.Info().
				Int("page", page).
				Dur("backoff", backoff).
				Msg("blocked, retrying same cursor after cool-down")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return capItems(collected, opts.maxWanted)
			}
			// Same cursor, do not advance.
			continue
		case StatusFailed:
			logger.Warn().Err(result.Err).Int("page", page).Msg("page fetch failed, stopping run")
			return capItems(collected, opts.maxWanted)
		case StatusEmpty:
			return capItems(collected, opts.maxWanted)
		}
		blockedRetries = 0

		kept := 0
		for _, item := range result.Value.Items {
			if opts.filter != nil && !opts.filter(item) {
				continue
			}
			collected = append(collected, item)
			kept++
		}

		if kept == 0 {
			emptyStreak++
			if emptyStreak >= opts.emptyStreakCap {
				logger.Debug().
					Int("streak", emptyStreak).
					Msg("empty-streak cap reached, stopping run")
				break
			}
		} else {
			emptyStreak = 0
		}

		next := result.Value.Cursor
		if next == cursorStart || next == cursorNoMore || next == cursor {
			break
		}
		cursor = next
		page++

		if opts.interPageDelay > 0 {
			select {
			case <-time.After(opts.interPageDelay):
			case <-ctx.Done():
				return capItems(collected, opts.maxWanted)
			}
		}
	}

	return capItems(collected, opts.maxWanted)
}

func capItems[T any](items []T, maxWanted int) []T {
	if maxWanted > 0 && len(items) > maxWanted {
		return items[:maxWanted]
	}
	return items
}
