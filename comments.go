package kuaishou

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// fetchComments collects root comments for a video, one page at a time, then
// expands replies for any root comment whose reply list was truncated.
func (s *Scraper) fetchComments(ctx context.Context, videoID string) []Comment {
	comments := paginate(ctx, paginateOptions[Comment]{
		fetch: func(ctx context.Context, cursor string) Result[Page[Comment]] {
			return s.client.VideoComments(ctx, videoID, cursor)
		},
		pageCap:        s.config.MaxCommentPages,
		interPageDelay: time.Second,
	})

	for i := range comments {
		if comments[i].SubCommentsCursor == "" || comments[i].SubCommentsCursor == cursorNoMore {
			continue
		}
		more := s.fetchSubComments(ctx, videoID, comments[i].ID, comments[i].SubCommentsCursor)
		comments[i].SubComments = append(comments[i].SubComments, more...)
		comments[i].SubCommentsCursor = ""
	}
	return comments
}

// fetchSubComments walks the reply feed under one root comment, picking up
// where the root-comment page left off. Going through the pagination engine
// gives replies the same blocked-retry treatment as every other feed.
func (s *Scraper) fetchSubComments(ctx context.Context, videoID, rootID, startCursor string) []Comment {
	return paginate(ctx, paginateOptions[Comment]{
		fetch: func(ctx context.Context, cursor string) Result[Page[Comment]] {
			return s.client.SubComments(ctx, videoID, rootID, cursor)
		},
		startCursor: startCursor,
		pageCap:     s.config.MaxCommentPages,
	})
}

// batchFetchComments fans comment collection out over videos with the
// configured concurrency cap and persists one file per video under the
// calling flow's save path (basePath + "comments"). Individual failures are
// logged; the batch always runs to completion.
func (s *Scraper) batchFetchComments(ctx context.Context, videos []Video, basePath ...string) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for _, v := range videos {
		v := v
		g.Go(func() error {
			comments := s.fetchComments(ctx, v.ID)
			if len(comments) == 0 {
				return nil
			}
			parts := append(append([]string{}, basePath...), "comments", v.ID+".json")
			if err := s.store.SaveJSON(comments, parts...); err != nil {
				logger.Warn().Err(err).Str("video_id", v.ID).Msg("save comments failed")
				return nil
			}
			logger.Info().Str("video_id", v.ID).Int("comments", len(comments)).Msg("comments saved")
			return nil
		})
	}
	_ = g.Wait()
}
