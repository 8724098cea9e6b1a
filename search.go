package kuaishou

import (
	"context"
	"time"
)

// Search runs the keyword flow: for each configured keyword, walk the search
// feed up to max_pages, apply the video filter, persist the result list, and
// optionally collect comments. Keywords run sequentially so the platform sees
// one browsing session, not a burst.
func (s *Scraper) Search(ctx context.Context) error {
	filter := s.videoFilter()

	for _, keyword := range s.config.SearchKeywords {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Info().Str("keyword", keyword).Msg("searching")

		videos := paginate(ctx, paginateOptions[Video]{
			fetch: func(ctx context.Context, cursor string) Result[Page[Video]] {
				return s.client.SearchVideos(ctx, keyword, cursor)
			},
			filter:         filter,
			pageCap:        s.config.MaxPages,
			interPageDelay: time.Second,
		})

		if len(videos) == 0 {
			logger.Warn().Str("keyword", keyword).Msg("no videos collected")
			continue
		}

		videos = s.applyOutputPolicy(videos)
		if err := s.store.SaveJSON(videos, "search", keyword, "video_list.json"); err != nil {
			logger.Error().Err(err).Str("keyword", keyword).Msg("save search results failed")
			continue
		}
		logger.Info().Str("keyword", keyword).Int("videos", len(videos)).Msg("search results saved")

		if s.config.GetComments {
			s.batchFetchComments(ctx, videos, "search", keyword)
		}
	}
	return nil
}
