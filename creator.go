package kuaishou

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// GetCreatorsAndVideos walks each configured creator: resolve the handle to a
// platform ID, persist the profile, then page through the creator's video
// feed. Creators run sequentially for the same pacing reason searches do.
func (s *Scraper) GetCreatorsAndVideos(ctx context.Context) error {
	filter := s.videoFilter()

	for _, handle := range s.config.CreatorIDList {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		userID, err := s.ResolveUserID(ctx, handle)
		if err != nil {
			logger.Warn().Err(err).Str("creator", handle).Msg("creator resolution failed, skipping")
			continue
		}

		if r := s.client.UserProfile(ctx, userID); r.Status == StatusOK {
			if err := s.store.SaveJSON(r.Value, "creator", userID, "creator_info.json"); err != nil {
				logger.Warn().Err(err).Str("user_id", userID).Msg("save creator profile failed")
			}
		} else {
			logger.Warn().Str("user_id", userID).Msg("creator profile unavailable")
		}

		videos := paginate(ctx, paginateOptions[Video]{
			fetch: func(ctx context.Context, cursor string) Result[Page[Video]] {
				return s.client.UserVideos(ctx, userID, cursor)
			},
			filter:         filter,
			pageCap:        s.config.MaxPages,
			interPageDelay: time.Second,
		})

		if len(videos) == 0 {
			logger.Warn().Str("user_id", userID).Msg("no creator videos collected")
			continue
		}

		videos = s.applyOutputPolicy(videos)
		if err := s.store.SaveJSON(videos, "creator", userID, "video_list.json"); err != nil {
			logger.Error().Err(err).Str("user_id", userID).Msg("save creator videos failed")
			continue
		}
		logger.Info().Str("user_id", userID).Int("videos", len(videos)).Msg("creator videos saved")

		if s.config.GetVideoDetail {
			s.fetchCreatorVideoDetails(ctx, userID, videos)
		}
		if s.config.GetComments {
			s.batchFetchComments(ctx, videos, "creator", userID)
		}
	}
	return nil
}

// fetchCreatorVideoDetails fetches the full detail record for each collected
// video with bounded concurrency and persists one file per video. Listing
// entries carry fewer fields than the detail endpoint, so this is where view
// counts and play URLs come from.
func (s *Scraper) fetchCreatorVideoDetails(ctx context.Context, userID string, videos []Video) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for _, v := range videos {
		v := v
		g.Go(func() error {
			r := s.client.VideoDetail(ctx, v.ID)
			if r.Status != StatusOK {
				logger.Warn().Str("video_id", v.ID).Err(r.Err).Msg("creator video detail unavailable")
				return nil
			}
			detail := s.applyOutputPolicy([]Video{r.Value})
			if err := s.store.SaveJSON(detail[0], "creator", userID, "details", v.ID+".json"); err != nil {
				logger.Warn().Err(err).Str("video_id", v.ID).Msg("save video detail failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}
