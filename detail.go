package kuaishou

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// GetSpecifiedVideos fetches the detail record for every configured video ID
// with bounded concurrency, persists the batch, and optionally collects
// comments. A video that fails to fetch is logged and skipped; one bad ID
// never sinks the batch.
func (s *Scraper) GetSpecifiedVideos(ctx context.Context) error {
	var (
		mu     sync.Mutex
		videos []Video
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for _, id := range s.config.VideoIDList {
		id := id
		g.Go(func() error {
			r := s.client.VideoDetail(gctx, id)
			switch r.Status {
			case StatusOK:
				mu.Lock()
				videos = append(videos, r.Value)
				mu.Unlock()
			case StatusFailed:
				logger.Warn().Err(r.Err).Str("video_id", id).Msg("video detail failed")
			default:
				logger.Warn().Str("video_id", id).Msg("video detail unavailable")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(videos) == 0 {
		logger.Warn().Msg("no video details collected")
		return nil
	}

	videos = s.applyOutputPolicy(videos)
	if err := s.store.SaveJSON(videos, "detail", "video_infos.json"); err != nil {
		return err
	}
	logger.Info().Int("videos", len(videos)).Msg("video details saved")

	if s.config.GetComments {
		s.batchFetchComments(ctx, videos, "detail")
	}
	return nil
}
