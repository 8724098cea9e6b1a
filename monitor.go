package kuaishou

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Monitor periodically re-crawls the configured user list and keeps
// timestamped snapshots of their profiles and latest videos. It blocks until
// the context is canceled. With schedule_enabled off it runs a single pass
// and returns.
func (s *Scraper) Monitor(ctx context.Context) error {
	s.monitorPass(ctx)

	if !s.config.ScheduleEnabled {
		return nil
	}

	interval := s.config.ScheduleInterval
	if interval <= 0 {
		interval = 60
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %dm", interval), func() {
		s.monitorPass(ctx)
	}); err != nil {
		return fmt.Errorf("schedule monitor pass: %w", err)
	}
	if _, err := c.AddFunc("@daily", s.retentionPass); err != nil {
		return fmt.Errorf("schedule retention pass: %w", err)
	}

	c.Start()
	logger.Info().Int("interval_minutes", interval).Msg("monitor schedule running")

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return ctx.Err()
}

// monitorPass snapshots every monitored user once. Snapshots are keyed by
// pass start time so successive runs never overwrite each other.
func (s *Scraper) monitorPass(ctx context.Context) {
	stamp := s.now().Format("20060102_150405")
	logger.Info().Str("pass", stamp).Int("users", len(s.config.MonitorUserList)).Msg("monitor pass starting")

	for _, handle := range s.config.MonitorUserList {
		if ctx.Err() != nil {
			return
		}

		userID, err := s.ResolveUserID(ctx, handle)
		if err != nil {
			logger.Warn().Err(err).Str("user", handle).Msg("monitor resolution failed, skipping")
			continue
		}

		if r := s.client.UserProfile(ctx, userID); r.Status == StatusOK {
			if err := s.store.SaveJSON(r.Value, "monitor", userID, stamp, "profile.json"); err != nil {
				logger.Warn().Err(err).Str("user_id", userID).Msg("save monitor profile failed")
			}
		}

		videos := paginate(ctx, paginateOptions[Video]{
			fetch: func(ctx context.Context, cursor string) Result[Page[Video]] {
				return s.client.UserVideos(ctx, userID, cursor)
			},
			filter:         s.videoFilter(),
			pageCap:        s.config.MaxPages,
			interPageDelay: time.Second,
		})
		if len(videos) == 0 {
			continue
		}
		videos = s.applyOutputPolicy(videos)
		if err := s.store.SaveJSON(videos, "monitor", userID, stamp, "video_list.json"); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("save monitor videos failed")
		}
	}
	logger.Info().Str("pass", stamp).Msg("monitor pass finished")
}

// retentionPass prunes stale browser profiles and temp artifacts.
func (s *Scraper) retentionPass() {
	maxAge := time.Duration(s.config.RetentionAge) * 24 * time.Hour
	if maxAge <= 0 {
		return
	}
	if n, err := CleanupStale(s.config.BrowserDir, "kuaishou_user_data_", maxAge); err != nil {
		logger.Warn().Err(err).Msg("browser profile cleanup failed")
	} else if n > 0 {
		logger.Info().Int("removed", n).Msg("stale browser profiles removed")
	}
	if n, err := CleanupStale(s.config.TempDir, "", maxAge); err != nil {
		logger.Warn().Err(err).Msg("temp cleanup failed")
	} else if n > 0 {
		logger.Info().Int("removed", n).Msg("stale temp artifacts removed")
	}
}
