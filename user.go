package kuaishou

import (
	"context"
	"fmt"
	"time"
)

// GetUserProfile fetches one user's profile by handle or ID and persists it.
func (s *Scraper) GetUserProfile(ctx context.Context, handle string) (Profile, error) {
	userID, err := s.ResolveUserID(ctx, handle)
	if err != nil {
		return Profile{}, err
	}

	r := s.client.UserProfile(ctx, userID)
	switch r.Status {
	case StatusOK:
	case StatusFailed:
		return Profile{}, r.Err
	case StatusBlocked:
		return Profile{}, fmt.Errorf("user profile %s: %w", userID, ErrBlocked)
	default:
		return Profile{}, fmt.Errorf("user profile %s: %w", userID, ErrNotFound)
	}

	if s.store != nil {
		if err := s.store.SaveJSON(r.Value, "user_profiles", userID+".json"); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("save profile failed")
		}
	}
	return r.Value, nil
}

// GetUserVideos collects up to maxCount of a user's videos. maxCount <= 0
// means no item cap; the page cap still applies.
func (s *Scraper) GetUserVideos(ctx context.Context, handle string, maxCount int) ([]Video, error) {
	userID, err := s.ResolveUserID(ctx, handle)
	if err != nil {
		return nil, err
	}

	videos := paginate(ctx, paginateOptions[Video]{
		fetch: func(ctx context.Context, cursor string) Result[Page[Video]] {
			return s.client.UserVideos(ctx, userID, cursor)
		},
		pageCap:        s.config.MaxPages,
		maxWanted:      maxCount,
		interPageDelay: time.Second,
	})

	if s.store != nil && len(videos) > 0 {
		videos = s.applyOutputPolicy(videos)
		if err := s.store.SaveJSON(videos, "user_videos", userID+".json"); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("save user videos failed")
		}
	}
	return videos, nil
}

// GetVideoComments collects a video's comments, replies included, and
// persists them.
func (s *Scraper) GetVideoComments(ctx context.Context, videoID string) ([]Comment, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video comments: %w: empty video id", ErrNotFound)
	}

	comments := s.fetchComments(ctx, videoID)
	if s.store != nil && len(comments) > 0 {
		if err := s.store.SaveJSON(comments, "video_comments", videoID+".json"); err != nil {
			logger.Warn().Err(err).Str("video_id", videoID).Msg("save comments failed")
		}
	}
	return comments, nil
}
