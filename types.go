package kuaishou

// Video represents a Kuaishou short video with its engagement metrics.
// Count fields keep the platform's raw representation (may carry a "万"/"w"
// suffix); use NormalizeCount before numeric comparison.
type Video struct {
	ID            string `json:"video_id"`
	Caption       string `json:"caption"`
	CoverURL      string `json:"cover_url"`
	PlayURL       string `json:"play_url"`
	LikeCount     string `json:"like_count"`
	CommentCount  string `json:"comment_count"`
	ViewCount     string `json:"view_count"`
	DurationMs    int64  `json:"duration_ms"`
	TimestampMs   int64  `json:"timestamp_ms"`
	AuthorID      string `json:"author_id"`
	AuthorName    string `json:"author_name"`
	SourceKeyword string `json:"source_keyword,omitempty"`
}

// Comment represents one root comment and, one level deep, its replies.
type Comment struct {
	ID                string    `json:"comment_id"`
	AuthorID          string    `json:"author_id"`
	AuthorName        string    `json:"author_name"`
	Content           string    `json:"content"`
	TimestampMs       int64     `json:"timestamp_ms"`
	LikeCount         string    `json:"like_count"`
	ReplyCount        int       `json:"reply_count"`
	SubComments       []Comment `json:"sub_comments,omitempty"`
	SubCommentsCursor string    `json:"sub_comments_cursor,omitempty"`
}

// Profile represents a Kuaishou user profile.
type Profile struct {
	ID             string `json:"user_id"`
	Name           string `json:"name"`
	Gender         string `json:"gender"`
	AvatarURL      string `json:"avatar_url"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	VideoCount     int    `json:"video_count"`
	IsFollowing    bool   `json:"is_following"`
	IsLiveNow      bool   `json:"is_live_now"`
}
