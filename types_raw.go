package kuaishou

import (
	"bytes"
	"encoding/json"
)

// flexCount accepts platform count fields that arrive as either a JSON number
// or a string (possibly with a locale suffix such as "1.2万"). It keeps the
// raw textual form; NormalizeCount turns it into a number.
type flexCount string

func (c *flexCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = flexCount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = flexCount(n.String())
	return nil
}

func (c flexCount) String() string { return string(c) }

// Search API response (visionSearchPhoto).

type searchData struct {
	VisionSearchPhoto *rawFeedList `json:"visionSearchPhoto"`
}

type rawFeedList struct {
	Result  int       `json:"result"`
	Feeds   []rawFeed `json:"feeds"`
	PCursor string    `json:"pcursor"`
}

type rawFeed struct {
	Author *rawAuthor `json:"author"`
	Photo  *rawPhoto  `json:"photo"`
}

type rawAuthor struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	HeaderURL  string         `json:"headerUrl"`
	HeaderURLs []rawHeaderURL `json:"headerUrls"`
	Following  bool           `json:"following"`
}

type rawHeaderURL struct {
	URL string `json:"url"`
}

type rawPhoto struct {
	ID           string    `json:"id"`
	Caption      string    `json:"caption"`
	CoverURL     string    `json:"coverUrl"`
	PhotoURL     string    `json:"photoUrl"`
	LikeCount    flexCount `json:"likeCount"`
	ViewCount    flexCount `json:"viewCount"`
	CommentCount flexCount `json:"commentCount"`
	Duration     int64     `json:"duration"`
	Timestamp    int64     `json:"timestamp"`
}

// Video detail API response (photoDetail).

type photoDetailData struct {
	PhotoDetail *rawPhotoDetail `json:"photoDetail"`
}

type rawPhotoDetail struct {
	Photo *rawPhoto      `json:"photo"`
	User  *rawDetailUser `json:"user"`
}

type rawDetailUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Comment list API response (visionCommentList).

type commentListData struct {
	VisionCommentList *rawCommentList `json:"visionCommentList"`
}

type rawCommentList struct {
	CommentCount int          `json:"commentCount"`
	PCursor      string       `json:"pcursor"`
	RootComments []rawComment `json:"rootComments"`
}

// Sub-comment page response (visionSubCommentList).

type subCommentListData struct {
	VisionSubCommentList *rawSubCommentList `json:"visionSubCommentList"`
}

type rawSubCommentList struct {
	PCursor     string       `json:"pcursor"`
	SubComments []rawComment `json:"subComments"`
}

type rawComment struct {
	CommentID          json.Number  `json:"commentId"`
	AuthorID           json.Number  `json:"authorId"`
	AuthorName         string       `json:"authorName"`
	Content            string       `json:"content"`
	Timestamp          int64        `json:"timestamp"`
	LikedCount         flexCount    `json:"likedCount"`
	SubCommentCount    int          `json:"subCommentCount"`
	SubCommentsPCursor string       `json:"subCommentsPcursor"`
	SubComments        []rawComment `json:"subComments"`
}

// User profile API response (userProfile).

type userProfileData struct {
	UserProfile *rawUserProfile `json:"userProfile"`
}

type rawUserProfile struct {
	OwnerCount rawOwnerCount  `json:"ownerCount"`
	Profile    rawUserWrapper `json:"profile"`
}

type rawOwnerCount struct {
	Fan    int `json:"fan"`
	Follow int `json:"follow"`
	Photo  int `json:"photo"`
}

type rawUserWrapper struct {
	Gender string  `json:"gender"`
	User   rawUser `json:"user"`
}

type rawUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	IsFollowing bool   `json:"isFollowing"`
	Living      bool   `json:"living"`
}

// User video listing API response (visionProfilePhotoList).

type userPhotosData struct {
	VisionProfilePhotoList *rawPhotoList `json:"visionProfilePhotoList"`
}

type rawPhotoList struct {
	PCursor   string     `json:"pcursor"`
	PhotoList []rawPhoto `json:"photoList"`
}

// parseFeedVideo converts a search/listing feed entry to the public Video.
func parseFeedVideo(feed rawFeed, keyword string) (Video, bool) {
	if feed.Photo == nil || feed.Photo.ID == "" {
		return Video{}, false
	}
	v := parsePhoto(*feed.Photo)
	if feed.Author != nil {
		v.AuthorID = feed.Author.ID
		v.AuthorName = feed.Author.Name
	}
	v.SourceKeyword = keyword
	return v, true
}

func parsePhoto(p rawPhoto) Video {
	return Video{
		ID:           p.ID,
		Caption:      p.Caption,
		CoverURL:     p.CoverURL,
		PlayURL:      p.PhotoURL,
		LikeCount:    p.LikeCount.String(),
		CommentCount: p.CommentCount.String(),
		ViewCount:    p.ViewCount.String(),
		DurationMs:   p.Duration,
		TimestampMs:  p.Timestamp,
	}
}

func parseComment(raw rawComment) Comment {
	c := Comment{
		ID:                raw.CommentID.String(),
		AuthorID:          raw.AuthorID.String(),
		AuthorName:        raw.AuthorName,
		Content:           raw.Content,
		TimestampMs:       raw.Timestamp,
		LikeCount:         raw.LikedCount.String(),
		ReplyCount:        raw.SubCommentCount,
		SubCommentsCursor: raw.SubCommentsPCursor,
	}
	for _, sub := range raw.SubComments {
		c.SubComments = append(c.SubComments, parseComment(sub))
	}
	return c
}

func parseProfile(raw rawUserProfile) Profile {
	return Profile{
		ID:             raw.Profile.User.ID,
		Name:           raw.Profile.User.Name,
		Gender:         raw.Profile.Gender,
		AvatarURL:      raw.Profile.User.Avatar,
		FollowerCount:  raw.OwnerCount.Fan,
		FollowingCount: raw.OwnerCount.Follow,
		VideoCount:     raw.OwnerCount.Photo,
		IsFollowing:    raw.Profile.User.IsFollowing,
		IsLiveNow:      raw.Profile.User.Living,
	}
}
