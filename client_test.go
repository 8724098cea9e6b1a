package kuaishou

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// newTestClient returns a Client pointed at the test server with delays off.
func newTestClient(serverURL string) *Client {
	c := NewClient().WithDelays(0, 0)
	c.baseURL = serverURL
	return c
}

// searchJSON renders a visionSearchPhoto response with count feeds.
func searchJSON(count int, cursor string) string {
	feeds := make([]string, 0, count)
	for i := 0; i < count; i++ {
		feeds = append(feeds, fmt.Sprintf(`{
			"author": {"id": "u%d", "name": "User %d"},
			"photo": {
				"id": "3x%d", "caption": "video %d",
				"coverUrl": "https://cdn.example.com/c%d.jpg",
				"photoUrl": "https://cdn.example.com/v%d.mp4",
				"likeCount": "1.2万", "viewCount": %d, "commentCount": "15",
				"duration": 15000, "timestamp": 1706000000000
			}
		}`, i, i, i, i, i, i, (i+1)*1000))
	}
	return fmt.Sprintf(`{"data": {"visionSearchPhoto": {"result": 1, "feeds": [%s], "pcursor": %q}}}`,
		strings.Join(feeds, ","), cursor)
}

// commentsJSON renders a visionCommentList response.
func commentsJSON(count int, cursor string) string {
	comments := make([]string, 0, count)
	for i := 0; i < count; i++ {
		comments = append(comments, fmt.Sprintf(`{
			"commentId": %d, "authorId": %d, "authorName": "C%d",
			"content": "comment %d", "timestamp": 1706000000000,
			"likedCount": "3", "subCommentCount": 0, "subCommentsPcursor": ""
		}`, 9000+i, 100+i, i, i))
	}
	return fmt.Sprintf(`{"data": {"visionCommentList": {"commentCount": %d, "pcursor": %q, "rootComments": [%s]}}}`,
		count, cursor, strings.Join(comments, ","))
}

func profileJSON(id, name string) string {
	return fmt.Sprintf(`{"data": {"userProfile": {
		"ownerCount": {"fan": 1200, "follow": 34, "photo": 56},
		"profile": {"gender": "F", "user": {"id": %q, "name": %q, "avatar": "https://cdn.example.com/a.jpg", "isFollowing": false, "living": false}}
	}}}`, id, name)
}

// ---------------------------------------------------------------------------
// Request shape
// ---------------------------------------------------------------------------

func TestCall_RequestShape(t *testing.T) {
	t.Parallel()
	var got struct {
		headers http.Header
		body    graphqlRequest
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got.body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		fmt.Fprint(w, searchJSON(1, "no_more"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	cs := NewCookieStore()
	cs.SetFromBrowser([]Cookie{{Name: "passToken", Value: "tok"}, {Name: "did", Value: "web_x"}})
	c.UpdateCookies(cs)

	r := c.SearchVideos(context.Background(), "搞笑", "")
	if r.Status != StatusOK {
		t.Fatalf("expected ok, got %v (%v)", r.Status, r.Err)
	}

	if ct := got.headers.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if ua := got.headers.Get("User-Agent"); ua != defaultUserAgent {
		t.Errorf("User-Agent = %q", ua)
	}
	if al := got.headers.Get("Accept-Language"); al != "zh-CN,zh;q=0.9" {
		t.Errorf("Accept-Language = %q", al)
	}
	referer := got.headers.Get("Referer")
	if !strings.Contains(referer, "searchKey=") {
		t.Errorf("search referer must carry the keyword, got %q", referer)
	}
	cookie := got.headers.Get("Cookie")
	if !strings.Contains(cookie, "passToken=tok") || !strings.Contains(cookie, "did=web_x") {
		t.Errorf("Cookie header missing session cookies: %q", cookie)
	}

	if got.body.OperationName != opSearchPhoto {
		t.Errorf("operationName = %q", got.body.OperationName)
	}
	if got.body.Variables["keyword"] != "搞笑" {
		t.Errorf("keyword variable = %v", got.body.Variables["keyword"])
	}
	if got.body.Variables["pcursor"] != "" {
		t.Errorf("pcursor variable = %v", got.body.Variables["pcursor"])
	}
}

func TestCall_UpdateCookiesTakesEffect(t *testing.T) {
	t.Parallel()
	var gotCookies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookies = append(gotCookies, r.Header.Get("Cookie"))
		fmt.Fprint(w, searchJSON(0, "no_more"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.SearchVideos(context.Background(), "a", "")

	cs := NewCookieStore()
	cs.SetFromBrowser([]Cookie{{Name: "passToken", Value: "fresh"}})
	c.UpdateCookies(cs)
	c.SearchVideos(context.Background(), "a", "")

	if len(gotCookies) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(gotCookies))
	}
	if gotCookies[0] != "" {
		t.Errorf("first request should carry no cookies, got %q", gotCookies[0])
	}
	if !strings.Contains(gotCookies[1], "passToken=fresh") {
		t.Errorf("second request missing refreshed cookie: %q", gotCookies[1])
	}
}

// ---------------------------------------------------------------------------
// Outcome classification
// ---------------------------------------------------------------------------

func TestCall_Classification(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
		body   string
		want   Status
	}{
		{"forbidden is blocked", http.StatusForbidden, "", StatusBlocked},
		{"too many requests is blocked", http.StatusTooManyRequests, "", StatusBlocked},
		{"server error is failed", http.StatusInternalServerError, "", StatusFailed},
		{"errors without data is empty", http.StatusOK, `{"errors":[{"message":"need login"}],"data":null}`, StatusEmpty},
		{"null data is empty", http.StatusOK, `{"data":null}`, StatusEmpty},
		{"empty object data is empty", http.StatusOK, `{"data":{}}`, StatusEmpty},
		{"malformed body is failed", http.StatusOK, `{"data":`, StatusFailed},
		{"usable data is ok", http.StatusOK, searchJSON(1, "no_more"), StatusOK},
		{"errors with data is ok", http.StatusOK,
			`{"errors":[{"message":"partial"}],` + searchJSON(1, "no_more")[1:], StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(srv.URL)
			r := c.SearchVideos(context.Background(), "kw", "")
			if r.Status != tt.want {
				t.Errorf("status = %v, want %v (err: %v)", r.Status, tt.want, r.Err)
			}
		})
	}
}

func TestCall_BlockedCarriesCooldown(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	r := c.SearchVideos(context.Background(), "kw", "")
	if r.Status != StatusBlocked {
		t.Fatalf("expected blocked, got %v", r.Status)
	}
	if r.RetryAfter < c.cooldownMin || r.RetryAfter > c.cooldownMax {
		t.Errorf("RetryAfter %v outside [%v, %v]", r.RetryAfter, c.cooldownMin, c.cooldownMax)
	}
}

// ---------------------------------------------------------------------------
// Endpoint parsing
// ---------------------------------------------------------------------------

func TestSearchVideos_ParsesFeeds(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, searchJSON(3, "page2"))
	}))
	defer srv.Close()

	r := newTestClient(srv.URL).SearchVideos(context.Background(), "宠物", "")
	if r.Status != StatusOK {
		t.Fatalf("expected ok, got %v (%v)", r.Status, r.Err)
	}
	if len(r.Value.Items) != 3 {
		t.Fatalf("expected 3 videos, got %d", len(r.Value.Items))
	}
	if r.Value.Cursor != "page2" {
		t.Errorf("cursor = %q, want page2", r.Value.Cursor)
	}

	v := r.Value.Items[0]
	if v.ID != "3x0" || v.AuthorID != "u0" || v.SourceKeyword != "宠物" {
		t.Errorf("unexpected first video: %+v", v)
	}
	if v.LikeCount != "1.2万" {
		t.Errorf("like count must keep the raw form, got %q", v.LikeCount)
	}
	if v.ViewCount != "1000" {
		t.Errorf("numeric view count must round-trip as text, got %q", v.ViewCount)
	}
}

func TestVideoComments_ParsesNumbersAsIDs(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, commentsJSON(2, "no_more"))
	}))
	defer srv.Close()

	r := newTestClient(srv.URL).VideoComments(context.Background(), "3x1", "")
	if r.Status != StatusOK {
		t.Fatalf("expected ok, got %v (%v)", r.Status, r.Err)
	}
	if len(r.Value.Items) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(r.Value.Items))
	}
	if r.Value.Items[0].ID != "9000" {
		t.Errorf("numeric comment id must become a string, got %q", r.Value.Items[0].ID)
	}
	if r.Value.Items[0].AuthorID != "100" {
		t.Errorf("numeric author id must become a string, got %q", r.Value.Items[0].AuthorID)
	}
}

func TestUserProfile_Parses(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, profileJSON("u42", "测试用户"))
	}))
	defer srv.Close()

	r := newTestClient(srv.URL).UserProfile(context.Background(), "u42")
	if r.Status != StatusOK {
		t.Fatalf("expected ok, got %v (%v)", r.Status, r.Err)
	}
	p := r.Value
	if p.ID != "u42" || p.Name != "测试用户" || p.FollowerCount != 1200 || p.VideoCount != 56 {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestUserVideos_StampsAuthorID(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": {"visionProfilePhotoList": {"pcursor": "no_more", "photoList": [
			{"id": "3x9", "caption": "mine", "likeCount": "7", "duration": 9000, "timestamp": 1706000000000}
		]}}}`)
	}))
	defer srv.Close()

	r := newTestClient(srv.URL).UserVideos(context.Background(), "u7", "")
	if r.Status != StatusOK {
		t.Fatalf("expected ok, got %v (%v)", r.Status, r.Err)
	}
	if len(r.Value.Items) != 1 || r.Value.Items[0].AuthorID != "u7" {
		t.Errorf("listing videos must carry the owner id: %+v", r.Value.Items)
	}
}

func TestVideoDetail_MergesUser(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data": {"photoDetail": {
			"photo": {"id": "3x5", "caption": "detail", "likeCount": 321, "duration": 12000, "timestamp": 1706000000000},
			"user": {"id": "u5", "name": "Owner"}
		}}}`)
	}))
	defer srv.Close()

	r := newTestClient(srv.URL).VideoDetail(context.Background(), "3x5")
	if r.Status != StatusOK {
		t.Fatalf("expected ok, got %v (%v)", r.Status, r.Err)
	}
	v := r.Value
	if v.ID != "3x5" || v.AuthorID != "u5" || v.AuthorName != "Owner" {
		t.Errorf("unexpected detail video: %+v", v)
	}
	if v.LikeCount != "321" {
		t.Errorf("numeric like count must round-trip as text, got %q", v.LikeCount)
	}
}
