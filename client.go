package kuaishou

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Client executes GraphQL calls against the Kuaishou web API with harvested
// session cookies. It is stateless per call: each request snapshots the
// current cookie header, so UpdateCookies never disturbs in-flight requests.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	proxyAddr  string

	// cookieHeader holds the current Cookie header value (string).
	cookieHeader atomic.Value

	// limiter is the request-rate floor; the randomized delays sit on top.
	limiter *rate.Limiter

	// Randomized inter-request delays. Deliberate throughput/stealth
	// tradeoff: staying under the platform's implicit rate limits beats
	// finishing fast and getting blocked.
	preDelayMin, preDelayMax   time.Duration
	postDelayMin, postDelayMax time.Duration

	// Cool-down range handed to callers on a soft-block.
	cooldownMin, cooldownMax time.Duration
}

// defaultTransport returns an http.Transport tuned for scraping: connection
// pooling, keep-alive, and TLS handshake caching.
func defaultTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}

// NewClient creates a Client with sensible defaults and no cookies.
func NewClient() *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: defaultTransport(),
		},
		baseURL:      "https://www.kuaishou.com",
		userAgent:    defaultUserAgent,
		limiter:      rate.NewLimiter(rate.Every(time.Second), 1),
		preDelayMin:  1 * time.Second,
		preDelayMax:  3 * time.Second,
		postDelayMin: 500 * time.Millisecond,
		postDelayMax: 2 * time.Second,
		cooldownMin:  30 * time.Second,
		cooldownMax:  60 * time.Second,
	}
	c.cookieHeader.Store("")
	return c
}

// WithDelays sets the randomized pre-call delay range. Zero disables delays
// (and the limiter floor), mainly for tests.
func (c *Client) WithDelays(min, max time.Duration) *Client {
	c.preDelayMin, c.preDelayMax = min, max
	if max == 0 {
		c.postDelayMin, c.postDelayMax = 0, 0
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return c
}

// WithCooldown sets the soft-block cool-down hint range.
func (c *Client) WithCooldown(min, max time.Duration) *Client {
	c.cooldownMin, c.cooldownMax = min, max
	return c
}

// WithUserAgent overrides the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// SetProxy configures an HTTP/HTTPS or SOCKS5 proxy, preserving the pooled
// transport settings.
func (c *Client) SetProxy(proxyAddr string) error {
	if proxyAddr == "" {
		c.httpClient.Transport = defaultTransport()
		c.proxyAddr = ""
		return nil
	}

	u, err := url.Parse(proxyAddr)
	if err != nil {
		return fmt.Errorf("parse proxy url: %w", err)
	}

	base := defaultTransport()

	switch u.Scheme {
	case "http", "https":
		base.Proxy = http.ProxyURL(u)
		c.httpClient.Transport = base
	case "socks5":
		var auth *proxy.Auth
		if u.User != nil {
			pass, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: pass}
		}
		dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("socks5 proxy: %w", err)
		}
		dc, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("socks5: context dialer not supported")
		}
		base.DialContext = dc.DialContext
		c.httpClient.Transport = base
	default:
		return fmt.Errorf("unsupported proxy scheme: %s", u.Scheme)
	}

	c.proxyAddr = proxyAddr
	return nil
}

// UpdateCookies replaces the session credential set. Requests already in
// flight keep the cookie header they were built with.
func (c *Client) UpdateCookies(store *CookieStore) {
	c.cookieHeader.Store(store.HeaderString())
}

// randDelay sleeps for a uniform random duration in [min, max], honoring ctx.
func randDelay(ctx context.Context, min, max time.Duration) {
	if max <= 0 {
		return
	}
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func (c *Client) cooldown() time.Duration {
	d := c.cooldownMin
	if c.cooldownMax > c.cooldownMin {
		d += time.Duration(rand.Int63n(int64(c.cooldownMax - c.cooldownMin)))
	}
	return d
}

// graphqlRequest is the wire body of every API call.
type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// call executes one GraphQL operation and classifies the outcome. The referer
// must match the page context that would have produced the call; the server
// checks it. call never retries — backoff belongs to the pagination engine.
func (c *Client) call(ctx context.Context, operation, query string, variables map[string]any, referer string) Result[json.RawMessage] {
	randDelay(ctx, c.preDelayMin, c.preDelayMax)
	if err := c.limiter.Wait(ctx); err != nil {
		return failed[json.RawMessage](fmt.Errorf("rate limit wait: %w", err))
	}

	body, err := json.Marshal(graphqlRequest{
		OperationName: operation,
		Variables:     variables,
		Query:         query,
	})
	if err != nil {
		return failed[json.RawMessage](fmt.Errorf("marshal %s request: %w", operation, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return failed[json.RawMessage](fmt.Errorf("create %s request: %w", operation, err))
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", referer)
	if cookie, _ := c.cookieHeader.Load().(string); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failed[json.RawMessage](fmt.Errorf("%s: %w", operation, err))
	}
	defer resp.Body.Close()

	defer randDelay(ctx, c.postDelayMin, c.postDelayMax)

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := c.cooldown()
		logger.Warn().
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Dur("retry_after", retryAfter).
			Msg("soft-blocked")
		return blocked[json.RawMessage](retryAfter)
	case resp.StatusCode != http.StatusOK:
		return failed[json.RawMessage](fmt.Errorf("%s: %w: status %d", operation, ErrInvalidResponse, resp.StatusCode))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed[json.RawMessage](fmt.Errorf("read %s response: %w", operation, err))
	}

	var gr graphqlResponse
	if err := json.Unmarshal(payload, &gr); err != nil {
		return failed[json.RawMessage](fmt.Errorf("decode %s response: %w", operation, err))
	}

	if len(gr.Errors) > 0 && !hasUsableData(gr.Data) {
		logger.Debug().
			Str("operation", operation).
			Str("error", gr.Errors[0].Message).
			Msg("graphql errors without data")
		return empty[json.RawMessage]()
	}
	if !hasUsableData(gr.Data) {
		return empty[json.RawMessage]()
	}
	return ok(gr.Data)
}

func hasUsableData(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) && !bytes.Equal(trimmed, []byte("{}"))
}

// mapResult converts an ok raw-JSON result into a typed one via convert;
// Empty/Blocked/Failed pass through unchanged.
func mapResult[T any](r Result[json.RawMessage], convert func(json.RawMessage) Result[T]) Result[T] {
	switch r.Status {
	case StatusOK:
		return convert(r.Value)
	case StatusBlocked:
		return blocked[T](r.RetryAfter)
	case StatusFailed:
		return failed[T](r.Err)
	default:
		return empty[T]()
	}
}

// SearchVideos fetches one page of keyword search results. The referer
// carries the keyword because the platform validates it server-side.
func (c *Client) SearchVideos(ctx context.Context, keyword, cursor string) Result[Page[Video]] {
	referer := c.baseURL + "/search/video?searchKey=" + url.QueryEscape(keyword)
	raw := c.call(ctx, opSearchPhoto, querySearchPhoto, map[string]any{
		"keyword":         keyword,
		"pcursor":         cursor,
		"page":            "search",
		"searchSessionId": strconv.FormatInt(time.Now().UnixMilli(), 10),
		"webPageArea":     "",
	}, referer)

	return mapResult(raw, func(data json.RawMessage) Result[Page[Video]] {
		var parsed searchData
		if err := json.Unmarshal(data, &parsed); err != nil {
			return failed[Page[Video]](fmt.Errorf("decode search data: %w", err))
		}
		if parsed.VisionSearchPhoto == nil {
			return empty[Page[Video]]()
		}
		page := Page[Video]{Cursor: parsed.VisionSearchPhoto.PCursor}
		for _, feed := range parsed.VisionSearchPhoto.Feeds {
			if v, valid := parseFeedVideo(feed, keyword); valid {
				page.Items = append(page.Items, v)
			}
		}
		return ok(page)
	})
}

// VideoDetail fetches the detail record for one video.
func (c *Client) VideoDetail(ctx context.Context, videoID string) Result[Video] {
	referer := c.baseURL + "/short-video/" + videoID
	raw := c.call(ctx, opPhotoDetail, queryPhotoDetail, map[string]any{
		"photoId": videoID,
	}, referer)

	return mapResult(raw, func(data json.RawMessage) Result[Video] {
		var parsed photoDetailData
		if err := json.Unmarshal(data, &parsed); err != nil {
			return failed[Video](fmt.Errorf("decode photo detail: %w", err))
		}
		if parsed.PhotoDetail == nil || parsed.PhotoDetail.Photo == nil {
			return empty[Video]()
		}
		v := parsePhoto(*parsed.PhotoDetail.Photo)
		if parsed.PhotoDetail.User != nil {
			v.AuthorID = parsed.PhotoDetail.User.ID
			v.AuthorName = parsed.PhotoDetail.User.Name
		}
		return ok(v)
	})
}

// VideoComments fetches one page of root comments for a video.
func (c *Client) VideoComments(ctx context.Context, videoID, cursor string) Result[Page[Comment]] {
	referer := c.baseURL + "/short-video/" + videoID
	raw := c.call(ctx, opCommentList, queryCommentList, map[string]any{
		"photoId": videoID,
		"pcursor": cursor,
	}, referer)

	return mapResult(raw, func(data json.RawMessage) Result[Page[Comment]] {
		var parsed commentListData
		if err := json.Unmarshal(data, &parsed); err != nil {
			return failed[Page[Comment]](fmt.Errorf("decode comment list: %w", err))
		}
		if parsed.VisionCommentList == nil {
			return empty[Page[Comment]]()
		}
		page := Page[Comment]{Cursor: parsed.VisionCommentList.PCursor}
		for _, raw := range parsed.VisionCommentList.RootComments {
			page.Items = append(page.Items, parseComment(raw))
		}
		return ok(page)
	})
}

// SubComments fetches one page of replies under a root comment.
func (c *Client) SubComments(ctx context.Context, videoID, rootCommentID, cursor string) Result[Page[Comment]] {
	referer := c.baseURL + "/short-video/" + videoID
	raw := c.call(ctx, opSubCommentList, querySubCommentList, map[string]any{
		"photoId":       videoID,
		"rootCommentId": rootCommentID,
		"pcursor":       cursor,
	}, referer)

	return mapResult(raw, func(data json.RawMessage) Result[Page[Comment]] {
		var parsed subCommentListData
		if err := json.Unmarshal(data, &parsed); err != nil {
			return failed[Page[Comment]](fmt.Errorf("decode sub-comment list: %w", err))
		}
		if parsed.VisionSubCommentList == nil {
			return empty[Page[Comment]]()
		}
		page := Page[Comment]{Cursor: parsed.VisionSubCommentList.PCursor}
		for _, raw := range parsed.VisionSubCommentList.SubComments {
			page.Items = append(page.Items, parseComment(raw))
		}
		return ok(page)
	})
}

// UserProfile fetches a user's profile by platform ID.
func (c *Client) UserProfile(ctx context.Context, userID string) Result[Profile] {
	referer := c.baseURL + "/profile/" + userID
	raw := c.call(ctx, opUserProfile, queryUserProfile, map[string]any{
		"userId": userID,
	}, referer)

	return mapResult(raw, func(data json.RawMessage) Result[Profile] {
		var parsed userProfileData
		if err := json.Unmarshal(data, &parsed); err != nil {
			return failed[Profile](fmt.Errorf("decode user profile: %w", err))
		}
		if parsed.UserProfile == nil || parsed.UserProfile.Profile.User.ID == "" {
			return empty[Profile]()
		}
		return ok(parseProfile(*parsed.UserProfile))
	})
}

// UserVideos fetches one page of a user's public videos.
func (c *Client) UserVideos(ctx context.Context, userID, cursor string) Result[Page[Video]] {
	referer := c.baseURL + "/profile/" + userID
	raw := c.call(ctx, opUserPhotos, queryUserPhotos, map[string]any{
		"userId":  userID,
		"pcursor": cursor,
		"page":    "profile",
	}, referer)

	return mapResult(raw, func(data json.RawMessage) Result[Page[Video]] {
		var parsed userPhotosData
		if err := json.Unmarshal(data, &parsed); err != nil {
			return failed[Page[Video]](fmt.Errorf("decode user videos: %w", err))
		}
		if parsed.VisionProfilePhotoList == nil {
			return empty[Page[Video]]()
		}
		page := Page[Video]{Cursor: parsed.VisionProfilePhotoList.PCursor}
		for _, photo := range parsed.VisionProfilePhotoList.PhotoList {
			if photo.ID == "" {
				continue
			}
			v := parsePhoto(photo)
			v.AuthorID = userID
			page.Items = append(page.Items, v)
		}
		return ok(page)
	})
}
