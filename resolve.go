package kuaishou

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
)

var (
	apolloTagOpen  = []byte(`window.__APOLLO_STATE__=`)
	apolloTagClose = []byte(`;(function()`)

	visionUserKeyRe = regexp.MustCompile(`"VisionUserInfo:([^"]+)"`)
)

// fetchHTML performs a plain GET with the current session cookies, for the
// server-rendered pages that embed state JSON.
func (c *Client) fetchHTML(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create page request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	if cookie, _ := c.cookieHeader.Load().(string); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("fetch page: %w", ErrBlocked)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch page: %w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// extractApolloState finds the Apollo state JSON embedded in Kuaishou's
// server-rendered HTML.
func extractApolloState(htmlBody []byte) ([]byte, error) {
	start := bytes.Index(htmlBody, apolloTagOpen)
	if start == -1 {
		return nil, fmt.Errorf("%w: apollo state not found", ErrInvalidResponse)
	}
	start += len(apolloTagOpen)

	end := bytes.Index(htmlBody[start:], apolloTagClose)
	if end == -1 {
		return nil, fmt.Errorf("%w: apollo state terminator not found", ErrInvalidResponse)
	}
	return htmlBody[start : start+end], nil
}

// extractUserIDFromHTML pulls the platform user ID out of a profile page's
// embedded state.
func extractUserIDFromHTML(htmlBody []byte) (string, error) {
	state, err := extractApolloState(htmlBody)
	if err != nil {
		return "", err
	}
	m := visionUserKeyRe.FindSubmatch(state)
	if m == nil {
		return "", fmt.Errorf("%w: user entry missing in apollo state", ErrNotFound)
	}
	return string(m[1]), nil
}

// ResolveUserID translates a handle into the platform user ID. Profile URLs
// already carry the ID, so the chain is: try the handle against the profile
// API directly, then fall back to scraping the profile page's embedded state.
func (s *Scraper) ResolveUserID(ctx context.Context, handle string) (string, error) {
	if handle == "" {
		return "", fmt.Errorf("resolve user: %w: empty handle", ErrNotFound)
	}

	if r := s.client.UserProfile(ctx, handle); r.Status == StatusOK {
		return r.Value.ID, nil
	}

	html, err := s.client.fetchHTML(ctx, s.client.baseURL+"/profile/"+handle)
	if err != nil {
		return "", fmt.Errorf("resolve user %q: %w", handle, err)
	}
	id, err := extractUserIDFromHTML(html)
	if err != nil {
		return "", fmt.Errorf("resolve user %q: %w", handle, err)
	}
	return id, nil
}
