//go:build !unittest

package kuaishou

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/google/uuid"
)

const (
	homeURL          = "https://www.kuaishou.com"
	challengeMarker  = "请完成安全验证"
	networkErrMarker = "网络连接失败"
	maxLoadRetries   = 3
	challengeWait    = 60 * time.Second
)

// launchBrowser starts Chrome with a stealth page on a fresh, uniquely-named
// persistent profile directory. A unique directory per run avoids the
// profile-lock collision of two sessions sharing one profile.
func (s *Scraper) launchBrowser() error {
	s.profileDir = filepath.Join(
		s.config.BrowserDir,
		fmt.Sprintf("kuaishou_user_data_%d_%s", time.Now().Unix(), uuid.NewString()[:8]),
	)
	if err := os.MkdirAll(s.profileDir, 0755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	l := launcher.New().
		Headless(s.config.Headless).
		UserDataDir(s.profileDir)
	if addr := s.config.ProxyURL(); addr != "" {
		l = l.Proxy(addr)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		return fmt.Errorf("create stealth page: %w", err)
	}

	s.browser = browser
	s.page = page

	// Seed the browser with any cookies restored from a prior run so the
	// page loads with the old session.
	for name, value := range s.cookies.Snapshot() {
		if err := s.page.SetCookies([]*proto.NetworkCookieParam{{
			Name:   name,
			Value:  value,
			Domain: ".kuaishou.com",
			Path:   "/",
		}}); err != nil {
			logger.Warn().Err(err).Str("cookie", name).Msg("restore cookie failed")
		}
	}

	return nil
}

// visitHomePage loads the home page with bounded retries on network-error
// pages, then runs scroll and mouse jitter to look less like a bot.
func (s *Scraper) visitHomePage(ctx context.Context) error {
	if s.page == nil {
		return ErrBrowserNotReady
	}

	var lastErr error
	for attempt := 1; attempt <= maxLoadRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.page.Timeout(60 * time.Second).Navigate(homeURL); err != nil {
			lastErr = fmt.Errorf("navigate home: %w", err)
			continue
		}
		if err := s.page.WaitStable(2 * time.Second); err != nil {
			lastErr = fmt.Errorf("wait for home page: %w", err)
			continue
		}
		if s.pageContains(networkErrMarker) {
			lastErr = fmt.Errorf("home page shows network error (attempt %d)", attempt)
			logger.Warn().Int("attempt", attempt).Msg("network error page, reloading")
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}
		s.humanJitter()
		return nil
	}
	return lastErr
}

// pageContains reports whether the page body currently contains the text.
func (s *Scraper) pageContains(text string) bool {
	result, err := s.page.Timeout(5 * time.Second).Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return false
	}
	return strings.Contains(result.Value.Str(), text)
}

// humanJitter scrolls and moves the mouse a few random steps to reduce the
// fingerprinting signal of an untouched page.
func (s *Scraper) humanJitter() {
	scrolls := 2 + rand.Intn(3)
	for i := 0; i < scrolls; i++ {
		if err := s.page.Mouse.Scroll(0, float64(100+rand.Intn(300)), 3); err != nil {
			return
		}
		time.Sleep(time.Duration(800+rand.Intn(1200)) * time.Millisecond)
	}
	_ = s.page.Mouse.MoveTo(proto.Point{
		X: float64(100 + rand.Intn(500)),
		Y: float64(100 + rand.Intn(300)),
	})
}

// waitOutChallenge detects the security-verification page, screenshots it for
// the operator, and polls until the marker disappears or the wait expires.
// The challenge is never auto-solved; on timeout the caller proceeds in
// degraded mode.
func (s *Scraper) waitOutChallenge(ctx context.Context) error {
	if s.page == nil || !s.pageContains(challengeMarker) {
		return nil
	}

	shot := filepath.Join(s.config.TempDir, fmt.Sprintf("security_verification_%d.png", time.Now().Unix()))
	if err := os.MkdirAll(s.config.TempDir, 0755); err == nil {
		if data, err := s.page.Screenshot(false, nil); err == nil {
			if err := os.WriteFile(shot, data, 0644); err == nil {
				logger.Warn().Str("screenshot", shot).Msg("security challenge detected, complete it in the browser")
			}
		}
	}

	deadline := time.Now().Add(challengeWait)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !s.pageContains(challengeMarker) {
			logger.Info().Msg("challenge cleared")
			return nil
		}
		time.Sleep(5 * time.Second)
	}
	return ErrChallengePresented
}

// checkLoggedIn decides login state from ordered evidence; the first positive
// signal short-circuits:
//  1. no login button on the page,
//  2. the avatar element is present,
//  3. a session-indicator cookie exists,
//  4. an authenticated-only route loads without redirecting away.
func (s *Scraper) checkLoggedIn() bool {
	if s.page == nil {
		return s.cookies.HasSession()
	}

	hasLoginButton, _, err := s.page.Timeout(5 * time.Second).HasR("p", "登录")
	if err == nil && !hasLoginButton {
		if has, _, err := s.page.Timeout(3 * time.Second).Has(".user-avatar"); err == nil && has {
			logger.Debug().Msg("login detected via avatar")
			return true
		}
	}

	if s.harvestCookies() == nil && s.cookies.HasSession() {
		logger.Debug().Msg("login detected via session cookie")
		return true
	}

	if hasLoginButton {
		return false
	}

	// Last resort: an authed-only route keeps its URL only for a session.
	if err := s.page.Timeout(20 * time.Second).Navigate(homeURL + "/settings/profile"); err == nil {
		_ = s.page.WaitStable(2 * time.Second)
		if info, err := s.page.Info(); err == nil && strings.Contains(info.URL, "settings/profile") {
			_ = s.page.Timeout(20 * time.Second).Navigate(homeURL)
			logger.Debug().Msg("login detected via authenticated route")
			return true
		}
		_ = s.page.Timeout(20 * time.Second).Navigate(homeURL)
	}
	return false
}

// harvestCookies copies current browser cookies into the store and swaps the
// API client onto the new set.
func (s *Scraper) harvestCookies() error {
	if s.page == nil {
		return ErrBrowserNotReady
	}
	raw, err := s.page.Cookies([]string{homeURL})
	if err != nil {
		return fmt.Errorf("read browser cookies: %w", err)
	}
	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
	}
	s.cookies.SetFromBrowser(cookies)
	s.client.UpdateCookies(s.cookies)
	return nil
}

// closeBrowser releases page then browser; each step logs and continues.
func (s *Scraper) closeBrowser() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			logger.Warn().Err(err).Msg("close page failed")
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			logger.Warn().Err(err).Msg("close browser failed")
		}
		s.browser = nil
	}
}
