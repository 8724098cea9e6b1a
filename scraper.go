package kuaishou

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
)

// Crawler is the capability contract every platform adapter satisfies.
// There is exactly one concrete adapter today (Scraper); a second platform
// means a second implementation of this interface, not a subclass tree.
type Crawler interface {
	Start(ctx context.Context) error
	Search(ctx context.Context) error
	GetSpecifiedVideos(ctx context.Context) error
	GetCreatorsAndVideos(ctx context.Context) error
	Close() error
}

// Scraper drives a real browser for session acquisition and issues direct
// GraphQL calls with the harvested cookies. One Scraper owns one browser
// profile directory; never run two against the same profile.
type Scraper struct {
	config  *Config
	client  *Client
	cookies *CookieStore
	store   *Store

	browser    *rod.Browser
	page       *rod.Page
	profileDir string
	loggedIn   bool

	// now is the clock used by date-window filters; replaceable in tests.
	now func() time.Time
}

var _ Crawler = (*Scraper)(nil)

// New creates a Scraper from config. The browser is not launched until Start.
func New(config *Config) *Scraper {
	client := NewClient()
	if config.ProxyURL() != "" {
		if err := client.SetProxy(config.ProxyURL()); err != nil {
			logger.Warn().Err(err).Msg("proxy configuration failed, continuing direct")
		}
	}
	return &Scraper{
		config:  config,
		client:  client,
		cookies: NewCookieStore(),
		now:     time.Now,
	}
}

// Client exposes the underlying API client, mainly for ad-hoc callers.
func (s *Scraper) Client() *Client { return s.client }

// cookiesPath is where the harvested session is persisted between runs.
func (s *Scraper) cookiesPath() string {
	return filepath.Join(s.config.DataDir, "cookies.json")
}

// Start acquires a session: restore saved cookies, launch the browser, load
// the home page, wait out any security challenge, check login state, and run
// the QR flow if login is required but absent. Every step degrades rather
// than aborts — a failed Start still leaves a usable (possibly
// unauthenticated) API client behind.
func (s *Scraper) Start(ctx context.Context) error {
	store, err := NewStore(s.config.DataDir)
	if err != nil {
		return err
	}
	s.store = store

	s.restoreSavedCookies()

	if err := s.openSession(ctx); err != nil {
		logger.Warn().Err(err).Msg("browser session degraded, continuing with HTTP-only client")
	}

	if s.loggedIn {
		if err := s.cookies.Save(s.cookiesPath()); err != nil {
			logger.Warn().Err(err).Msg("cookie persistence failed")
		}
	}

	logger.Info().Bool("logged_in", s.loggedIn).Msg("crawler started")
	return nil
}

// restoreSavedCookies loads the session persisted by a prior run. A session
// already seeded (LoginWithCookies) takes precedence over the saved file.
func (s *Scraper) restoreSavedCookies() {
	if s.cookies.HasSession() {
		return
	}
	if err := s.cookies.Load(s.cookiesPath()); err != nil {
		return
	}
	s.client.UpdateCookies(s.cookies)
	logger.Info().Msg("restored saved cookies")
}

// openSession runs the browser-side session acquisition state machine:
// launch, page load, challenge check, login detection, optional QR login.
func (s *Scraper) openSession(ctx context.Context) error {
	if err := s.launchBrowser(); err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	if err := s.visitHomePage(ctx); err != nil {
		logger.Warn().Err(err).Msg("home page load incomplete, continuing")
	}

	if err := s.waitOutChallenge(ctx); err != nil {
		logger.Warn().Err(err).Msg("challenge still present, continuing degraded")
	}

	s.loggedIn = s.checkLoggedIn()
	if !s.loggedIn && s.config.LoginRequired {
		timeout := time.Duration(s.config.LoginTimeout) * time.Second
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		s.loggedIn = s.loginByQR(ctx, timeout)
		if !s.loggedIn {
			logger.Warn().Msg("login failed, continuing unauthenticated; some reads may be empty")
		}
	}

	return s.harvestCookies()
}

// LoginWithCookies seeds the session from a raw Cookie header string
// ("k1=v1; k2=v2"), bypassing the browser QR flow entirely.
func (s *Scraper) LoginWithCookies(cookieString string) error {
	cookies := ParseCookieString(cookieString)
	if len(cookies) == 0 {
		return fmt.Errorf("%w: no cookies in string", ErrInvalidConfig)
	}
	s.cookies.SetFromBrowser(cookies)
	s.client.UpdateCookies(s.cookies)
	s.loggedIn = s.cookies.HasSession()
	if !s.loggedIn {
		logger.Warn().Msg("cookie string carries no session indicator")
	}
	return nil
}

// Run dispatches the flow selected by crawler_type. The config has already
// been validated.
func (s *Scraper) Run(ctx context.Context) error {
	switch s.config.CrawlerType {
	case "search":
		return s.Search(ctx)
	case "detail":
		return s.GetSpecifiedVideos(ctx)
	case "creator":
		return s.GetCreatorsAndVideos(ctx)
	case "monitor":
		return s.Monitor(ctx)
	default:
		return fmt.Errorf("%w: unknown crawler_type %q", ErrInvalidConfig, s.config.CrawlerType)
	}
}

// videoFilter returns the pagination item filter from config.
func (s *Scraper) videoFilter() func(Video) bool {
	f := s.config.VideoFilter
	if f.DaysLimit <= 0 && f.MinLikes <= 0 {
		return nil
	}
	now := s.now()
	return func(v Video) bool { return f.Keep(v, now) }
}

// applyOutputPolicy shapes videos before persistence. Play URLs are signed
// and expire quickly, so they are only kept when explicitly requested.
func (s *Scraper) applyOutputPolicy(videos []Video) []Video {
	if s.config.VideoFilter.SaveVideoURL {
		return videos
	}
	for i := range videos {
		videos[i].PlayURL = ""
	}
	return videos
}

// Close releases page, then browser. Each release is best-effort: cleanup
// logs failures and keeps going, it never raises.
func (s *Scraper) Close() error {
	s.closeBrowser()
	return nil
}
