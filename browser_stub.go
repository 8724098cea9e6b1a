//go:build unittest

package kuaishou

import (
	"context"
	"fmt"
	"time"
)

func (s *Scraper) launchBrowser() error {
	return fmt.Errorf("browser: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (s *Scraper) visitHomePage(ctx context.Context) error {
	return fmt.Errorf("browser: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (s *Scraper) waitOutChallenge(ctx context.Context) error {
	return nil
}

func (s *Scraper) checkLoggedIn() bool {
	return s.cookies.HasSession()
}

func (s *Scraper) harvestCookies() error {
	return fmt.Errorf("browser: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (s *Scraper) loginByQR(ctx context.Context, timeout time.Duration) bool {
	return false
}

func (s *Scraper) closeBrowser() {
	s.page = nil
	s.browser = nil
}
