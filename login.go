//go:build !unittest

package kuaishou

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/mdp/qrterminal/v3"
)

// loginByQR walks the QR login flow: open the login dialog, capture the QR
// image, surface it to the operator, then poll cookies until the session
// cookie appears or the timeout expires. Returns whether login succeeded.
func (s *Scraper) loginByQR(ctx context.Context, timeout time.Duration) bool {
	if s.page == nil {
		logger.Error().Msg("qr login requires a browser page")
		return false
	}

	if err := s.openLoginDialog(); err != nil {
		logger.Error().Err(err).Msg("open login dialog failed")
		return false
	}

	png, err := s.captureQRImage()
	if err != nil {
		logger.Error().Err(err).Msg("capture qr image failed")
		return false
	}

	saved := s.saveQRImage(png)
	if content, err := decodeQR(png); err != nil {
		// Decode failure is not fatal; the operator can still scan the
		// saved image file.
		logger.Warn().Err(err).Str("image", saved).Msg("qr decode failed, scan the saved image instead")
	} else {
		qrterminal.GenerateWithConfig(content, qrterminal.Config{
			Level:     qrterminal.L,
			Writer:    os.Stdout,
			BlackChar: qrterminal.BLACK,
			WhiteChar: qrterminal.WHITE,
			QuietZone: 1,
		})
		logger.Info().Msg("scan the qr code above with the Kuaishou app")
	}

	return s.pollForSession(ctx, timeout)
}

func (s *Scraper) openLoginDialog() error {
	el, err := s.page.Timeout(10 * time.Second).ElementR("p", "登录")
	if err != nil {
		return fmt.Errorf("login entry not found: %w", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click login entry: %w", err)
	}
	return nil
}

func (s *Scraper) captureQRImage() ([]byte, error) {
	img, err := s.page.Timeout(15 * time.Second).Element(".qrcode-img img")
	if err != nil {
		return nil, fmt.Errorf("qr element not found: %w", err)
	}
	if err := img.WaitVisible(); err != nil {
		return nil, fmt.Errorf("qr element not visible: %w", err)
	}
	png, err := img.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("screenshot qr element: %w", err)
	}
	return png, nil
}

// saveQRImage writes the QR png under the temp dir for manual scanning and
// returns the path; failures are logged and return an empty path.
func (s *Scraper) saveQRImage(png []byte) string {
	if err := os.MkdirAll(s.config.TempDir, 0755); err != nil {
		logger.Warn().Err(err).Msg("create temp dir failed")
		return ""
	}
	path := filepath.Join(s.config.TempDir, fmt.Sprintf("login_qrcode_%d.png", time.Now().Unix()))
	if err := os.WriteFile(path, png, 0644); err != nil {
		logger.Warn().Err(err).Msg("save qr image failed")
		return ""
	}
	logger.Info().Str("image", path).Msg("qr code saved")
	return path
}

// decodeQR extracts the payload string from a QR png.
func decodeQR(png []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(png))
	if err != nil {
		return "", fmt.Errorf("decode png: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("bitmap from image: %w", err)
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("read qr: %w", err)
	}
	return result.GetText(), nil
}

// pollForSession re-reads browser cookies once a second until the session
// cookie shows up or the timeout passes.
func (s *Scraper) pollForSession(ctx context.Context, timeout time.Duration) bool {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline:
			logger.Warn().Err(ErrLoginTimeout).Dur("timeout", timeout).Msg("qr login gave up")
			return false
		case <-ticker.C:
			if err := s.harvestCookies(); err != nil {
				logger.Debug().Err(err).Msg("cookie poll failed")
				continue
			}
			if s.cookies.HasSession() {
				logger.Info().Msg("qr login confirmed")
				return true
			}
		}
	}
}
