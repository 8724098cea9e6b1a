package kuaishou

import "errors"

var (
	ErrBlocked            = errors.New("kuaishou: soft-blocked by platform")
	ErrNotFound           = errors.New("kuaishou: not found")
	ErrLoginTimeout       = errors.New("kuaishou: login timed out")
	ErrBrowserNotReady    = errors.New("kuaishou: browser not initialized")
	ErrInvalidResponse    = errors.New("kuaishou: invalid response")
	ErrChallengePresented = errors.New("kuaishou: security challenge presented")
	ErrInvalidConfig      = errors.New("kuaishou: invalid configuration")
)
