package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestChromeOpenFailsWithMissingBrowser(t *testing.T) {
	c := NewChrome(ChromeOptions{
		BrowserPath:     "definitely_not_exists.exe",
		Headless:        true,
		PageLoadTimeout: 500 * time.Millisecond,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sess, err := c.Open(ctx)
	if err == nil {
		sess.Close()
		t.Fatalf("expected startup error for missing browser")
	}
}

func TestNewChromeDefaults(t *testing.T) {
	c := NewChrome(ChromeOptions{SettleDelay: -time.Second})
	if c.opts.PageLoadTimeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", c.opts.PageLoadTimeout)
	}
	if c.opts.ViewportWidth != 800 || c.opts.ViewportHeight != 600 {
		t.Fatalf("unexpected viewport %dx%d", c.opts.ViewportWidth, c.opts.ViewportHeight)
	}
	if c.opts.SettleDelay != 0 {
		t.Fatalf("negative settle delay must clamp to zero")
	}
}

func TestFetchErrorKinds(t *testing.T) {
	timeout := NewFetchError("https://example.test", context.DeadlineExceeded)
	if !IsTimeout(timeout) {
		t.Fatalf("deadline must classify as timeout")
	}
	transport := NewFetchError("https://example.test", errors.New("net::ERR_NAME_NOT_RESOLVED"))
	if IsTimeout(transport) || transport.Kind != KindTransport {
		t.Fatalf("expected transport error, got %s", transport.Kind)
	}
	if !errors.Is(timeout, context.DeadlineExceeded) {
		t.Fatalf("FetchError must unwrap")
	}
}
