package fetcher

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

type ChromeOptions struct {
	BrowserPath     string
	Headless        bool
	PageLoadTimeout time.Duration
	// SettleDelay gives client scripts time to render the verdict message
	// after the body is ready.
	SettleDelay    time.Duration
	ViewportWidth  int
	ViewportHeight int
	// Verbose forwards browser protocol errors to the logger.
	Verbose bool
	Logger  *logrus.Entry
}

// Chrome launches one headless (or visible) Chrome per session.
type Chrome struct {
	opts ChromeOptions
}

func NewChrome(opts ChromeOptions) *Chrome {
	if opts.Logger == nil {
		opts.Logger = logrus.New().WithField("component", "fetcher.chrome")
	}
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 10 * time.Second
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = 800
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = 600
	}
	opts.BrowserPath = strings.TrimSpace(opts.BrowserPath)
	return &Chrome{opts: opts}
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", c.opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("mute-audio", true),
		chromedp.WindowSize(c.opts.ViewportWidth, c.opts.ViewportHeight),
	}
	if c.opts.BrowserPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.opts.BrowserPath))
	}
	return allocOpts
}

// Open starts a browser and one tab. ctx bounds the startup only; the
// session lives until Close.
func (c *Chrome) Open(ctx context.Context) (Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), c.allocatorOptions()...)

	logf := func(string, ...interface{}) {}
	errorf := logf
	if c.opts.Verbose {
		errorf = c.opts.Logger.Debugf
	}
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(logf), chromedp.WithErrorf(errorf))

	stop := context.AfterFunc(ctx, cancelAlloc)
	err := chromedp.Run(tabCtx, network.Enable())
	stop()
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, pkgerrors.Wrap(err, "start browser")
	}
	return &chromeSession{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		opts:        c.opts,
	}, nil
}

type chromeSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	opts        ChromeOptions
}

func (s *chromeSession) Fetch(ctx context.Context, url string) (verdict.Page, error) {
	page := verdict.Page{URL: url}
	timeoutCtx, cancel := context.WithTimeout(s.ctx, s.opts.PageLoadTimeout+s.opts.SettleDelay)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	actions := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if s.opts.SettleDelay > 0 {
		actions = append(actions, chromedp.Sleep(s.opts.SettleDelay))
	}
	actions = append(actions,
		chromedp.OuterHTML("html", &page.Source, chromedp.ByQuery),
		chromedp.Text("body", &page.Text, chromedp.ByQuery),
	)
	if err := chromedp.Run(timeoutCtx, actions); err != nil {
		return verdict.Page{URL: url}, NewFetchError(url, err)
	}
	return page, nil
}

func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancelTab()
	s.cancelAlloc()
	if err != nil {
		return pkgerrors.Wrap(err, "close browser")
	}
	return nil
}
