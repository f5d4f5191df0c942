// Package playwrightdriver implements browser.Driver on top of
// github.com/playwright-community/playwright-go, the production engine
// this module ships with; internal/browser/fakedriver backs unit tests
// instead. Follows the usual browser-session lifecycle: launch, own one
// page, tear down on exit.
package playwrightdriver

import (
	"context"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/coreerr"
)

// Driver adapts a single Playwright page to browser.Driver. The process
// owns at most one browser instance at a time.
type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

// Launch starts a Chromium instance and opens one page.
func Launch(headless bool) (*Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindBrowserCrash, "starting playwright", err)
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(headless)})
	if err != nil {
		_ = pw.Stop()
		return nil, coreerr.Wrap(coreerr.KindBrowserCrash, "launching chromium", err)
	}
	page, err := b.NewPage()
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, coreerr.Wrap(coreerr.KindBrowserCrash, "opening page", err)
	}
	return &Driver{pw: pw, browser: b, page: page}, nil
}

// Close tears down the page, browser, and the Playwright driver process.
func (d *Driver) Close() error {
	_ = d.page.Close()
	_ = d.browser.Close()
	return d.pw.Stop()
}

func waitUntil(mode browser.WaitMode) *string {
	switch mode {
	case browser.WaitDOMContent:
		return playwright.String("domcontentloaded")
	case browser.WaitNetworkIdle:
		return playwright.String("networkidle")
	default:
		return playwright.String("load")
	}
}

func (d *Driver) Goto(ctx context.Context, url string, mode browser.WaitMode) error {
	_, err := d.page.Goto(url, playwright.PageGotoOptions{WaitUntil: waitUntilOption(mode)})
	if err != nil {
		return classify(err, coreerr.KindNavigationFailed)
	}
	return nil
}

func waitUntilOption(mode browser.WaitMode) *playwright.WaitUntilState {
	var s playwright.WaitUntilState
	switch mode {
	case browser.WaitDOMContent:
		s = playwright.WaitUntilStateDomcontentloaded
	case browser.WaitNetworkIdle:
		s = playwright.WaitUntilStateNetworkidle
	default:
		s = playwright.WaitUntilStateLoad
	}
	return &s
}

func (d *Driver) Query(ctx context.Context, selector string) (browser.Handle, error) {
	loc := d.page.Locator(selector).First()
	n, err := loc.Count()
	if err != nil {
		return nil, classify(err, coreerr.KindElementNotFound)
	}
	if n == 0 {
		return nil, nil
	}
	return &handle{loc: loc}, nil
}

func (d *Driver) QueryAll(ctx context.Context, selector string) ([]browser.Handle, error) {
	n, err := d.page.Locator(selector).Count()
	if err != nil {
		return nil, classify(err, coreerr.KindElementNotFound)
	}
	out := make([]browser.Handle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &handle{loc: d.page.Locator(selector).Nth(i)})
	}
	return out, nil
}

func (d *Driver) ByRole(ctx context.Context, q browser.RoleQuery) (browser.Handle, error) {
	loc := d.page.GetByRole(playwright.AriaRole(q.Role), playwright.PageGetByRoleOptions{
		Name:  q.Name,
		Exact: playwright.Bool(q.Exact),
	})
	return firstOrNil(loc)
}

func (d *Driver) ByLabel(ctx context.Context, text string, exact bool) (browser.Handle, error) {
	loc := d.page.GetByLabel(text, playwright.PageGetByLabelOptions{Exact: playwright.Bool(exact)})
	return firstOrNil(loc)
}

func (d *Driver) ByText(ctx context.Context, q browser.TextQuery) (browser.Handle, error) {
	loc := d.page.GetByText(q.Text, playwright.PageGetByTextOptions{Exact: playwright.Bool(q.Exact)})
	return firstOrNil(loc)
}

func firstOrNil(loc playwright.Locator) (browser.Handle, error) {
	n, err := loc.Count()
	if err != nil {
		return nil, classify(err, coreerr.KindElementNotFound)
	}
	if n == 0 {
		return nil, nil
	}
	return &handle{loc: loc.First()}, nil
}

func (d *Driver) Evaluate(ctx context.Context, script string, args ...any) (any, error) {
	var evalArg any
	if len(args) == 1 {
		evalArg = unwrapHandle(args[0])
	} else if len(args) > 1 {
		unwrapped := make([]any, len(args))
		for i, a := range args {
			unwrapped[i] = unwrapHandle(a)
		}
		evalArg = unwrapped
	}
	v, err := d.page.Evaluate(script, evalArg)
	if err != nil {
		return nil, classify(err, coreerr.KindAutomationFatal)
	}
	return v, nil
}

func unwrapHandle(a any) any {
	if h, ok := a.(*handle); ok {
		return h.loc
	}
	return a
}

func (d *Driver) Screenshot(ctx context.Context, path string) error {
	_, err := d.page.Screenshot(playwright.PageScreenshotOptions{Path: playwright.String(path)})
	if err != nil {
		return coreerr.Wrap(coreerr.KindArtifactWrite, "screenshot: "+path, err)
	}
	return nil
}

func (d *Driver) Keyboard(ctx context.Context, keyOrChord string) error {
	if err := d.page.Keyboard().Press(keyOrChord); err != nil {
		return classify(err, coreerr.KindAutomationFatal)
	}
	return nil
}

func (d *Driver) Wait(ctx context.Context, dur time.Duration) error {
	d.page.WaitForTimeout(float64(dur.Milliseconds()))
	return nil
}

func (d *Driver) Viewport(ctx context.Context) (browser.Viewport, error) {
	size := d.page.ViewportSize()
	if size == nil {
		return browser.Viewport{}, nil
	}
	return browser.Viewport{Width: size.Width, Height: size.Height}, nil
}

type handle struct {
	loc playwright.Locator
}

func (h *handle) TagName(ctx context.Context) (string, error) {
	v, err := h.loc.Evaluate(`el => el.tagName.toLowerCase()`, nil)
	if err != nil {
		return "", classify(err, coreerr.KindElementNotFound)
	}
	s, _ := v.(string)
	return s, nil
}

func (h *handle) Click(ctx context.Context, opts browser.ClickOpts) error {
	err := h.loc.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(opts.Force),
		Timeout: timeoutMs(opts.Timeout),
	})
	if err != nil {
		return classify(err, coreerr.KindElementNotVisible)
	}
	return nil
}

func (h *handle) Fill(ctx context.Context, text string) error {
	if err := h.loc.Fill(text); err != nil {
		return classify(err, coreerr.KindElementNotVisible)
	}
	return nil
}

func (h *handle) SelectOption(ctx context.Context, opts browser.SelectOpts) error {
	values := playwright.SelectOptionValues{}
	if opts.Label != "" {
		values.Labels = &[]string{opts.Label}
	} else {
		values.Values = &[]string{opts.Value}
	}
	if _, err := h.loc.SelectOption(values); err != nil {
		return classify(err, coreerr.KindElementNotVisible)
	}
	return nil
}

func (h *handle) BoundingBox(ctx context.Context) (browser.Rect, bool, error) {
	box, err := h.loc.BoundingBox()
	if err != nil {
		return browser.Rect{}, false, classify(err, coreerr.KindElementNotFound)
	}
	if box == nil {
		return browser.Rect{}, false, nil
	}
	return browser.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, true, nil
}

func (h *handle) IsVisible(ctx context.Context) (bool, error) {
	ok, err := h.loc.IsVisible()
	if err != nil {
		return false, classify(err, coreerr.KindElementNotFound)
	}
	return ok, nil
}

func (h *handle) TextContent(ctx context.Context) (string, error) {
	s, err := h.loc.TextContent()
	if err != nil {
		return "", classify(err, coreerr.KindElementNotFound)
	}
	return s, nil
}

// GetAttribute cannot distinguish a genuinely empty attribute value from an
// absent one through Playwright's API, which returns "" for both; callers
// in this module only ever check attributes expected to be non-empty when
// present, so this is not a practical limitation here.
func (h *handle) GetAttribute(ctx context.Context, name string) (string, bool, error) {
	v, err := h.loc.GetAttribute(name)
	if err != nil {
		return "", false, classify(err, coreerr.KindElementNotFound)
	}
	return v, v != "", nil
}

func (h *handle) ScrollIntoViewIfNeeded(ctx context.Context) error {
	if err := h.loc.ScrollIntoViewIfNeeded(); err != nil {
		return classify(err, coreerr.KindElementNotVisible)
	}
	return nil
}

func (h *handle) WaitForState(ctx context.Context, state string, timeout time.Duration) error {
	waitState := playwright.WaitForSelectorState(state)
	if err := h.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   waitState,
		Timeout: timeoutMs(timeout),
	}); err != nil {
		return classify(err, coreerr.KindTimeout)
	}
	return nil
}

func timeoutMs(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	ms := float64(d.Milliseconds())
	return &ms
}

// classify wraps a raw Playwright error into a *coreerr.CoreError, using
// the message text to upgrade to Timeout when Playwright's own error
// names it as one — Playwright surfaces timeouts as plain Go errors with
// no distinguishing type, only a message like "Timeout 2000ms exceeded".
func classify(err error, fallback coreerr.Kind) error {
	if err == nil {
		return nil
	}
	kind := fallback
	if strings.Contains(err.Error(), "Timeout") {
		kind = coreerr.KindTimeout
	}
	return coreerr.Wrap(kind, "playwright driver", err)
}
