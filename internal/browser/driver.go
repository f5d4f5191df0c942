// Package browser abstracts the page-interaction primitives the rest of
// the core needs: query, click, type, select, evaluate, screenshot.
// Callers supply a Driver; the fakedriver subpackage backs unit tests.
package browser

import (
	"context"
	"time"
)

// WaitMode controls how Goto waits for the navigation to settle.
type WaitMode string

const (
	WaitLoad          WaitMode = "load"
	WaitDOMContent    WaitMode = "domcontentloaded"
	WaitNetworkIdle   WaitMode = "networkidle"
)

// RoleQuery selects an element by ARIA role and accessible name.
type RoleQuery struct {
	Role  string
	Name  string
	Exact bool
}

// TextQuery selects an element by visible text.
type TextQuery struct {
	Text  string
	Exact bool
}

// ClickOpts configures Click.
type ClickOpts struct {
	Force   bool
	Timeout time.Duration
}

// SelectOpts configures Handle.SelectOption — either Label or Value is set.
type SelectOpts struct {
	Label string
	Value string
}

// Rect is a bounding box in viewport coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Viewport describes the current page viewport dimensions.
type Viewport struct {
	Width, Height int
}

// Handle is a resolved element reference. Every method may suspend and may
// return a *coreerr.CoreError with Kind ElementNotVisible, Timeout, or
// StaleElement.
type Handle interface {
	TagName(ctx context.Context) (string, error)
	Click(ctx context.Context, opts ClickOpts) error
	Fill(ctx context.Context, text string) error
	SelectOption(ctx context.Context, opts SelectOpts) error
	BoundingBox(ctx context.Context) (Rect, bool, error)
	IsVisible(ctx context.Context) (bool, error)
	TextContent(ctx context.Context) (string, error)
	GetAttribute(ctx context.Context, name string) (string, bool, error)
	ScrollIntoViewIfNeeded(ctx context.Context) error
	WaitForState(ctx context.Context, state string, timeout time.Duration) error
}

// Driver is the adapter the rest of the core depends on. Every primitive
// may suspend and must surface a *coreerr.CoreError with
// Kind ElementNotVisible, Timeout, or NavigationFailed so the retry
// supervisor (internal/retry) can classify it.
type Driver interface {
	Goto(ctx context.Context, url string, mode WaitMode) error
	Query(ctx context.Context, selector string) (Handle, error) // nil, nil if not found
	QueryAll(ctx context.Context, selector string) ([]Handle, error)
	ByRole(ctx context.Context, q RoleQuery) (Handle, error)
	ByLabel(ctx context.Context, text string, exact bool) (Handle, error)
	ByText(ctx context.Context, q TextQuery) (Handle, error)
	Evaluate(ctx context.Context, script string, args ...any) (any, error)
	Screenshot(ctx context.Context, path string) error
	Keyboard(ctx context.Context, keyOrChord string) error
	Wait(ctx context.Context, d time.Duration) error
	Viewport(ctx context.Context) (Viewport, error)
}
