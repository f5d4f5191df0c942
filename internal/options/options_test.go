package options

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/browser/fakedriver"
	"github.com/brennhill/calibrator/internal/catalog"
)

func TestScanOptions_NativeSelect(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#region", Tag: "select", Visible: true, Options: []string{"GB", "TB", "PB"},
	})
	h, _ := d.Query(context.Background(), "#region")

	got, err := ScanOptions(context.Background(), d, h)
	require.NoError(t, err)
	assert.Equal(t, []string{"GB", "TB", "PB"}, got)
}

func TestScanOptions_Radio(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#r1", Tag: "input", Type: "radio", Visible: true,
		Attrs: map[string]string{"name": "plan", "value": "basic"}, AriaLabel: "Basic plan",
	})
	d.AddElement(fakedriver.Element{
		Selector: "#r2", Tag: "input", Type: "radio", Visible: true,
		Attrs: map[string]string{"name": "plan", "value": "pro"},
	})
	h, _ := d.Query(context.Background(), "#r1")

	got, err := ScanOptions(context.Background(), d, h)
	require.NoError(t, err)
	assert.Equal(t, []string{"Basic plan", "pro"}, got)
}

func TestScanOptions_RadioFallsBackToPositional(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#r1", Tag: "input", Type: "radio", Visible: true,
		Attrs: map[string]string{"name": "tier"},
	})
	h, _ := d.Query(context.Background(), "#r1")

	got, err := ScanOptions(context.Background(), d, h)
	require.NoError(t, err)
	assert.Equal(t, []string{"Option 1"}, got)
}

func TestScanOptions_TruncatesAt50(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	opts := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		opts = append(opts, fmt.Sprintf("o%d", i))
	}
	d.AddElement(fakedriver.Element{Selector: "#s", Tag: "select", Visible: true, Options: opts})
	h, _ := d.Query(context.Background(), "#s")

	got, err := ScanOptions(context.Background(), d, h)
	require.NoError(t, err)
	require.Len(t, got, 51)
	assert.Equal(t, catalog.TruncatedSentinel, got[50])
}

func TestScanOptions_UnsupportedControlFails(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{Selector: "#d", Tag: "div", Visible: true})
	h, _ := d.Query(context.Background(), "#d")

	_, err := ScanOptions(context.Background(), d, h)
	require.Error(t, err)
}
