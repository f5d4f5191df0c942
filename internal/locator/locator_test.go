package locator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/browser/fakedriver"
	"github.com/brennhill/calibrator/internal/catalog"
)

func TestFindElement_CatalogCSSTierWins(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#storage-size", Tag: "input", Type: "number", Visible: true,
	})

	res, err := FindElement(context.Background(), d, "Storage size", Options{PrimaryCSS: "#storage-size", Required: true}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyCatalogCSS, res.Strategy)
	assert.Equal(t, catalog.FieldNumber, res.FieldType)
}

func TestFindElement_FallsThroughToAriaLabel(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#qty", Tag: "input", Type: "text", AriaLabel: "Instance count", Visible: true,
	})

	res, err := FindElement(context.Background(), d, "Instance count", Options{Required: true}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyAriaLabel, res.Strategy)
}

func TestFindElement_NotFoundRequiredIsFailed(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})

	var loggedEvent string
	var shotCalled bool

	res, err := FindElement(context.Background(), d, "Nonexistent field", Options{Required: true}, func(ctx context.Context, key string) error {
		shotCalled = true
		return nil
	}, func(key string, fields map[string]any) {
		loggedEvent, _ = fields["event_type"].(string)
	})

	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, shotCalled)
	assert.Equal(t, "locator_not_found", loggedEvent)
}

func TestFindElement_NotFoundOptionalIsSkipped(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})

	res, err := FindElement(context.Background(), d, "Nonexistent field", Options{Required: false}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, StatusSkipped, res.Status)
}

func TestFindElement_TextProximityWithinBand(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#label-node", Tag: "span", Text: "Storage quota", Visible: true,
		Rect: browser.Rect{X: 0, Y: 100, Width: 80, Height: 20},
	})
	d.AddElement(fakedriver.Element{
		Selector: "#near-input", Tag: "input", Type: "number", Visible: true,
		Rect: browser.Rect{X: 100, Y: 110, Width: 60, Height: 20},
	})
	d.AddElement(fakedriver.Element{
		Selector: "#far-input", Tag: "input", Type: "number", Visible: true,
		Rect: browser.Rect{X: 100, Y: 500, Width: 60, Height: 20},
	})

	res, err := FindElement(context.Background(), d, "Storage quota", Options{Required: true}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyTextProximity, res.Strategy)
}
