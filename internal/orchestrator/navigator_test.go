package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/browser/fakedriver"
)

func TestDriverNavigator_OpenServicePageClicksMatchingCard(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#card-ec2", Tag: "div", Text: "Elastic Compute Cloud (EC2)", Visible: true,
		Rect: browser.Rect{X: 0, Y: 0, Width: 200, Height: 40},
	})
	nav := DriverNavigator{Driver: d}

	err := nav.OpenServicePage(context.Background(), "Elastic Compute Cloud")
	require.NoError(t, err)
}

func TestDriverNavigator_OpenServicePageMissingCardIsResolutionError(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	nav := DriverNavigator{Driver: d}

	err := nav.OpenServicePage(context.Background(), "nonexistent")
	require.Error(t, err)
}

func TestDriverNavigator_ExpandSectionsClicksEachTrigger(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#toggle-reserved", Tag: "button", Role: "switch", Visible: true,
		GateTargets: []string{"#reserved-term"},
	})
	d.AddElement(fakedriver.Element{Selector: "#reserved-term", Tag: "select", Visible: false})
	nav := DriverNavigator{Driver: d}

	require.NoError(t, nav.ExpandSections(context.Background(), []string{"#toggle-reserved"}))

	h, err := d.Query(context.Background(), "#reserved-term")
	require.NoError(t, err)
	require.NotNil(t, h)
}

func TestDriverNavigator_NavigateFuncRejectsUnknownService(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	nav := DriverNavigator{Driver: d}
	navFunc := nav.NavigateFunc(stubCatalogLoader{})

	err := navFunc(context.Background(), "compute", "unknown")
	assert.Error(t, err)
}
