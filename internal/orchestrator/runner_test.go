package orchestrator

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brennhill/calibrator/internal/artifacts"
	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/browser/fakedriver"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/logging"
)

type stubCatalogLoader map[string]ServiceCatalogEntry

func (s stubCatalogLoader) GetServiceByName(name string) (ServiceCatalogEntry, bool) {
	e, ok := s[name]
	return e, ok
}

func discardLog() logging.Logger { return logging.New(io.Discard, "orchestrator") }

func TestRunProfile_FillsKnownDimensionAndReportsSuccess(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#storage", Tag: "input", Type: "number", Visible: true,
		AriaLabel: "Storage size",
		Rect:      browser.Rect{X: 0, Y: 0, Width: 100, Height: 20},
	})

	loader := stubCatalogLoader{
		"ec2": {
			ServiceID: "ec2",
			Dimensions: map[string]catalog.Dimension{
				"storage_size": {CSSSelector: "#storage", Required: true, FieldType: catalog.FieldNumber},
			},
		},
	}

	profile := Profile{Groups: []ProfileGroup{
		{Name: "compute", Services: []ProfileService{
			{Name: "ec2", Dimensions: []ProfileDimensionValue{
				{Key: "storage_size", Value: "100", Required: true},
			}},
		}},
	}}

	navCalls := 0
	nav := func(ctx context.Context, group, service string) error {
		navCalls++
		return nil
	}

	run, err := RunProfile(context.Background(), d, nav, loader, profile, artifacts.Layout{ProjectRoot: t.TempDir()}, "run_20260731_000000", discardLog())
	require.NoError(t, err)

	assert.Equal(t, 1, navCalls)
	assert.Equal(t, StatusSuccess, run.Status)
	assert.Equal(t, Metrics{Filled: 1}, run.Metrics)
	require.Len(t, run.Groups, 1)
	require.Len(t, run.Groups[0].Services, 1)
	assert.Equal(t, DimensionFilled, run.Groups[0].Services[0].Dimensions[0].Status)

	h, err := d.Query(context.Background(), "#storage")
	require.NoError(t, err)
	v, _, _ := h.GetAttribute(context.Background(), "value")
	assert.Equal(t, "100", v)
}

func TestRunProfileMode_DryRunLocatesButNeverFills(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#storage", Tag: "input", Type: "number", Visible: true,
		AriaLabel: "Storage size",
		Rect:      browser.Rect{X: 0, Y: 0, Width: 100, Height: 20},
	})

	loader := stubCatalogLoader{
		"ec2": {ServiceID: "ec2", Dimensions: map[string]catalog.Dimension{
			"storage_size": {CSSSelector: "#storage", Required: true, FieldType: catalog.FieldNumber},
		}},
	}
	profile := Profile{Groups: []ProfileGroup{
		{Name: "compute", Services: []ProfileService{
			{Name: "ec2", Dimensions: []ProfileDimensionValue{{Key: "storage_size", Value: "100", Required: true}}},
		}},
	}}
	nav := func(ctx context.Context, group, service string) error { return nil }

	run, err := RunProfileMode(context.Background(), d, nav, loader, profile, artifacts.Layout{ProjectRoot: t.TempDir()}, "run_dry", discardLog(), true)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, run.Status)

	h, err := d.Query(context.Background(), "#storage")
	require.NoError(t, err)
	v, _, _ := h.GetAttribute(context.Background(), "value")
	assert.Empty(t, v)
}

func TestRunProfile_NavigationFailureAbortsRunWithPartialResult(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	loader := stubCatalogLoader{}
	profile := Profile{Groups: []ProfileGroup{
		{Name: "compute", Services: []ProfileService{
			{Name: "ec2", Dimensions: []ProfileDimensionValue{{Key: "storage_size", Value: "100"}}},
		}},
	}}

	navErr := assert.AnError
	nav := func(ctx context.Context, group, service string) error { return navErr }

	run, err := RunProfile(context.Background(), d, nav, loader, profile, artifacts.Layout{ProjectRoot: t.TempDir()}, "run_x", discardLog())
	require.ErrorIs(t, err, navErr)
	assert.Empty(t, run.Groups[0].Services)
}

func TestApplyOverride_SetsMatchingDimensionValueOnly(t *testing.T) {
	t.Parallel()
	profile := Profile{Groups: []ProfileGroup{
		{Name: "compute", Services: []ProfileService{
			{Name: "ec2", Dimensions: []ProfileDimensionValue{{Key: "storage_size", Value: "100"}}},
		}},
	}}

	ApplyOverride(&profile, "compute", "ec2", "storage_size", "250")
	assert.Equal(t, "250", profile.Groups[0].Services[0].Dimensions[0].Value)

	ApplyOverride(&profile, "compute", "ec2", "nonexistent", "x")
	assert.Equal(t, "250", profile.Groups[0].Services[0].Dimensions[0].Value)
}
