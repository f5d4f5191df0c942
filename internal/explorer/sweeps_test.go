package explorer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/browser/fakedriver"
)

func newTwoToggleDriver() *fakedriver.Driver {
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#h", Tag: "h2", Text: "Options", Visible: true,
		Rect: browser.Rect{X: 0, Y: 0, Width: 400, Height: 20},
	})
	d.AddElement(fakedriver.Element{
		Selector: "#enc", Tag: "button", Role: "switch", Visible: true,
		AriaLabel: "Enable encryption", Attrs: map[string]string{"aria-label": "Enable encryption"},
		Rect:        browser.Rect{X: 0, Y: 30, Width: 100, Height: 20},
		GateTargets: []string{"#kms-key"},
	})
	d.AddElement(fakedriver.Element{
		Selector: "#kms-key", Tag: "select", Visible: false,
		AriaLabel: "KMS key", Attrs: map[string]string{"aria-label": "KMS key"},
		Rect: browser.Rect{X: 0, Y: 50, Width: 100, Height: 20}, Options: []string{"default"},
	})
	d.AddElement(fakedriver.Element{
		Selector: "#backup", Tag: "button", Role: "switch", Visible: true,
		AriaLabel: "Enable backup", Attrs: map[string]string{"aria-label": "Enable backup"},
		Rect:        browser.Rect{X: 0, Y: 70, Width: 100, Height: 20},
		GateTargets: []string{"#backup-window"},
	})
	d.AddElement(fakedriver.Element{
		Selector: "#backup-window", Tag: "input", Type: "text", Visible: false,
		AriaLabel: "Backup window", Attrs: map[string]string{"aria-label": "Backup window"},
		Rect: browser.Rect{X: 0, Y: 90, Width: 100, Height: 20},
	})
	return d
}

func TestToggleExhaustionSweep_ExercisesEveryToggleOnce(t *testing.T) {
	t.Parallel()
	d := newTwoToggleDriver()
	tracker := NewStateTracker(50)
	var fields []ExploredField

	toggleExhaustionSweep(context.Background(), d, tracker, &fields, discardLogger())

	var sawKMS, sawBackupWindow bool
	for _, f := range fields {
		if f.CSSSelector == `[aria-label="KMS key"]` {
			sawKMS = true
		}
		if f.CSSSelector == `[aria-label="Backup window"]` {
			sawBackupWindow = true
		}
	}
	assert.True(t, sawKMS, "expected encryption toggle to reveal kms-key")
	assert.True(t, sawBackupWindow, "expected backup toggle to reveal backup-window")

	// Both toggles restored OFF when the sweep finishes.
	hEnc, _ := d.Query(context.Background(), "#enc")
	checked, _, _ := hEnc.GetAttribute(context.Background(), "aria-checked")
	assert.Equal(t, "false", checked)
	hBackup, _ := d.Query(context.Background(), "#backup")
	checked2, _, _ := hBackup.GetAttribute(context.Background(), "aria-checked")
	assert.Equal(t, "false", checked2)
}

func newRadioCardDriver() *fakedriver.Driver {
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#r-standard", Tag: "input", Type: "radio", Visible: true,
		Attrs: map[string]string{"name": "tier", "value": "standard"}, AriaLabel: "Standard",
		Checked: true,
		Rect:    browser.Rect{X: 0, Y: 0, Width: 50, Height: 20},
	})
	d.AddElement(fakedriver.Element{
		Selector: "#r-premium", Tag: "input", Type: "radio", Visible: true,
		Attrs: map[string]string{"name": "tier", "value": "premium"}, AriaLabel: "Premium",
		Rect:        browser.Rect{X: 0, Y: 20, Width: 50, Height: 20},
		GateTargets: []string{"#premium-sla"},
	})
	d.AddElement(fakedriver.Element{
		Selector: "#premium-sla", Tag: "input", Type: "text", Visible: false,
		AriaLabel: "SLA target", Attrs: map[string]string{"aria-label": "SLA target"},
		Rect: browser.Rect{X: 0, Y: 40, Width: 50, Height: 20},
	})
	return d
}

func TestRadioCardSweep_SelectsNonDefaultMembersAndNeverRestores(t *testing.T) {
	t.Parallel()
	d := newRadioCardDriver()
	tracker := NewStateTracker(50)
	var fields []ExploredField

	radioCardSweep(context.Background(), d, tracker, &fields, discardLogger())

	var sawSLA bool
	for _, f := range fields {
		if f.CSSSelector == `[aria-label="SLA target"]` {
			sawSLA = true
		}
	}
	assert.True(t, sawSLA, "expected selecting the premium radio to reveal the SLA field")

	h, _ := d.Query(context.Background(), "#r-premium")
	checked, _, _ := h.GetAttribute(context.Background(), "aria-checked")
	assert.Equal(t, "true", checked, "radio-card sweep never restores the group back to its default")
}

func newSelectSamplingDriver() *fakedriver.Driver {
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{
		Selector: "#region", Tag: "select", Visible: true, Options: []string{"us-east-1", "us-west-2", "eu-west-1"},
		Value: "us-east-1", AriaLabel: "Region", Attrs: map[string]string{"aria-label": "Region", "value": "us-east-1"},
	})
	return d
}

func TestSelectSamplingSweep_SamplesUpToCap(t *testing.T) {
	t.Parallel()
	d := newSelectSamplingDriver()
	tracker := NewStateTracker(50)
	var fields []ExploredField

	selectSamplingSweep(context.Background(), d, tracker, &fields, 1, discardLogger())

	h, _ := d.Query(context.Background(), "#region")
	v, _, _ := h.GetAttribute(context.Background(), "value")
	require.NotEqual(t, "us-east-1", v) // one non-default option was selected
}
