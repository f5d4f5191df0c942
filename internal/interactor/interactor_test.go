package interactor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/browser/fakedriver"
	"github.com/brennhill/calibrator/internal/catalog"
)

func driverWith(el fakedriver.Element) (*fakedriver.Driver, browser.Handle) {
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(el)
	h, _ := d.Query(context.Background(), el.Selector)
	return d, h
}

func TestFill_TextLike(t *testing.T) {
	t.Parallel()
	d, h := driverWith(fakedriver.Element{Selector: "#n", Tag: "input", Type: "number", Visible: true})
	require.NoError(t, Fill(context.Background(), d, h, catalog.FieldNumber, "42"))
	el := d.Elements()[0]
	assert.Equal(t, "42", el.Value)
}

func TestFill_ToggleOnlyClicksWhenStateDiffers(t *testing.T) {
	t.Parallel()
	d, h := driverWith(fakedriver.Element{Selector: "#t", Tag: "input", Type: "checkbox", Visible: true, Checked: false})
	require.NoError(t, Fill(context.Background(), d, h, catalog.FieldToggle, "true"))
	assert.True(t, d.Elements()[0].Checked)

	// already true: filling "true" again must not flip it back.
	require.NoError(t, Fill(context.Background(), d, h, catalog.FieldToggle, "true"))
	assert.True(t, d.Elements()[0].Checked)
}

func TestFill_Select(t *testing.T) {
	t.Parallel()
	d, h := driverWith(fakedriver.Element{
		Selector: "#s", Tag: "select", Visible: true, Options: []string{"GB", "TB"},
	})
	require.NoError(t, Fill(context.Background(), d, h, catalog.FieldSelect, "TB"))
	assert.Equal(t, "TB", d.Elements()[0].Value)
}

func TestFill_Radio(t *testing.T) {
	t.Parallel()
	d := fakedriver.New(browser.Viewport{Width: 1280, Height: 800})
	d.AddElement(fakedriver.Element{Selector: "#r1", Tag: "input", Type: "radio", Visible: true, Attrs: map[string]string{"name": "plan", "value": "basic"}})
	d.AddElement(fakedriver.Element{Selector: "#r2", Tag: "input", Type: "radio", Visible: true, Attrs: map[string]string{"name": "plan", "value": "pro"}})
	h, _ := d.Query(context.Background(), "#r1")

	require.NoError(t, Fill(context.Background(), d, h, catalog.FieldRadio, "pro"))

	var selected *fakedriver.Element
	for _, el := range d.Elements() {
		if el.Checked {
			selected = el
		}
	}
	require.NotNil(t, selected)
	assert.Equal(t, "#r2", selected.Selector)
}

func TestFill_UnknownFieldTypeFails(t *testing.T) {
	t.Parallel()
	d, h := driverWith(fakedriver.Element{Selector: "#u", Tag: "div", Visible: true})
	err := Fill(context.Background(), d, h, catalog.FieldUnknown, "x")
	require.Error(t, err)
}
