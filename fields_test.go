package siteforge

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func renderField(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return b.String()
}

func TestTextFieldBindsPath(t *testing.T) {
	html := renderField(t, TextField("Site Title", "Hello", "header.title"))
	for _, want := range []string{
		`data-sf-path="header.title"`,
		`data-sf-type="text"`,
		`value="Hello"`,
		`Site Title`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %s in %s", want, html)
		}
	}
}

func TestTextFieldEscapesValues(t *testing.T) {
	html := renderField(t, TextField(`<b>Label</b>`, `"quoted" & <tag>`, "p"))
	if strings.Contains(html, "<b>Label</b>") {
		t.Error("label not escaped")
	}
	if strings.Contains(html, `value=""quoted"`) {
		t.Error("value not escaped")
	}
	if !strings.Contains(html, "&lt;b&gt;") {
		t.Errorf("escaped label missing: %s", html)
	}
}

func TestTextFieldOptions(t *testing.T) {
	html := renderField(t, TextField("T", "", "p", Placeholder("Type here"), Disabled()))
	if !strings.Contains(html, `placeholder="Type here"`) {
		t.Error("placeholder missing")
	}
	if !strings.Contains(html, " disabled") {
		t.Error("disabled attribute missing")
	}
}

func TestLinkFieldDefaultsPlaceholder(t *testing.T) {
	html := renderField(t, LinkField("Link", "/about", "menu.link"))
	if !strings.Contains(html, `placeholder="https://example.com or /page"`) {
		t.Errorf("default placeholder missing: %s", html)
	}
}

func TestNumberField(t *testing.T) {
	html := renderField(t, NumberField("Columns", 3, "grid.columns", 1, 6, 1))
	for _, want := range []string{
		`type="number"`,
		`data-sf-type="number"`,
		`value="3"`,
		`min="1"`,
		`max="6"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestSelectFieldMarksCurrentValue(t *testing.T) {
	html := renderField(t, SelectField("Align", "center", "layout.align", []SelectOption{
		{Label: "Left", Value: "left"},
		{Label: "Center", Value: "center"},
	}))
	if !strings.Contains(html, `<option value="center" selected>Center</option>`) {
		t.Errorf("current value not selected: %s", html)
	}
	if strings.Contains(html, `value="left" selected`) {
		t.Error("non-current option selected")
	}
}

func TestCheckboxField(t *testing.T) {
	html := renderField(t, CheckboxField("Show banner", true, "banner.visible"))
	if !strings.Contains(html, `data-sf-type="bool"`) {
		t.Error("bool type marker missing")
	}
	if !strings.Contains(html, " checked") {
		t.Error("checked attribute missing")
	}
	html = renderField(t, CheckboxField("Show banner", false, "banner.visible"))
	if strings.Contains(html, " checked") {
		t.Error("unchecked box rendered checked")
	}
}

func TestColorFieldPairsWellAndHexInput(t *testing.T) {
	html := renderField(t, ColorField("Background", "#102030", "style.bg"))
	if !strings.Contains(html, `data-sf-color-for="style.bg"`) {
		t.Error("color well not paired to path")
	}
	if !strings.Contains(html, `data-sf-path="style.bg"`) {
		t.Error("hex input not bound to path")
	}
}

func TestImageFieldStates(t *testing.T) {
	html := renderField(t, ImageField("Logo", "", "logo.image", false))
	if strings.Contains(html, "sf-image-preview") {
		t.Error("preview rendered without a URL")
	}
	if !strings.Contains(html, `data-sf-upload="logo.image"`) {
		t.Error("upload binding missing")
	}

	html = renderField(t, ImageField("Logo", "/public/images/logo.jpg", "logo.image", true))
	if !strings.Contains(html, `src="/public/images/logo.jpg"`) {
		t.Error("preview image missing")
	}
	if !strings.Contains(html, "sf-uploading") {
		t.Error("busy marker missing while uploading")
	}
}

func TestFieldGroupRendersChildrenInOrder(t *testing.T) {
	html := renderField(t, FieldGroup("Menu",
		TextField("Name", "Home", "name"),
		LinkField("Link", "/", "link"),
	))
	if !strings.Contains(html, "<legend>Menu</legend>") {
		t.Error("legend missing")
	}
	name := strings.Index(html, `data-sf-path="name"`)
	link := strings.Index(html, `data-sf-path="link"`)
	if name == -1 || link == -1 || name > link {
		t.Errorf("children out of order: %s", html)
	}
}
