package siteforge

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Field bindings are the labeled input primitives the editor sidebar is
// built from. Each binds a (label, value, path) triple; the embedded
// editor.js wires the data-sf-* attributes to the session's change
// endpoints. Bindings are purely presentational glue: they carry no
// validation beyond native input constraints and no knowledge of what a
// path means.

// SelectOption is one choice in a SelectField.
type SelectOption struct {
	Label string
	Value string
}

type fieldConfig struct {
	placeholder string
	disabled    bool
}

// FieldOption tunes an individual field binding.
type FieldOption func(*fieldConfig)

// Placeholder sets the input placeholder text.
func Placeholder(s string) FieldOption {
	return func(c *fieldConfig) { c.placeholder = s }
}

// Disabled renders the input read-only.
func Disabled() FieldOption {
	return func(c *fieldConfig) { c.disabled = true }
}

func applyFieldOptions(opts []FieldOption) fieldConfig {
	var c fieldConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func component(fn func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return fn(w)
	})
}

func esc(s string) string { return templ.EscapeString(s) }

// TextField binds a single-line text input to path.
func TextField(label, value, path string, opts ...FieldOption) templ.Component {
	cfg := applyFieldOptions(opts)
	return component(func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<label class="sf-field"><span class="sf-field-label">%s</span><input type="text" class="sf-input" data-sf-path="%s" data-sf-type="text" value="%s" placeholder="%s"%s></label>`,
			esc(label), esc(path), esc(value), esc(cfg.placeholder), disabledAttr(cfg.disabled))
		return err
	})
}

// TextAreaField binds a multi-line text input to path.
func TextAreaField(label, value, path string, opts ...FieldOption) templ.Component {
	cfg := applyFieldOptions(opts)
	return component(func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<label class="sf-field"><span class="sf-field-label">%s</span><textarea class="sf-input sf-textarea" data-sf-path="%s" data-sf-type="text" placeholder="%s"%s>%s</textarea></label>`,
			esc(label), esc(path), esc(cfg.placeholder), disabledAttr(cfg.disabled), esc(value))
		return err
	})
}

// LinkField is a text input with URL semantics.
func LinkField(label, value, path string, opts ...FieldOption) templ.Component {
	if applyFieldOptions(opts).placeholder == "" {
		opts = append(opts, Placeholder("https://example.com or /page"))
	}
	return TextField(label, value, path, opts...)
}

// NumberField binds a numeric input with native min/max/step constraints.
func NumberField(label string, value float64, path string, min, max, step float64) templ.Component {
	return component(func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<label class="sf-field"><span class="sf-field-label">%s</span><input type="number" class="sf-input" data-sf-path="%s" data-sf-type="number" value="%s" min="%s" max="%s" step="%s"></label>`,
			esc(label), esc(path), fmtFloat(value), fmtFloat(min), fmtFloat(max), fmtFloat(step))
		return err
	})
}

// SelectField binds a single-select enumerated choice to path.
func SelectField(label, value, path string, options []SelectOption) templ.Component {
	return component(func(w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<label class="sf-field"><span class="sf-field-label">%s</span><select class="sf-input" data-sf-path="%s" data-sf-type="text">`,
			esc(label), esc(path)); err != nil {
			return err
		}
		for _, opt := range options {
			selected := ""
			if opt.Value == value {
				selected = ` selected`
			}
			if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
				esc(opt.Value), selected, esc(opt.Label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</select></label>`)
		return err
	})
}

// CheckboxField binds a boolean toggle to path.
func CheckboxField(label string, checked bool, path string) templ.Component {
	return component(func(w io.Writer) error {
		checkedAttr := ""
		if checked {
			checkedAttr = ` checked`
		}
		_, err := fmt.Fprintf(w,
			`<label class="sf-field sf-field-inline"><input type="checkbox" class="sf-checkbox" data-sf-path="%s" data-sf-type="bool"%s><span class="sf-field-label">%s</span></label>`,
			esc(path), checkedAttr, esc(label))
		return err
	})
}

// ColorField binds a color value to path: a hex text input and a native
// color well kept in sync by editor.js.
func ColorField(label, value, path string) templ.Component {
	return component(func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<label class="sf-field"><span class="sf-field-label">%s</span><span class="sf-color-pair"><input type="color" class="sf-color-well" data-sf-color-for="%s" value="%s"><input type="text" class="sf-input sf-color-hex" data-sf-path="%s" data-sf-type="text" value="%s"></span></label>`,
			esc(label), esc(path), esc(value), esc(path), esc(value))
		return err
	})
}

// ImageField renders a file input that delegates to the upload endpoint,
// an inline preview once a URL is set, and a busy marker while an upload
// is in flight.
func ImageField(label, url, path string, uploading bool) templ.Component {
	return component(func(w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<div class="sf-field sf-image-field" data-sf-path="%s"><span class="sf-field-label">%s</span>`,
			esc(path), esc(label)); err != nil {
			return err
		}
		if url != "" {
			if _, err := fmt.Fprintf(w, `<img class="sf-image-preview" src="%s" alt="">`, esc(url)); err != nil {
				return err
			}
		}
		if uploading {
			if _, err := io.WriteString(w, `<span class="sf-uploading">Uploading…</span>`); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `<input type="file" class="sf-file-input" accept="image/*" data-sf-upload="%s"></div>`, esc(path))
		return err
	})
}

// FieldGroup wraps child bindings in a labeled fieldset. Pure visual
// grouping; it holds no state.
func FieldGroup(label string, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<fieldset class="sf-field-group"><legend>%s</legend>`, esc(label)); err != nil {
			return err
		}
		for _, child := range children {
			if err := child.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</fieldset>`)
		return err
	})
}

func disabledAttr(disabled bool) string {
	if disabled {
		return ` disabled`
	}
	return ""
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
