package siteforge

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// DashboardEntry is one row of the admin dashboard: a registered section
// and, when it has been saved at least once, its last update time.
type DashboardEntry struct {
	Section   Section
	UpdatedAt string
}

// EditorShell renders the full editor page for a section: breadcrumb,
// device-width toggle, editor/live mode toggle, collapsible sidebar with
// the section's field bindings, preview iframe, and Save button. All state
// shown here is delegated to the session snapshot; the shell owns nothing.
func EditorShell(cfg Config, section Section, snap SessionSnapshot, csrf string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		bodyClass := "sf-editor"
		if snap.LiveMode {
			bodyClass += " sf-live"
		}
		if _, err := fmt.Fprintf(w,
			`<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s — %s</title><meta name="sf-csrf" content="%s"><meta name="sf-section" content="%s"><meta name="sf-dashboard" content="%s"><link rel="stylesheet" href="/public/editor.css"><script src="/public/editor.js" defer></script></head><body class="%s">`,
			esc(section.Title), esc(cfg.Name), esc(csrf), esc(section.Key), esc(cfg.DashboardURL), bodyClass); err != nil {
			return err
		}

		// Top bar: breadcrumb, toggles, save.
		if _, err := fmt.Fprintf(w,
			`<header class="sf-topbar"><nav class="sf-breadcrumb"><a href="%s">Dashboard</a><span>/</span><strong>%s</strong></nav>`,
			esc(cfg.DashboardURL), esc(section.Title)); err != nil {
			return err
		}
		if err := breakpointToggle(w, snap.Breakpoint); err != nil {
			return err
		}
		modeLabel := "Live"
		if snap.LiveMode {
			modeLabel = "Editor"
		}
		if _, err := fmt.Fprintf(w,
			`<button type="button" class="sf-btn" data-sf-mode>%s</button><button type="button" class="sf-btn" data-sf-sidebar-toggle>Sidebar</button><button type="button" class="sf-btn sf-btn-save" data-sf-save%s>Save</button></header>`,
			esc(modeLabel), savingAttr(snap.State)); err != nil {
			return err
		}

		if snap.Alert != nil {
			if _, err := fmt.Fprintf(w,
				`<div class="sf-alert sf-alert-%s" data-sf-alert>%s<button type="button" data-sf-alert-dismiss>&times;</button></div>`,
				esc(string(snap.Alert.Type)), esc(snap.Alert.Message)); err != nil {
				return err
			}
		}

		// Sidebar + preview.
		sidebarClass := "sf-sidebar"
		if snap.SidebarCollapsed {
			sidebarClass += " sf-collapsed"
		}
		if _, err := fmt.Fprintf(w, `<div class="sf-body"><aside class="%s">`, sidebarClass); err != nil {
			return err
		}
		switch {
		case snap.State == StateLoading:
			if _, err := io.WriteString(w, `<p class="sf-empty">Loading…</p>`); err != nil {
				return err
			}
		case snap.Document == nil:
			if _, err := io.WriteString(w, `<p class="sf-empty">Nothing to edit yet.</p>`); err != nil {
				return err
			}
		case section.Sidebar != nil:
			if err := section.Sidebar(snap.Document, csrf).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w,
			`</aside><main class="sf-preview %s"><iframe class="sf-preview-frame" src="/admin/editor/%s/preview/" title="Preview"></iframe></main></div>`,
			snap.Breakpoint.WidthClass(), esc(section.Key)); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func breakpointToggle(w io.Writer, active Breakpoint) error {
	if _, err := io.WriteString(w, `<div class="sf-device-toggle">`); err != nil {
		return err
	}
	for _, b := range []Breakpoint{BreakpointDesktop, BreakpointTablet, BreakpointMobile} {
		class := "sf-btn"
		if b == active {
			class += " sf-active"
		}
		if _, err := fmt.Fprintf(w, `<button type="button" class="%s" data-sf-breakpoint="%s">%s</button>`,
			class, esc(string(b)), esc(string(b))); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</div>`)
	return err
}

func savingAttr(state SessionState) string {
	if state == StateSaving {
		return ` disabled`
	}
	return ""
}

// PreviewFrame renders the iframe document: the section rendered by its own
// preview component plus the bridge script that applies pushes and answers
// with acknowledgements.
func PreviewFrame(section Section, doc Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="sf-section" content="%s"><link rel="stylesheet" href="/public/editor.css"><script src="/public/editor.js" defer></script></head><body class="sf-frame"><div id="sf-preview-root">`,
			esc(section.Key)); err != nil {
			return err
		}
		if doc != nil && section.Preview != nil {
			if err := section.Preview(doc).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div></body></html>`)
		return err
	})
}

func defaultLogin(cfg Config) func(showError bool, csrf string) templ.Component {
	return func(showError bool, csrf string) templ.Component {
		return component(func(w io.Writer) error {
			if _, err := fmt.Fprintf(w,
				`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Admin — %s</title><link rel="stylesheet" href="/public/editor.css"></head><body class="sf-login"><form method="post" action="/admin/login/" class="sf-login-form"><h1>%s</h1>`,
				esc(cfg.Name), esc(cfg.Name)); err != nil {
				return err
			}
			if showError {
				if _, err := io.WriteString(w, `<p class="sf-alert sf-alert-error">Wrong password.</p>`); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(w,
				`<input type="hidden" name="_csrf" value="%s"><input type="password" name="password" class="sf-input" placeholder="Password" autofocus><button type="submit" class="sf-btn sf-btn-save">Log in</button></form></body></html>`,
				esc(csrf))
			return err
		})
	}
}

func defaultDashboard(cfg Config) func(entries []DashboardEntry, msg, csrf string) templ.Component {
	return func(entries []DashboardEntry, msg, csrf string) templ.Component {
		return component(func(w io.Writer) error {
			if _, err := fmt.Fprintf(w,
				`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Dashboard — %s</title><link rel="stylesheet" href="/public/editor.css"></head><body class="sf-dashboard"><header class="sf-topbar"><strong>%s</strong><form method="post" action="/admin/logout/"><input type="hidden" name="_csrf" value="%s"><button type="submit" class="sf-btn">Log out</button></form></header>`,
				esc(cfg.Name), esc(cfg.Name), esc(csrf)); err != nil {
				return err
			}
			if msg != "" {
				if _, err := fmt.Fprintf(w, `<p class="sf-alert sf-alert-success">%s</p>`, esc(msg)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `<table class="sf-table"><thead><tr><th>Section</th><th>Last saved</th><th></th></tr></thead><tbody>`); err != nil {
				return err
			}
			for _, e := range entries {
				updated := e.UpdatedAt
				if updated == "" {
					updated = "never"
				}
				if _, err := fmt.Fprintf(w,
					`<tr><td>%s</td><td>%s</td><td><a class="sf-btn" href="/admin/editor/%s/">Edit</a></td></tr>`,
					esc(e.Section.Title), esc(updated), esc(e.Section.Key)); err != nil {
					return err
				}
			}
			_, err := io.WriteString(w, `</tbody></table></body></html>`)
			return err
		})
	}
}

func defaultNotFound() templ.Component {
	return component(func(w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Not found</title></head><body><h1>404</h1><p>Page not found.</p></body></html>`)
		return err
	})
}
