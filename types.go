package siteforge

import "github.com/a-h/templ"

// AlertType classifies a transient notification banner.
type AlertType string

const (
	AlertSuccess AlertType = "success"
	AlertError   AlertType = "error"
)

// Alert is a transient notification shown in the editor chrome. It lives
// only in session state, auto-dismisses after the configured TTL, and is
// never persisted.
type Alert struct {
	Type    AlertType
	Message string
}

// Breakpoint selects the emulated viewport width of the preview surface.
// Switching breakpoints changes only a CSS width class; it never reloads
// the preview or triggers a push.
type Breakpoint string

const (
	BreakpointDesktop Breakpoint = "desktop"
	BreakpointTablet  Breakpoint = "tablet"
	BreakpointMobile  Breakpoint = "mobile"
)

// WidthClass returns the CSS class applied to the preview container.
func (b Breakpoint) WidthClass() string {
	switch b {
	case BreakpointTablet:
		return "sf-preview-tablet"
	case BreakpointMobile:
		return "sf-preview-mobile"
	default:
		return "sf-preview-desktop"
	}
}

// Section describes one editable page section registered with the App. The
// engine owns the edit lifecycle; the embedding site owns the document shape
// and the two render functions.
type Section struct {
	Key   string // registry key, also the default storage key
	Title string // shown in breadcrumb and dashboard
	Type  string // sectionType sent alongside preview pushes

	// Endpoint overrides the backend endpoint for this section. Empty means
	// the section key (store backend) or /api/sections/<key>/ (HTTP backend).
	Endpoint string

	// Initial seeds the document the first time the section is edited and
	// the backend has nothing stored yet.
	Initial Document

	// Sidebar renders the section's field bindings for the given document.
	Sidebar func(doc Document, csrf string) templ.Component

	// Preview renders the section in-process. Used by the live preview
	// fallback when the iframe never acknowledges pushes.
	Preview func(doc Document) templ.Component
}

// Image is the stored metadata for an uploaded, processed image.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// SectionRecord is a dashboard row: a stored section and its last save time.
type SectionRecord struct {
	Key       string
	UpdatedAt string
}
