package siteforge

import "time"

// Config holds all configuration for a siteforge admin panel.
type Config struct {
	Name         string // Site name shown in the editor chrome (default "Site")
	URL          string // Canonical site URL (default "http://localhost:3000")
	DashboardURL string // Where the Save flow redirects (default "/admin/")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/sections.db")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	// BackendURL points the editor at a remote section REST backend instead
	// of the built-in sqlite store. Empty means the built-in store.
	BackendURL string

	// StrictPaths makes field writes with a broken path surface an error
	// alert instead of silently leaving the document untouched.
	StrictPaths bool

	AlertTTL        time.Duration // Alert auto-dismiss delay (default 4s)
	PreviewInterval time.Duration // Min spacing between preview pushes (default 1s)
	PreviewAckWait  time.Duration // Iframe ack timeout per push (default 3s)
	SectionCacheTTL time.Duration // Public section read cache TTL (default 5min)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Site"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.DashboardURL == "" {
		c.DashboardURL = "/admin/"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/sections.db"
	}
	if c.AlertTTL == 0 {
		c.AlertTTL = 4 * time.Second
	}
	if c.PreviewInterval == 0 {
		c.PreviewInterval = time.Second
	}
	if c.PreviewAckWait == 0 {
		c.PreviewAckWait = 3 * time.Second
	}
	if c.SectionCacheTTL == 0 {
		c.SectionCacheTTL = 5 * time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithUploader replaces the default local-disk image uploader.
func WithUploader(u Uploader) Option {
	return func(a *App) {
		a.uploader = u
	}
}

// WithBackend replaces the backend the editor sessions load from and save
// to. The default is the built-in sqlite store (or an HTTP backend when
// Config.BackendURL is set).
func WithBackend(b Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithCustomRoutes registers additional routes on the Echo instance. The
// callback runs after the engine's own routes are set up, before the server
// starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets and uploads
// (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
