// Package siteforge is a website section-editor engine built with Go, Echo,
// and templ. It serves an admin panel of live-preview page editors: each
// registered section is an arbitrary JSON document edited through
// path-bound field bindings, mirrored into a sandboxed preview iframe over
// a WebSocket, and persisted wholesale through a pluggable backend.
//
// Users register their sections (document shape, sidebar fields, preview
// renderer) and siteforge handles the editor lifecycle, storage,
// middleware, and authentication.
package siteforge

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds user-provided templ components for the admin chrome.
// Every field is optional; the engine falls back to its built-in pages.
// This is the inversion-of-control mechanism that lets embedding sites own
// and customize the panel's look.
type ViewFuncs struct {
	Login     func(showError bool, csrfToken string) templ.Component
	Dashboard func(entries []DashboardEntry, message string, csrfToken string) templ.Component
	NotFound  func() templ.Component
}

// App is the central siteforge application. It wires together the store,
// cache, editor sessions, preview syncs, handlers, and middleware.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *SectionStore
	Cache  *SectionCache
	Views  ViewFuncs

	backend  Backend
	uploader Uploader

	mu           sync.Mutex
	sections     map[string]Section
	sectionOrder []string
	instances    map[string]*editorInstance

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new siteforge App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		sections:  make(map[string]Section),
		instances: make(map[string]*editorInstance),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Register adds an editable section. Must be called before Start;
// registering the same key twice replaces the earlier definition.
func (a *App) Register(s Section) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.sections[s.Key]; !exists {
		a.sectionOrder = append(a.sectionOrder, s.Key)
	}
	if s.Type == "" {
		s.Type = s.Key
	}
	a.sections[s.Key] = s
}

// Start initializes the database, cache, backend, middleware, and routes,
// and starts the server.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) init() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("siteforge: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("siteforge: SessionSecret is required")
	}

	store, err := NewSectionStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("siteforge: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewSectionCache(store, a.Config.SectionCacheTTL)

	if a.backend == nil {
		if a.Config.BackendURL != "" {
			a.backend = &HTTPBackend{Client: &http.Client{Timeout: 15 * time.Second}}
		} else {
			a.backend = &StoreBackend{Store: store}
		}
	}
	if a.uploader == nil {
		a.uploader = &LocalUploader{Dir: a.staticDir, BaseURL: "/public", Store: store}
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Views.Login == nil {
		a.Views.Login = defaultLogin(a.Config)
	}
	if a.Views.Dashboard == nil {
		a.Views.Dashboard = defaultDashboard(a.Config)
	}
	if a.Views.NotFound == nil {
		a.Views.NotFound = defaultNotFound
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded framework assets served under /public/, falling through to
	// the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/editor.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/editor.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.staticDir)

	// Admin panel
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	// Editors
	e.GET("/admin/editor/:key/", a.handleEditor)
	e.GET("/admin/editor/:key/preview/", a.handlePreviewFrame)
	e.GET("/admin/editor/:key/preview/ws/", a.handlePreviewSocket)
	e.POST("/admin/editor/:key/field/", a.handleFieldChange)
	e.POST("/admin/editor/:key/items/:op/", a.handleItemOp)
	e.POST("/admin/editor/:key/save/", a.handleSave)
	e.POST("/admin/editor/:key/upload/", a.handleUpload)
	e.GET("/admin/editor/:key/export/", a.handleExport)
	e.POST("/admin/editor/:key/import/", a.handleImport)
	e.POST("/admin/editor/:key/ui/", a.handleUIState)
	e.POST("/admin/editor/:key/alert/dismiss/", a.handleAlertDismiss)

	// Section REST backend
	e.GET("/api/sections/:key/", a.handleSectionGet)
	e.POST("/api/sections/:key/", a.handleSectionPost)
}

// Section returns the stored document for key through the TTL cache. This
// is the public read path for the embedding site's own page rendering.
func (a *App) Section(key string) (Document, error) {
	return a.Cache.Get(key)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	a.mu.Lock()
	for _, inst := range a.instances {
		inst.preview.Stop()
	}
	a.mu.Unlock()
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if
// empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally
// exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("siteforge: required environment variable %s is not set", key)
	}
	return v
}
