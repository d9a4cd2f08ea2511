package siteforge

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a := New(Config{
		AdminPassword: "hunter2",
		SessionSecret: "test-secret",
		DatabasePath:  filepath.Join(t.TempDir(), "app.db"),
	})
	a.Register(Section{Key: "header", Title: "Header"})
	if err := a.init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

func do(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestAdminShowsLoginWhenUnauthenticated(t *testing.T) {
	a := newTestApp(t)
	rec := do(a, httptest.NewRequest(http.MethodGet, "/admin/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="password"`) {
		t.Error("expected the login form")
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
}

func TestEditorRedirectsWhenUnauthenticated(t *testing.T) {
	a := newTestApp(t)
	rec := do(a, httptest.NewRequest(http.MethodGet, "/admin/editor/header/", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/" {
		t.Errorf("Location = %q", loc)
	}
}

func TestSectionAPIGetIsPublicAndUncached(t *testing.T) {
	a := newTestApp(t)
	a.Store.SaveSection("header", Document{"title": "Hi"})

	rec := do(a, httptest.NewRequest(http.MethodGet, "/api/sections/header/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"title":"Hi"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	rec = do(a, httptest.NewRequest(http.MethodGet, "/api/sections/missing/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing section status = %d", rec.Code)
	}
}

func TestSectionAPIPostRequiresAdmin(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/sections/header/", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(a, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if _, err := a.Store.GetSection("header"); err == nil {
		t.Error("unauthenticated POST must not persist")
	}
}

func TestEditorMutationsRequireAdmin(t *testing.T) {
	a := newTestApp(t)
	paths := []string{
		"/admin/editor/header/save/",
		"/admin/editor/header/field/",
		"/admin/editor/header/items/add/",
	}
	for _, p := range paths {
		req := httptest.NewRequest(http.MethodPost, p, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := do(a, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s status = %d, want 403", p, rec.Code)
		}
	}
}
