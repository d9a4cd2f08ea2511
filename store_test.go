package siteforge

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SectionStore {
	t.Helper()
	store, err := NewSectionStore(filepath.Join(t.TempDir(), "siteforge.db"))
	if err != nil {
		t.Fatalf("NewSectionStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSectionRoundtrip(t *testing.T) {
	store := newTestStore(t)

	doc := Document{
		"title": "Welcome",
		"mainMenu": []any{
			map[string]any{"_id": "1", "name": "Home", "order": float64(0)},
		},
	}
	if _, err := store.SaveSection("header", doc); err != nil {
		t.Fatalf("SaveSection failed: %v", err)
	}

	got, err := store.GetSection("header")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if got["title"] != "Welcome" {
		t.Errorf("title = %v", got["title"])
	}
	items, ok := got["mainMenu"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("mainMenu = %#v", got["mainMenu"])
	}
	if ItemID(items[0].(map[string]any)) != "1" {
		t.Error("item id lost in roundtrip")
	}
}

func TestGetSectionMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetSection("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveSectionReplacesWholesale(t *testing.T) {
	store := newTestStore(t)
	store.SaveSection("footer", Document{"old": "value", "keep": "no"})
	if _, err := store.SaveSection("footer", Document{"new": "value"}); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetSection("footer")
	if err != nil {
		t.Fatal(err)
	}
	if _, stale := got["old"]; stale {
		t.Error("previous document fields survived an overwrite")
	}
	if got["new"] != "value" {
		t.Errorf("new = %v", got["new"])
	}
}

func TestListSectionsOrdered(t *testing.T) {
	store := newTestStore(t)
	for _, key := range []string{"footer", "contact", "header"} {
		if _, err := store.SaveSection(key, Document{"k": key}); err != nil {
			t.Fatal(err)
		}
	}
	records, err := store.ListSections()
	if err != nil {
		t.Fatalf("ListSections failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}
	want := []string{"contact", "footer", "header"}
	for i, r := range records {
		if r.Key != want[i] {
			t.Errorf("records[%d].Key = %q, want %q", i, r.Key, want[i])
		}
		if r.UpdatedAt == "" {
			t.Errorf("records[%d] missing updated_at", i)
		}
	}
}

func TestDeleteSection(t *testing.T) {
	store := newTestStore(t)
	store.SaveSection("header", Document{"title": "x"})
	if err := store.DeleteSection("header"); err != nil {
		t.Fatalf("DeleteSection failed: %v", err)
	}
	if _, err := store.GetSection("header"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err after delete = %v", err)
	}
}

func TestImageMetadata(t *testing.T) {
	store := newTestStore(t)
	older := Image{
		Filename:     "logo-1.jpg",
		OriginalName: "logo.png",
		Width:        800,
		Height:       600,
		Size:         12345,
		UploadedAt:   time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	}
	newer := Image{
		Filename:     "hero-1.jpg",
		OriginalName: "hero.jpg",
		Width:        1600,
		Height:       900,
		Size:         54321,
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, img := range []Image{older, newer} {
		if err := store.SaveImage(img); err != nil {
			t.Fatalf("SaveImage failed: %v", err)
		}
	}

	images, err := store.ListImages()
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images", len(images))
	}
	if images[0].Filename != "hero-1.jpg" {
		t.Errorf("most recent first: got %q", images[0].Filename)
	}
	if images[1].Width != 800 || images[1].Size != 12345 {
		t.Errorf("metadata roundtrip: %+v", images[1])
	}

	if err := store.DeleteImage("logo-1.jpg"); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}
	images, _ = store.ListImages()
	if len(images) != 1 {
		t.Errorf("got %d images after delete", len(images))
	}
}
