package siteforge

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested section or image does not exist.
var ErrNotFound = sql.ErrNoRows

// SectionStore wraps a SQLite database holding section documents and
// uploaded image metadata.
type SectionStore struct {
	db *sql.DB
}

// NewSectionStore opens (or creates) the SQLite database at path, ensures
// the data directory exists, and runs schema migrations.
func NewSectionStore(path string) (*SectionStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write access, busy timeout so writers wait
	// instead of failing with SQLITE_BUSY, synchronous=NORMAL is safe with
	// WAL and avoids an fsync per transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SectionStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SectionStore) Close() error {
	return s.db.Close()
}

func (s *SectionStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS sections (
    key TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

// GetSection returns the stored document for key, or ErrNotFound.
func (s *SectionStore) GetSection(key string) (Document, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM sections WHERE key = ?`, key).Scan(&data)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("siteforge: section %q: corrupt document: %w", key, err)
	}
	return doc, nil
}

// SaveSection upserts the document for key, replacing any previous state
// wholesale, and returns the persisted document.
func (s *SectionStore) SaveSection(key string, doc Document) (Document, error) {
	data, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(`INSERT OR REPLACE INTO sections (key, data, updated_at) VALUES (?, ?, ?)`,
		key, string(data), now)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListSections returns every stored section ordered by key.
func (s *SectionStore) ListSections() ([]SectionRecord, error) {
	rows, err := s.db.Query(`SELECT key, updated_at FROM sections ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SectionRecord
	for rows.Next() {
		var r SectionRecord
		if err := rows.Scan(&r.Key, &r.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteSection removes a stored section by key.
func (s *SectionStore) DeleteSection(key string) error {
	_, err := s.db.Exec(`DELETE FROM sections WHERE key = ?`, key)
	return err
}

// SaveImage records metadata for an uploaded image.
func (s *SectionStore) SaveImage(img Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// ListImages returns all uploaded images, most recent first.
func (s *SectionStore) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes image metadata by filename.
func (s *SectionStore) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}
