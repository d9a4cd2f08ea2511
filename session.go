package siteforge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// SessionState is the lifecycle phase of an editor session.
type SessionState string

const (
	StateLoading SessionState = "loading"
	StateReady   SessionState = "ready"
	StateSaving  SessionState = "saving"
)

// ErrNoDocument is returned by mutation entry points before a document has
// been loaded.
var ErrNoDocument = errors.New("siteforge: no document loaded")

// EditorSession owns the in-memory document for one editable section: the
// load/save lifecycle against its backend endpoint, the mutation entry
// points field bindings call into, transient UI state (alert banner,
// preview breakpoint, sidebar collapse, per-path upload flags), and change
// notification for the preview subsystem.
//
// The document is only ever replaced wholesale, never mutated in place, so
// observers can rely on every notification carrying a fresh tree. A single
// mutex guards all state; the backend is never called with the lock held.
type EditorSession struct {
	section  Section
	endpoint string
	backend  Backend
	uploader Uploader
	strict   bool
	alertTTL time.Duration

	mu        sync.Mutex
	state     SessionState
	doc       Document
	alert     *Alert
	alertGen  int
	uploading map[string]bool

	breakpoint       Breakpoint
	liveMode         bool
	sidebarCollapsed bool

	// Monotonic request sequencing: a response is applied only if no newer
	// request already landed, so a slow stale fetch cannot overwrite newer
	// state.
	seq     uint64
	applied uint64

	observers []func(Document)
}

// SessionOptions tunes a new editor session. Zero values mean: endpoint is
// the section key, tolerant path writes, 4s alert TTL, no uploader.
type SessionOptions struct {
	Endpoint    string
	Uploader    Uploader
	StrictPaths bool
	AlertTTL    time.Duration
}

// NewEditorSession creates a session for section backed by backend. The
// document is nil until Load succeeds.
func NewEditorSession(section Section, backend Backend, opts SessionOptions) *EditorSession {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = section.Key
	}
	ttl := opts.AlertTTL
	if ttl == 0 {
		ttl = 4 * time.Second
	}
	return &EditorSession{
		section:    section,
		endpoint:   endpoint,
		backend:    backend,
		uploader:   opts.Uploader,
		strict:     opts.StrictPaths,
		alertTTL:   ttl,
		state:      StateLoading,
		uploading:  make(map[string]bool),
		breakpoint: BreakpointDesktop,
	}
}

// Section returns the section this session edits.
func (s *EditorSession) Section() Section { return s.section }

// State returns the current lifecycle phase.
func (s *EditorSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document returns the current in-memory document. Nil means nothing has
// loaded yet; callers must not mutate the returned tree.
func (s *EditorSession) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// OnChange registers fn to run after every document replacement. The
// preview subsystem subscribes here; change propagation is explicit rather
// than inferred from reference equality.
func (s *EditorSession) OnChange(fn func(Document)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *EditorSession) notify(doc Document) {
	s.mu.Lock()
	obs := make([]func(Document), len(s.observers))
	copy(obs, s.observers)
	s.mu.Unlock()
	for _, fn := range obs {
		fn(doc)
	}
}

// Load fetches the current document from the endpoint. A backend miss seeds
// the section's initial document instead of failing; any other error
// surfaces as an error alert and leaves the document nil. A stale response
// (superseded by a newer load or save) is discarded.
func (s *EditorSession) Load(ctx context.Context) error {
	seq := s.nextSeq()
	doc, err := s.backend.Fetch(ctx, s.endpoint)

	s.mu.Lock()
	if err != nil && errors.Is(err, ErrNotFound) && s.section.Initial != nil {
		doc, err = s.section.Initial, nil
	}
	if err != nil {
		s.state = StateReady
		s.setAlertLocked(AlertError, "Failed to load content")
		s.mu.Unlock()
		return err
	}
	if seq <= s.applied {
		s.mu.Unlock()
		return nil
	}
	s.applied = seq
	s.doc = doc
	s.state = StateReady
	s.mu.Unlock()

	s.notify(doc)
	return nil
}

// HandleTextChange writes value at path and replaces the document. Pure
// in-memory: nothing is persisted until Save (uploads and list operations
// save on their own). A broken path is a silent no-op unless the session
// was created with StrictPaths, in which case it surfaces an error alert.
func (s *EditorSession) HandleTextChange(value any, path string) error {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return ErrNoDocument
	}
	next, ok := Set(s.doc, path, value)
	if !ok {
		if s.strict {
			s.setAlertLocked(AlertError, fmt.Sprintf("Cannot update %s", path))
			s.mu.Unlock()
			return fmt.Errorf("siteforge: path %q does not resolve to a container", path)
		}
		s.mu.Unlock()
		return nil
	}
	s.doc = next
	s.mu.Unlock()

	s.notify(next)
	return nil
}

// HandleImageUpload runs the injected uploader on the selected file, writes
// the returned URL at path, and persists the whole document. The per-path
// uploading flag is cleared whatever the outcome. A failed upload leaves
// the document untouched and surfaces an error alert.
func (s *EditorSession) HandleImageUpload(ctx context.Context, path, filename string, r io.Reader) error {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return ErrNoDocument
	}
	if s.uploader == nil {
		s.setAlertLocked(AlertError, "No uploader configured")
		s.mu.Unlock()
		return errors.New("siteforge: no uploader configured")
	}
	s.uploading[path] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.uploading, path)
		s.mu.Unlock()
	}()

	url, err := s.uploader.Upload(ctx, filename, r)
	if err != nil {
		s.mu.Lock()
		s.setAlertLocked(AlertError, "Failed to upload image: "+err.Error())
		s.mu.Unlock()
		return err
	}
	if err := s.HandleTextChange(url, path); err != nil {
		return err
	}
	return s.persist(ctx, "Image uploaded successfully")
}

// ReplaceDocument swaps in a whole new document (the JSON import path) and
// notifies observers. Persistence is still the caller's job.
func (s *EditorSession) ReplaceDocument(doc Document) {
	s.mu.Lock()
	s.doc = doc
	s.state = StateReady
	s.mu.Unlock()
	s.notify(doc)
}

// Uploading reports whether an upload is in flight for path.
func (s *EditorSession) Uploading(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading[path]
}

// Save persists the full current document to the endpoint: Ready → Saving,
// then back to Ready with a success or error alert. The error is also
// returned so callers chaining a redirect can abort. Last writer wins;
// there is no concurrency token and no merge.
func (s *EditorSession) Save(ctx context.Context) error {
	return s.persist(ctx, "Changes saved successfully")
}

func (s *EditorSession) persist(ctx context.Context, success string) error {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return ErrNoDocument
	}
	doc := s.doc
	s.seq++
	seq := s.seq
	s.state = StateSaving
	s.mu.Unlock()

	_, err := s.backend.Update(ctx, s.endpoint, doc)

	s.mu.Lock()
	s.state = StateReady
	if err != nil {
		s.setAlertLocked(AlertError, "Failed to save changes")
		s.mu.Unlock()
		return err
	}
	if seq > s.applied {
		s.applied = seq
	}
	s.setAlertLocked(AlertSuccess, success)
	s.mu.Unlock()
	return nil
}

// AddItem appends item to the list at path (generating an id, renumbering
// order densely), fires a success alert named after noun, and persists.
func (s *EditorSession) AddItem(ctx context.Context, path string, item map[string]any, noun string) error {
	return s.mutateItems(ctx, path, noun+" added successfully", func(items []any) []any {
		return AppendItem(items, item)
	})
}

// EditItem overwrites fields on the identified item and persists.
func (s *EditorSession) EditItem(ctx context.Context, path, id string, fields map[string]any, noun string) error {
	return s.mutateItems(ctx, path, noun+" updated successfully", func(items []any) []any {
		return UpdateItem(items, id, fields)
	})
}

// DeleteItem removes the identified item, renumbers, and persists.
func (s *EditorSession) DeleteItem(ctx context.Context, path, id, noun string) error {
	return s.mutateItems(ctx, path, noun+" deleted successfully", func(items []any) []any {
		return RemoveItem(items, id)
	})
}

// ReorderItem moves the identified item to position to, renumbers, and
// persists.
func (s *EditorSession) ReorderItem(ctx context.Context, path, id string, to int, noun string) error {
	return s.mutateItems(ctx, path, noun+" reordered successfully", func(items []any) []any {
		return MoveItem(items, id, to)
	})
}

func (s *EditorSession) mutateItems(ctx context.Context, path, message string, op func([]any) []any) error {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return ErrNoDocument
	}
	cur, _ := Get(s.doc, path)
	items, _ := cur.([]any)
	next, ok := Set(s.doc, path, op(items))
	if !ok {
		s.setAlertLocked(AlertError, fmt.Sprintf("Cannot update %s", path))
		s.mu.Unlock()
		return fmt.Errorf("siteforge: path %q does not resolve to a container", path)
	}
	s.doc = next
	s.mu.Unlock()

	s.notify(next)
	return s.persist(ctx, message)
}

// Alert returns the current notification banner, or nil.
func (s *EditorSession) Alert() *Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alert
}

// DismissAlert clears the banner before its TTL expires.
func (s *EditorSession) DismissAlert() {
	s.mu.Lock()
	s.alert = nil
	s.alertGen++
	s.mu.Unlock()
}

// setAlertLocked replaces the banner and schedules auto-dismissal. The
// generation counter stops a stale timer from clearing a newer alert.
func (s *EditorSession) setAlertLocked(t AlertType, msg string) {
	s.alertGen++
	gen := s.alertGen
	s.alert = &Alert{Type: t, Message: msg}
	time.AfterFunc(s.alertTTL, func() {
		s.mu.Lock()
		if s.alertGen == gen {
			s.alert = nil
		}
		s.mu.Unlock()
	})
}

// SetBreakpoint switches the emulated preview width. Pure UI state: the
// preview surface only swaps a CSS class, nothing reloads or re-pushes.
func (s *EditorSession) SetBreakpoint(b Breakpoint) {
	s.mu.Lock()
	s.breakpoint = b
	s.mu.Unlock()
}

// SetLiveMode toggles between editor mode and live mode.
func (s *EditorSession) SetLiveMode(live bool) {
	s.mu.Lock()
	s.liveMode = live
	s.mu.Unlock()
}

// SetSidebarCollapsed toggles the field sidebar.
func (s *EditorSession) SetSidebarCollapsed(collapsed bool) {
	s.mu.Lock()
	s.sidebarCollapsed = collapsed
	s.mu.Unlock()
}

// SessionSnapshot is a consistent view of session state for rendering.
type SessionSnapshot struct {
	State            SessionState
	Document         Document
	Alert            *Alert
	Breakpoint       Breakpoint
	LiveMode         bool
	SidebarCollapsed bool
	Uploading        map[string]bool
}

// Snapshot copies the state the editor shell needs to render.
func (s *EditorSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	uploading := make(map[string]bool, len(s.uploading))
	for k, v := range s.uploading {
		uploading[k] = v
	}
	var alert *Alert
	if s.alert != nil {
		a := *s.alert
		alert = &a
	}
	return SessionSnapshot{
		State:            s.state,
		Document:         s.doc,
		Alert:            alert,
		Breakpoint:       s.breakpoint,
		LiveMode:         s.liveMode,
		SidebarCollapsed: s.sidebarCollapsed,
		Uploading:        uploading,
	}
}

func (s *EditorSession) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}
