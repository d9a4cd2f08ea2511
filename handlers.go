package siteforge

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var previewUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// editorInstance pairs a session with its preview sync. One per section,
// created lazily on first editor visit.
type editorInstance struct {
	session *EditorSession
	preview *PreviewSync
}

// editor returns (creating if needed) the editor instance for key.
func (a *App) editor(key string) (*editorInstance, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if inst, ok := a.instances[key]; ok {
		return inst, nil
	}
	section, ok := a.sections[key]
	if !ok {
		return nil, ErrNotFound
	}
	sess := NewEditorSession(section, a.backend, SessionOptions{
		Endpoint:    a.endpointFor(section),
		Uploader:    a.uploader,
		StrictPaths: a.Config.StrictPaths,
		AlertTTL:    a.Config.AlertTTL,
	})
	var renderFallback func(Document) (string, error)
	if section.Preview != nil {
		renderFallback = func(doc Document) (string, error) {
			return RenderToString(section.Preview(doc))
		}
	}
	preview := NewPreviewSync(section.Type, a.Config.PreviewInterval, a.Config.PreviewAckWait, renderFallback)
	sess.OnChange(preview.Push)
	inst := &editorInstance{session: sess, preview: preview}
	a.instances[key] = inst
	return inst, nil
}

func (a *App) endpointFor(section Section) string {
	if section.Endpoint != "" {
		return section.Endpoint
	}
	if a.Config.BackendURL != "" {
		return BuildURL(a.Config.BackendURL, "api", "sections", section.Key)
	}
	return section.Key
}

func (a *App) handleEditor(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	inst, err := a.editor(c.Param("key"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	if inst.session.Document() == nil {
		// Load on mount; a failed load still renders the shell with the
		// error alert and an empty sidebar.
		_ = inst.session.Load(c.Request().Context())
	}
	return Render(c, EditorShell(a.Config, inst.session.Section(), inst.session.Snapshot(), CsrfToken(c)))
}

func (a *App) handlePreviewFrame(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	inst, err := a.editor(c.Param("key"))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	return Render(c, PreviewFrame(inst.session.Section(), inst.session.Document()))
}

func (a *App) handlePreviewSocket(c echo.Context) error {
	if !IsAdmin(c) {
		return c.NoContent(http.StatusForbidden)
	}
	inst, err := a.editor(c.Param("key"))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	conn, err := previewUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	inst.preview.Attach(conn)
	defer func() {
		inst.preview.Detach(conn)
		conn.Close()
	}()
	for {
		var msg PreviewMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil
		}
		inst.preview.HandleClientMessage(msg)
	}
}

type fieldChangeRequest struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (a *App) handleFieldChange(c echo.Context) error {
	inst, ok := a.requireEditor(c)
	if !ok {
		return nil
	}
	var req fieldChangeRequest
	if err := c.Bind(&req); err != nil || req.Path == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	if err := inst.session.HandleTextChange(req.Value, req.Path); err != nil {
		return a.alertResponse(c, inst.session, http.StatusUnprocessableEntity)
	}
	return c.NoContent(http.StatusNoContent)
}

type itemOpRequest struct {
	Path   string         `json:"path"`
	Noun   string         `json:"noun"`
	ID     string         `json:"id"`
	To     int            `json:"to"`
	Item   map[string]any `json:"item"`
	Fields map[string]any `json:"fields"`
}

func (a *App) handleItemOp(c echo.Context) error {
	inst, ok := a.requireEditor(c)
	if !ok {
		return nil
	}
	var req itemOpRequest
	if err := c.Bind(&req); err != nil || req.Path == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	noun := req.Noun
	if noun == "" {
		noun = "Item"
	}
	ctx := c.Request().Context()
	sess := inst.session
	var err error
	switch c.Param("op") {
	case "add":
		err = sess.AddItem(ctx, req.Path, req.Item, noun)
	case "edit":
		err = sess.EditItem(ctx, req.Path, req.ID, req.Fields, noun)
	case "delete":
		err = sess.DeleteItem(ctx, req.Path, req.ID, noun)
	case "reorder":
		err = sess.ReorderItem(ctx, req.Path, req.ID, req.To, noun)
	default:
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return a.alertResponse(c, sess, http.StatusInternalServerError)
	}
	a.Cache.Invalidate(sess.Section().Key)
	return a.alertResponse(c, sess, http.StatusOK)
}

func (a *App) handleSave(c echo.Context) error {
	inst, ok := a.requireEditor(c)
	if !ok {
		return nil
	}
	if err := inst.session.Save(c.Request().Context()); err != nil {
		return a.alertResponse(c, inst.session, http.StatusInternalServerError)
	}
	a.Cache.Invalidate(inst.session.Section().Key)
	return c.JSON(http.StatusOK, map[string]any{
		"alert":    inst.session.Alert(),
		"redirect": a.Config.DashboardURL,
	})
}

func (a *App) handleUpload(c echo.Context) error {
	inst, ok := a.requireEditor(c)
	if !ok {
		return nil
	}
	path := c.FormValue("path")
	if path == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if err := inst.session.HandleImageUpload(c.Request().Context(), path, file.Filename, src); err != nil {
		return a.alertResponse(c, inst.session, http.StatusInternalServerError)
	}
	a.Cache.Invalidate(inst.session.Section().Key)
	return c.JSON(http.StatusOK, map[string]any{
		"alert": inst.session.Alert(),
		"url":   GetString(inst.session.Document(), path),
	})
}

func (a *App) handleExport(c echo.Context) error {
	inst, ok := a.requireEditor(c)
	if !ok {
		return nil
	}
	doc := inst.session.Document()
	if doc == nil {
		return c.NoContent(http.StatusNotFound)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+inst.session.Section().Key+`.json"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

func (a *App) handleImport(c echo.Context) error {
	inst, ok := a.requireEditor(c)
	if !ok {
		return nil
	}
	file, err := c.FormFile("file")
	if err != nil {
		return c.String(http.StatusBadRequest, "No JSON file provided")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	doc, err := DecodeDocument(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"alert": Alert{Type: AlertError, Message: "Invalid JSON file"},
		})
	}
	inst.session.ReplaceDocument(doc)
	if err := inst.session.Save(c.Request().Context()); err != nil {
		return a.alertResponse(c, inst.session, http.StatusInternalServerError)
	}
	a.Cache.Invalidate(inst.session.Section().Key)
	return a.alertResponse(c, inst.session, http.StatusOK)
}

type uiStateRequest struct {
	Breakpoint       *string `json:"breakpoint"`
	LiveMode         *bool   `json:"liveMode"`
	SidebarCollapsed *bool   `json:"sidebarCollapsed"`
}

func (a *App) handleUIState(c echo.Context) error {
	inst, ok := a.requireEditor(c)
	if !ok {
		return nil
	}
	var req uiStateRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if req.Breakpoint != nil {
		inst.session.SetBreakpoint(Breakpoint(*req.Breakpoint))
	}
	if req.LiveMode != nil {
		inst.session.SetLiveMode(*req.LiveMode)
	}
	if req.SidebarCollapsed != nil {
		inst.session.SetSidebarCollapsed(*req.SidebarCollapsed)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleAlertDismiss(c echo.Context) error {
	inst, ok := a.requireEditor(c)
	if !ok {
		return nil
	}
	inst.session.DismissAlert()
	return c.NoContent(http.StatusNoContent)
}

// Section REST API: the backend contract the editor consumes and the
// embedding site can read. GET is public; POST requires an admin session.

func (a *App) handleSectionGet(c echo.Context) error {
	doc, err := a.Store.GetSection(c.Param("key"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (a *App) handleSectionPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.NoContent(http.StatusForbidden)
	}
	doc, err := DecodeDocument(c.Request().Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid JSON document")
	}
	key := c.Param("key")
	persisted, err := a.Store.SaveSection(key, doc)
	if err != nil {
		return err
	}
	a.Cache.Invalidate(key)
	return c.JSON(http.StatusOK, persisted)
}

// requireEditor gates mutating editor endpoints behind admin auth and
// resolves the section's editor instance. When it returns false the
// response has already been written.
func (a *App) requireEditor(c echo.Context) (*editorInstance, bool) {
	if !IsAdmin(c) {
		_ = c.NoContent(http.StatusForbidden)
		return nil, false
	}
	inst, err := a.editor(c.Param("key"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = c.NoContent(http.StatusNotFound)
		} else {
			_ = c.NoContent(http.StatusInternalServerError)
		}
		return nil, false
	}
	if inst.session.Document() == nil {
		_ = inst.session.Load(c.Request().Context())
	}
	return inst, true
}

func (a *App) alertResponse(c echo.Context, sess *EditorSession, code int) error {
	return c.JSON(code, map[string]any{"alert": sess.Alert()})
}
