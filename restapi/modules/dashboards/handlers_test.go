package dashboards

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clonos/dashboard-backend/database"
	events "github.com/clonos/dashboard-backend/events/modules/dashboards"
	"github.com/clonos/dashboard-backend/model"
	"github.com/clonos/dashboard-backend/restapi/modules/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	refs   []events.DashboardRef
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, ref events.DashboardRef) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	p.refs = append(p.refs, ref)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type testEnv struct {
	app    *fiber.App
	store  database.DashboardStore
	events *recordingPublisher
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	store, err := database.OpenSQL(context.Background(), database.DriverSQLite,
		filepath.Join(t.TempDir(), "dash.db"), time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	pub := &recordingPublisher{}
	svc := NewService(store, pub, nil, "")

	app := fiber.New()
	g := app.Group("/api/dashboards", auth.OptionalAuth)
	g.Get("/", svc.List())
	g.Post("/", svc.Create())
	g.Post("/import", svc.Import())
	g.Get("/:id", svc.Get())
	g.Put("/:id", svc.Update())
	g.Delete("/:id", svc.Delete())
	g.Post("/:id/duplicate", svc.Duplicate())
	g.Get("/:id/export", svc.Export())

	return &testEnv{app: app, store: store, events: pub}
}

type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Message    string             `json:"message"`
	Error      string             `json:"error"`
	Errors     []model.FieldError `json:"errors"`
	Pagination model.Pagination   `json:"pagination"`
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) (int, envelope, *http.Response) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env, resp
}

func (e *testEnv) create(t *testing.T, body string) model.Dashboard {
	t.Helper()
	status, env, _ := e.do(t, http.MethodPost, "/api/dashboards", body)
	require.Equal(t, fiber.StatusCreated, status, env)
	var d model.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	return d
}

func hasField(errs []model.FieldError, field, message string) bool {
	for _, fe := range errs {
		if fe.Field == field && (message == "" || fe.Message == message) {
			return true
		}
	}
	return false
}

const widgetBody = `{
	"name": "  Sales  ",
	"description": "Q1 numbers",
	"layout": [{"i": "w1", "x": 0, "y": 0, "w": 6, "h": 4}],
	"widgets": {
		"w1": {
			"id": "w1", "type": "pie", "title": "Share",
			"labels": ["A", "B"],
			"datasets": [{"label": "d", "data": [1, 2], "backgroundColor": ["#fff", "rgba(0, 0, 0, 0.5)"], "borderColor": "#111", "borderWidth": 2}]
		}
	}
}`

func TestCreateAndGet(t *testing.T) {
	e := setup(t)

	d := e.create(t, widgetBody)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "Sales", d.Name)
	assert.Equal(t, model.DefaultUserID, d.UserID)
	assert.Len(t, d.Layout, 1)

	status, env, _ := e.do(t, http.MethodGet, "/api/dashboards/"+d.ID, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Success)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	assert.Equal(t, d.ID, raw["_id"])
	widget := raw["widgets"].(map[string]interface{})["w1"].(map[string]interface{})
	ds := widget["datasets"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"#FFFFFF", "rgba(0, 0, 0, 0.5)"}, ds["backgroundColor"])
	assert.Equal(t, "#111111", ds["borderColor"])

	assert.Equal(t, []string{events.EventCreated}, e.events.events)
}

func TestCreateDefaults(t *testing.T) {
	e := setup(t)
	d := e.create(t, `{"name": "Bare", "userId": "u-1"}`)
	assert.Equal(t, "", d.Description)
	assert.Empty(t, d.Layout)
	assert.NotNil(t, d.Widgets)
	assert.Equal(t, "u-1", d.UserID)
}

func TestCreateValidation(t *testing.T) {
	e := setup(t)

	status, env, _ := e.do(t, http.MethodPost, "/api/dashboards", `{"name": "   "}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.True(t, hasField(env.Errors, "name", "Dashboard name is required"))

	status, env, _ = e.do(t, http.MethodPost, "/api/dashboards", `{"name": "x", "layout": {}, "widgets": []}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, hasField(env.Errors, "layout", "Layout must be an array"))
	assert.True(t, hasField(env.Errors, "widgets", "Widgets must be an object"))

	status, env, _ = e.do(t, http.MethodPost, "/api/dashboards",
		`{"name": "x", "layout": [{"i": "", "x": -1, "y": 0, "w": 0, "h": 1}], "widgets": {"a": {"type": "gauge"}}}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, hasField(env.Errors, "layout[0].i", ""))
	assert.True(t, hasField(env.Errors, "layout[0].x", ""))
	assert.True(t, hasField(env.Errors, "layout[0].w", ""))
	assert.True(t, hasField(env.Errors, "widgets.a.type", ""))

	status, env, _ = e.do(t, http.MethodPost, "/api/dashboards", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", env.Error)

	assert.Empty(t, e.events.events)
}

func TestCreateStripsMarkup(t *testing.T) {
	e := setup(t)
	d := e.create(t, `{"name": "<script>alert(1)</script>R&D <b>board</b>", "description": "<i>hi</i>"}`)
	assert.Equal(t, "R&D board", d.Name)
	assert.Equal(t, "hi", d.Description)

	d = e.create(t, `{"name": "&lt;img src=x onerror=alert(1)&gt;Sales", "description": "&lt;script&gt;x&lt;/script&gt;notes"}`)
	assert.Equal(t, "Sales", d.Name)
	assert.Equal(t, "notes", d.Description)

	status, env, _ := e.do(t, http.MethodGet, "/api/dashboards/"+d.ID, "")
	require.Equal(t, fiber.StatusOK, status)
	var stored model.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &stored))
	assert.Equal(t, "notes", stored.Description)
}

func TestGetErrors(t *testing.T) {
	e := setup(t)

	status, env, _ := e.do(t, http.MethodGet, "/api/dashboards/not-an-id", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, hasField(env.Errors, "id", "Invalid dashboard ID"))

	status, env, _ = e.do(t, http.MethodGet, "/api/dashboards/"+uuid.NewString(), "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Dashboard not found", env.Error)
}

func TestListPaginationAndScope(t *testing.T) {
	e := setup(t)
	for i := 0; i < 3; i++ {
		e.create(t, `{"name": "mine", "userId": "alice"}`)
		time.Sleep(2 * time.Millisecond)
	}
	e.create(t, `{"name": "theirs", "userId": "bob"}`)

	status, env, _ := e.do(t, http.MethodGet, "/api/dashboards?userId=alice&limit=2&offset=1", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, model.Pagination{Total: 3, Limit: 2, Offset: 1}, env.Pagination)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
	_, hasWidgets := items[0]["widgets"]
	assert.False(t, hasWidgets)

	_, env, _ = e.do(t, http.MethodGet, "/api/dashboards?limit=9999&offset=-5", "")
	assert.Equal(t, MaxLimit, env.Pagination.Limit)
	assert.Equal(t, 0, env.Pagination.Offset)
	assert.EqualValues(t, 0, env.Pagination.Total)

	_, env, _ = e.do(t, http.MethodGet, "/api/dashboards?userId=alice&limit=0", "")
	assert.Equal(t, 1, env.Pagination.Limit)
}

func TestListUsesAuthenticatedUser(t *testing.T) {
	e := setup(t)
	e.create(t, `{"name": "owned", "userId": "carol@example.com"}`)

	token, err := auth.GenerateJWT(model.NewDemoUser("carol@example.com"))
	require.NoError(t, err)

	_, env, _ := e.do(t, http.MethodGet, "/api/dashboards?userId=someone-else", "", "Authorization", "Bearer "+token)
	assert.EqualValues(t, 1, env.Pagination.Total)
}

func TestUpdatePartial(t *testing.T) {
	e := setup(t)
	d := e.create(t, widgetBody)

	status, env, _ := e.do(t, http.MethodPut, "/api/dashboards/"+d.ID, `{"description": "changed"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Dashboard updated successfully", env.Message)

	var got model.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Sales", got.Name)
	assert.Equal(t, "changed", got.Description)
	assert.Len(t, got.Layout, 1)
	assert.Contains(t, got.Widgets, "w1")
	assert.False(t, got.UpdatedAt.Before(d.UpdatedAt))

	status, env, _ = e.do(t, http.MethodPut, "/api/dashboards/"+d.ID, `{"name": "", "layout": "x"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, hasField(env.Errors, "name", "Dashboard name cannot be empty"))
	assert.True(t, hasField(env.Errors, "layout", "Layout must be an array"))

	status, env, _ = e.do(t, http.MethodPut, "/api/dashboards/"+d.ID, `{"layout": null, "widgets": null}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, hasField(env.Errors, "layout", "Layout must be an array"))
	assert.True(t, hasField(env.Errors, "widgets", "Widgets must be an object"))

	status, env, _ = e.do(t, http.MethodGet, "/api/dashboards/"+d.ID, "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Len(t, got.Layout, 1)

	status, _, _ = e.do(t, http.MethodPut, "/api/dashboards/"+uuid.NewString(), `{"name": "y"}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _, _ = e.do(t, http.MethodPut, "/api/dashboards/bad-id", `{"name": "y"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	assert.Equal(t, []string{events.EventCreated, events.EventUpdated}, e.events.events)
}

func TestDelete(t *testing.T) {
	e := setup(t)
	d := e.create(t, `{"name": "gone"}`)

	status, env, _ := e.do(t, http.MethodDelete, "/api/dashboards/"+d.ID, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Dashboard deleted successfully", env.Message)

	status, _, _ = e.do(t, http.MethodDelete, "/api/dashboards/"+d.ID, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	assert.Equal(t, events.EventDeleted, e.events.events[len(e.events.events)-1])
}

func TestDuplicate(t *testing.T) {
	e := setup(t)
	d := e.create(t, widgetBody)

	status, env, _ := e.do(t, http.MethodPost, "/api/dashboards/"+d.ID+"/duplicate", "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Dashboard duplicated successfully", env.Message)

	var dup model.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &dup))
	assert.NotEqual(t, d.ID, dup.ID)
	assert.Equal(t, "Sales (Copy)", dup.Name)
	assert.Equal(t, d.Description, dup.Description)
	assert.Equal(t, d.Layout, dup.Layout)
	assert.Equal(t, d.UserID, dup.UserID)
	assert.Contains(t, dup.Widgets, "w1")

	last := len(e.events.refs) - 1
	assert.Equal(t, events.EventDuplicated, e.events.events[last])
	assert.Equal(t, d.ID, e.events.refs[last].SourceID)

	status, _, _ = e.do(t, http.MethodPost, "/api/dashboards/"+uuid.NewString()+"/duplicate", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestExportThenImport(t *testing.T) {
	e := setup(t)
	d := e.create(t, strings.Replace(widgetBody, "  Sales  ", "Sales / Q1", 1))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboards/"+d.ID+"/export", nil)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="Sales___Q1.json"`, resp.Header.Get("Content-Disposition"))

	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(exported, &doc))
	assert.Equal(t, model.ExportSchemaVersion, doc["schemaVersion"])
	assert.NotEmpty(t, doc["exportedAt"])
	_, hasID := doc["_id"]
	assert.False(t, hasID)

	status, env, _ := e.do(t, http.MethodPost, "/api/dashboards/import",
		`{"data": `+string(exported)+`, "userId": "importer"}`)
	require.Equal(t, fiber.StatusCreated, status, env)
	assert.Equal(t, "Dashboard imported successfully", env.Message)

	var imported model.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &imported))
	assert.NotEqual(t, d.ID, imported.ID)
	assert.Equal(t, "Sales / Q1", imported.Name)
	assert.Equal(t, "importer", imported.UserID)
	assert.Equal(t, d.Layout, imported.Layout)
	assert.Contains(t, imported.Widgets, "w1")
}

func TestImportValidation(t *testing.T) {
	e := setup(t)

	status, env, _ := e.do(t, http.MethodPost, "/api/dashboards/import", `{"data": "nope"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, hasField(env.Errors, "data", "Import data must be an object"))

	status, env, _ = e.do(t, http.MethodPost, "/api/dashboards/import", `{"data": {"name": ""}}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, hasField(env.Errors, "data.name", "Dashboard name is required"))
	assert.True(t, hasField(env.Errors, "data.layout", "Layout must be an array"))
	assert.True(t, hasField(env.Errors, "data.widgets", "Widgets must be an object"))

	status, env, _ = e.do(t, http.MethodPost, "/api/dashboards/import",
		`{"data": {"name": "n", "layout": [], "widgets": {}, "schemaVersion": "2.0.0"}}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, hasField(env.Errors, "data.schemaVersion", ""))

	status, _, _ = e.do(t, http.MethodPost, "/api/dashboards/import",
		`{"data": {"name": "legacy", "layout": [], "widgets": {}}}`)
	assert.Equal(t, fiber.StatusCreated, status)
}
