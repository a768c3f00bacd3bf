package modshandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glazedv3/mods-backend/api"
	"github.com/glazedv3/mods-backend/interfaces"
	"github.com/glazedv3/mods-backend/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const adminKey = "s3cret"

func setupRouter(store interfaces.CatalogStore) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(store, api.NewAdminGate(adminKey), logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, target, body string, authorized bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+adminKey)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, api.ContentTypeJSON, rr.Header().Get("Content-Type"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decoded), rr.Body.String())
	return rr, decoded
}

func sampleMod() interfaces.Mod {
	return interfaces.Mod{
		ID:               "11",
		Name:             "Sodium",
		MinecraftVersion: "1.21",
		FabricRequired:   true,
		Launchers:        []string{"fabric"},
		FileName:         "sodium.jar",
		FileURL:          "https://cdn.example.com/sodium.jar",
		CreatedAt:        interfaces.NewTimestamp(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
	}
}

func TestList(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("ListMods", mock.Anything).Return([]interfaces.Mod{sampleMod()}, nil)
	r := setupRouter(store)

	rr, body := doRequest(t, r, http.MethodGet, "/mods", "", false)
	assert.Equal(t, http.StatusOK, rr.Code)

	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "11", item["id"])
	assert.Equal(t, "Sodium", item["name"])
	assert.Equal(t, "2024-05-01T10:00:00Z", item["created_at"])
	store.AssertExpectations(t)
}

func TestList_EmptyIsArray(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("ListMods", mock.Anything).Return(nil, nil)

	rr, _ := doRequest(t, setupRouter(store), http.MethodGet, "/api/mods", "", false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"items":[]}`, rr.Body.String())
}

func TestList_StoreError(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("ListMods", mock.Anything).Return(nil, errors.New("relation \"mods\" does not exist"))

	rr, _ := doRequest(t, setupRouter(store), http.MethodGet, "/mods", "", false)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"db_error","details":"relation \"mods\" does not exist"}`, rr.Body.String())
}

func TestNotConfigured(t *testing.T) {
	r := setupRouter(nil)

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/mods"},
		{http.MethodPost, "/mods"},
		{http.MethodPatch, "/mods"},
		{http.MethodPatch, "/api/mods-id"},
		{http.MethodPut, "/api/mods-id?id=1"},
	} {
		rr, body := doRequest(t, r, tc.method, tc.target, "", true)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, tc.target)
		assert.Equal(t, "server_error", body["error"])
		assert.Equal(t, "Missing SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY", body["details"])
	}
}

func TestMutationsRequireAdmin(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		header string
	}{
		{"create without header", http.MethodPost, "/mods", ""},
		{"create wrong key", http.MethodPost, "/mods", "Bearer nope"},
		{"create lowercase scheme", http.MethodPost, "/mods", "bearer " + adminKey},
		{"create raw key", http.MethodPost, "/mods", adminKey},
		{"patch without header", http.MethodPatch, "/mods?id=1", ""},
		{"delete wrong key", http.MethodDelete, "/api/mods-id?id=1", "Bearer x"},
		{"delete via path", http.MethodDelete, "/mods/1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no expectations: any store call fails the test
			store := new(storage.MockCatalogStore)
			r := setupRouter(store)

			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(`{"name":"x"}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, rr.Body.String())
			store.AssertNotCalled(t, "CreateMod", mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "UpdateMod", mock.Anything, mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "DeleteMod", mock.Anything, mock.Anything)
		})
	}
}

func TestEmptyAdminKeyRejectsEverything(t *testing.T) {
	store := new(storage.MockCatalogStore)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(store, api.NewAdminGate(""), logger).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/mods", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer ")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreate(t *testing.T) {
	store := new(storage.MockCatalogStore)
	expected := interfaces.ModInput{
		Name:             "Sodium",
		Description:      "",
		MinecraftVersion: "1.21",
		FabricRequired:   true,
		Launchers:        []string{"fabric", "1"},
		FileName:         "sodium.jar",
		FileURL:          "https://cdn.example.com/sodium.jar",
	}
	store.On("CreateMod", mock.Anything, expected).Return(sampleMod(), nil)

	rr, body := doRequest(t, setupRouter(store), http.MethodPost, "/mods", `{
		"name": "  Sodium ",
		"minecraft_version": "1.21",
		"fabric_required": "yes",
		"launchers": ["fabric", 1],
		"file_name": "sodium.jar",
		"file_url": "https://cdn.example.com/sodium.jar"
	}`, true)

	assert.Equal(t, http.StatusOK, rr.Code)
	item := body["item"].(map[string]any)
	assert.Equal(t, "11", item["id"])
	store.AssertExpectations(t)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		expected string
	}{
		{"empty body", ``, http.StatusBadRequest, `{"error":"missing_fields"}`},
		{"missing name", `{"minecraft_version":"1.21","file_name":"a","file_url":"b"}`, http.StatusBadRequest, `{"error":"missing_fields"}`},
		{"whitespace name", `{"name":"   ","minecraft_version":"1.21","file_name":"a","file_url":"b"}`, http.StatusBadRequest, `{"error":"missing_fields"}`},
		{"zero is falsy", `{"name":0,"minecraft_version":"1.21","file_name":"a","file_url":"b"}`, http.StatusBadRequest, `{"error":"missing_fields"}`},
		{"not json", `{name:`, http.StatusBadRequest, `{"error":"bad_json"}`},
		{"array body", `[1,2]`, http.StatusBadRequest, `{"error":"missing_fields"}`},
		{"empty array body", `[]`, http.StatusBadRequest, `{"error":"missing_fields"}`},
		{"number body", `5`, http.StatusBadRequest, `{"error":"missing_fields"}`},
		{"string body", `"x"`, http.StatusBadRequest, `{"error":"missing_fields"}`},
		{"bool body", `true`, http.StatusBadRequest, `{"error":"missing_fields"}`},
		{"null body", `null`, http.StatusBadRequest, `{"error":"bad_json"}`},
		{"trailing garbage", `{} {}`, http.StatusBadRequest, `{"error":"bad_json"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(storage.MockCatalogStore)
			rr, _ := doRequest(t, setupRouter(store), http.MethodPost, "/mods", tt.body, true)
			assert.Equal(t, tt.status, rr.Code)
			assert.JSONEq(t, tt.expected, rr.Body.String())
			store.AssertNotCalled(t, "CreateMod", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_NumericNameIsStringified(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("CreateMod", mock.Anything, mock.MatchedBy(func(in interfaces.ModInput) bool {
		return in.Name == "42" && in.MinecraftVersion == "1.2" && len(in.Launchers) == 0 && in.Launchers != nil
	})).Return(sampleMod(), nil)

	rr, _ := doRequest(t, setupRouter(store), http.MethodPost, "/mods",
		`{"name":42,"minecraft_version":1.2,"file_name":"a","file_url":"b","launchers":"fabric"}`, true)
	assert.Equal(t, http.StatusOK, rr.Code)
	store.AssertExpectations(t)
}

func TestCreate_StoreError(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("CreateMod", mock.Anything, mock.Anything).Return(interfaces.Mod{}, errors.New("duplicate key"))

	rr, _ := doRequest(t, setupRouter(store), http.MethodPost, "/mods",
		`{"name":"a","minecraft_version":"1","file_name":"a","file_url":"b"}`, true)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"db_error","details":"duplicate key"}`, rr.Body.String())
}

func TestCollection_MethodNotAllowed(t *testing.T) {
	store := new(storage.MockCatalogStore)
	rr, _ := doRequest(t, setupRouter(store), http.MethodPut, "/mods", "", true)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.JSONEq(t, `{"error":"method_not_allowed"}`, rr.Body.String())
	assert.ElementsMatch(t, []string{http.MethodGet, http.MethodPost}, rr.Header().Values("Allow"))
}

func TestItem_MissingID(t *testing.T) {
	for _, target := range []string{"/mods", "/mods?id=", "/mods?id=%20%20", "/api/mods-id"} {
		for _, method := range []string{http.MethodPatch, http.MethodDelete} {
			store := new(storage.MockCatalogStore)
			rr, _ := doRequest(t, setupRouter(store), method, target, "", true)
			assert.Equal(t, http.StatusBadRequest, rr.Code, method+" "+target)
			assert.JSONEq(t, `{"error":"missing_id"}`, rr.Body.String())
		}
	}

	// missing_id precedes the method check
	rr, _ := doRequest(t, setupRouter(new(storage.MockCatalogStore)), http.MethodGet, "/api/mods-id", "", false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestItem_MethodNotAllowed(t *testing.T) {
	rr, _ := doRequest(t, setupRouter(new(storage.MockCatalogStore)), http.MethodGet, "/api/mods-id?id=1", "", true)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.JSONEq(t, `{"error":"method_not_allowed"}`, rr.Body.String())
}

func TestPatch_OnlyPresentKeys(t *testing.T) {
	store := new(storage.MockCatalogStore)
	var captured interfaces.ModPatch
	store.On("UpdateMod", mock.Anything, interfaces.ModID("11"), mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).(interfaces.ModPatch) }).
		Return(sampleMod(), nil)

	rr, _ := doRequest(t, setupRouter(store), http.MethodPatch, "/mods?id=%2011%20",
		`{"name":" New ","fabric_required":0,"id":"99","created_at":"x"}`, true)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, interfaces.ModPatch{"name": "New", "fabric_required": false}, captured)
	store.AssertExpectations(t)
}

func TestPatch_EmptyBodyStillUpdates(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("UpdateMod", mock.Anything, interfaces.ModID("11"), interfaces.ModPatch{}).Return(sampleMod(), nil)

	rr, _ := doRequest(t, setupRouter(store), http.MethodPatch, "/api/mods-id?id=11", "", true)
	assert.Equal(t, http.StatusOK, rr.Code)
	store.AssertExpectations(t)
}

func TestPatch_QueryWinsOverPath(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("UpdateMod", mock.Anything, interfaces.ModID("from-query"), mock.Anything).Return(sampleMod(), nil)

	rr, _ := doRequest(t, setupRouter(store), http.MethodPatch, "/mods/from-path?id=from-query", `{}`, true)
	assert.Equal(t, http.StatusOK, rr.Code)
	store.AssertExpectations(t)
}

func TestPatch_BadJSON(t *testing.T) {
	for _, body := range []string{`"just a string"`, `5`, `true`, `null`, `{"name":`} {
		t.Run(body, func(t *testing.T) {
			store := new(storage.MockCatalogStore)
			rr, _ := doRequest(t, setupRouter(store), http.MethodPatch, "/mods?id=1", body, true)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"error":"bad_json"}`, rr.Body.String())
			store.AssertNotCalled(t, "UpdateMod", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPatch_ArrayBodyIsEmptyUpdate(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("UpdateMod", mock.Anything, interfaces.ModID("1"), interfaces.ModPatch{}).Return(sampleMod(), nil)

	rr, _ := doRequest(t, setupRouter(store), http.MethodPatch, "/mods?id=1", `["name"]`, true)
	assert.Equal(t, http.StatusOK, rr.Code)
	store.AssertExpectations(t)
}

func TestPatch_NotFoundIsDBError(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("UpdateMod", mock.Anything, mock.Anything, mock.Anything).Return(interfaces.Mod{}, interfaces.ErrModNotFound)

	rr, body := doRequest(t, setupRouter(store), http.MethodPatch, "/mods/404", `{"name":"x"}`, true)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "db_error", body["error"])
	assert.Equal(t, interfaces.ErrModNotFound.Error(), body["details"])
}

func TestDelete(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("DeleteMod", mock.Anything, interfaces.ModID("11")).Return(nil)

	rr, _ := doRequest(t, setupRouter(store), http.MethodDelete, "/mods?id=11", "", true)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
	store.AssertExpectations(t)
}

func TestDelete_StoreError(t *testing.T) {
	store := new(storage.MockCatalogStore)
	store.On("DeleteMod", mock.Anything, mock.Anything).Return(errors.New("permission denied"))

	rr, _ := doRequest(t, setupRouter(store), http.MethodDelete, "/mods/11", "", true)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"db_error","details":"permission denied"}`, rr.Body.String())
}

func TestEndToEnd_MemoryCatalog(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := setupRouter(storage.NewMemoryCatalog(logger))

	_, body := doRequest(t, r, http.MethodPost, "/mods",
		`{"name":"A","minecraft_version":"1.20","file_name":"a.jar","file_url":"https://x/a.jar"}`, true)
	first := body["item"].(map[string]any)
	_, body = doRequest(t, r, http.MethodPost, "/mods",
		`{"name":"B","minecraft_version":"1.21","file_name":"b.jar","file_url":"https://x/b.jar","launchers":["fabric"]}`, true)
	second := body["item"].(map[string]any)
	assert.Equal(t, []any{}, first["launchers"])

	_, body = doRequest(t, r, http.MethodGet, "/mods", "", false)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, second["id"], items[0].(map[string]any)["id"])

	rr, body := doRequest(t, r, http.MethodPatch, "/mods/"+first["id"].(string), `{"description":"  hello  "}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello", body["item"].(map[string]any)["description"])
	assert.Equal(t, "A", body["item"].(map[string]any)["name"])

	rr, _ = doRequest(t, r, http.MethodDelete, "/mods?id="+first["id"].(string), "", true)
	require.Equal(t, http.StatusOK, rr.Code)

	// deleting an id that matches nothing still succeeds
	rr, body = doRequest(t, r, http.MethodDelete, "/mods?id=does-not-exist", "", true)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["ok"])

	rr, body = doRequest(t, r, http.MethodPatch, "/mods?id=does-not-exist", `{"name":"x"}`, true)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "db_error", body["error"])

	_, body = doRequest(t, r, http.MethodGet, "/mods", "", false)
	assert.Len(t, body["items"].([]any), 1)
}
