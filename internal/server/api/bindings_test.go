package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/wavecam/internal/plugin"
	"github.com/ayusman/wavecam/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func newTestPlugins() *plugin.Manager {
	mgr := plugin.NewManager("")
	mgr.Register(&plugin.Plugin{Manifest: plugin.Manifest{Name: "keyboard", Actions: []string{"press"}}})
	mgr.Register(&plugin.Plugin{Manifest: plugin.Manifest{Name: "scroll", Actions: []string{"scroll", "page"}}})
	return mgr
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBindingHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, newTestPlugins())

	rec := doRequest(handler, http.MethodPost, "/api/bindings",
		`{"direction":"left","plugin_name":"keyboard","action_name":"press","config":{"key":"left"}}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var created bindingResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated ID")
	}
	if created.Direction != "left" || created.PluginName != "keyboard" || created.ActionName != "press" {
		t.Errorf("created = %+v", created)
	}
	if !created.Enabled {
		t.Error("bindings should be enabled by default")
	}

	stored, err := s.Bindings().GetByDirection("left")
	if err != nil || stored == nil {
		t.Fatalf("GetByDirection() = %v, %v", stored, err)
	}
	if stored.ID != created.ID {
		t.Errorf("stored ID = %s, want %s", stored.ID, created.ID)
	}
}

func TestBindingHandler_CreateValidation(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, newTestPlugins())

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{not json`},
		{"missing direction", `{"plugin_name":"keyboard","action_name":"press"}`},
		{"unknown direction", `{"direction":"diagonal","plugin_name":"keyboard","action_name":"press"}`},
		{"capitalized direction", `{"direction":"Up","plugin_name":"keyboard","action_name":"press"}`},
		{"missing plugin", `{"direction":"up","action_name":"press"}`},
		{"missing action", `{"direction":"up","plugin_name":"keyboard"}`},
		{"unknown plugin", `{"direction":"up","plugin_name":"mouse","action_name":"click"}`},
		{"unknown action", `{"direction":"up","plugin_name":"keyboard","action_name":"scroll"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(handler, http.MethodPost, "/api/bindings", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestBindingHandler_CreateDuplicate(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, newTestPlugins())

	body := `{"direction":"down","plugin_name":"scroll","action_name":"scroll"}`
	if rec := doRequest(handler, http.MethodPost, "/api/bindings", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}
	if rec := doRequest(handler, http.MethodPost, "/api/bindings", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestBindingHandler_WithoutPluginManager(t *testing.T) {
	handler := NewBindingHandler(newTestStore(t), nil)

	rec := doRequest(handler, http.MethodPost, "/api/bindings",
		`{"direction":"up","plugin_name":"anything","action_name":"goes"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
}

func TestBindingHandler_ListAndGet(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	s.Bindings().Create(&store.Binding{ID: "b-up", Direction: "up", PluginName: "scroll", ActionName: "page", Enabled: true})
	s.Bindings().Create(&store.Binding{ID: "b-down", Direction: "down", PluginName: "scroll", ActionName: "page"})

	rec := doRequest(handler, http.MethodGet, "/api/bindings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed listBindingsResponse
	json.NewDecoder(rec.Body).Decode(&listed)
	if len(listed.Bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(listed.Bindings))
	}
	if listed.Bindings[0].Direction != "down" || listed.Bindings[1].Direction != "up" {
		t.Errorf("bindings not ordered by direction: %+v", listed.Bindings)
	}
	if string(listed.Bindings[0].Config) != "{}" {
		t.Errorf("default config = %s, want {}", listed.Bindings[0].Config)
	}

	rec = doRequest(handler, http.MethodGet, "/api/bindings/b-up", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got bindingResponse
	json.NewDecoder(rec.Body).Decode(&got)
	if got.ID != "b-up" || !got.Enabled {
		t.Errorf("get = %+v", got)
	}

	rec = doRequest(handler, http.MethodGet, "/api/bindings/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get missing status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestBindingHandler_EmptyList(t *testing.T) {
	handler := NewBindingHandler(newTestStore(t), nil)

	rec := doRequest(handler, http.MethodGet, "/api/bindings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body != "{\"bindings\":[]}\n" {
		t.Errorf("body = %q, want an empty array", body)
	}
}

func TestBindingHandler_Update(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, newTestPlugins())

	s.Bindings().Create(&store.Binding{ID: "b1", Direction: "up", PluginName: "scroll", ActionName: "page", Enabled: true})
	s.Bindings().Create(&store.Binding{ID: "b2", Direction: "down", PluginName: "scroll", ActionName: "page", Enabled: true})

	rec := doRequest(handler, http.MethodPut, "/api/bindings/b1", `{"direction":"uplong","enabled":false,"config":{"lines":3}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	got, _ := s.Bindings().GetByID("b1")
	if got.Direction != "uplong" || got.Enabled || string(got.Config) != `{"lines":3}` {
		t.Errorf("after update = %+v", got)
	}
	if got.PluginName != "scroll" || got.ActionName != "page" {
		t.Error("omitted fields should be unchanged")
	}

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"missing binding", "/api/bindings/nope", `{"enabled":true}`, http.StatusNotFound},
		{"invalid JSON", "/api/bindings/b1", `{`, http.StatusBadRequest},
		{"unknown direction", "/api/bindings/b1", `{"direction":"sideways"}`, http.StatusBadRequest},
		{"unknown action", "/api/bindings/b1", `{"action_name":"press"}`, http.StatusBadRequest},
		{"direction taken", "/api/bindings/b1", `{"direction":"down"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(handler, http.MethodPut, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestBindingHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, nil)

	s.Bindings().Create(&store.Binding{ID: "b1", Direction: "right", PluginName: "keyboard", ActionName: "press"})

	rec := doRequest(handler, http.MethodDelete, "/api/bindings/b1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	rec = doRequest(handler, http.MethodDelete, "/api/bindings/b1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestBindingHandler_MethodNotAllowed(t *testing.T) {
	handler := NewBindingHandler(newTestStore(t), nil)

	if rec := doRequest(handler, http.MethodDelete, "/api/bindings", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE collection status = %d", rec.Code)
	}
	if rec := doRequest(handler, http.MethodPost, "/api/bindings/b1", "{}"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST item status = %d", rec.Code)
	}
}
