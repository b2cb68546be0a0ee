package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/wavecam/internal/plugin"
	"github.com/ayusman/wavecam/internal/store"
)

type fakeController struct {
	settings store.Settings
	enabled  bool
	saveErr  error
	saves    int
}

func (c *fakeController) Settings() store.Settings { return c.settings }

func (c *fakeController) UpdateSettings(s store.Settings) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saves++
	c.settings = s
	return nil
}

func (c *fakeController) IsEnabled() bool { return c.enabled }
func (c *fakeController) SetEnabled(on bool) { c.enabled = on }

func TestSettingsHandler_Get(t *testing.T) {
	ctrl := &fakeController{settings: store.DefaultSettings(), enabled: true}
	rec := doRequest(NewSettingsHandler(ctrl), http.MethodGet, "/api/settings", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := map[string]interface{}{
		"sensitivity":      float64(82),
		"skin_filter":      false,
		"frame_rate":       float64(25),
		"compression_rate": float64(2),
		"enabled":          true,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestSettingsHandler_PartialUpdate(t *testing.T) {
	ctrl := &fakeController{settings: store.DefaultSettings(), enabled: true}
	handler := NewSettingsHandler(ctrl)

	rec := doRequest(handler, http.MethodPut, "/api/settings", `{"sensitivity":50,"skin_filter":true,"enabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	want := store.DefaultSettings()
	want.Sensitivity = 50
	want.SkinFilter = true
	if ctrl.settings != want {
		t.Errorf("settings = %+v, want %+v", ctrl.settings, want)
	}
	if ctrl.enabled {
		t.Error("enabled should be false")
	}

	var resp settingsResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Sensitivity != 50 || resp.Enabled {
		t.Errorf("response = %+v", resp)
	}
}

func TestSettingsHandler_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid JSON", `{`, http.StatusBadRequest},
		{"sensitivity above 100", `{"sensitivity":101}`, http.StatusBadRequest},
		{"negative sensitivity", `{"sensitivity":-1}`, http.StatusBadRequest},
		{"zero frame rate", `{"frame_rate":0}`, http.StatusBadRequest},
		{"huge compression", `{"compression_rate":64}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{settings: store.DefaultSettings()}
			rec := doRequest(NewSettingsHandler(ctrl), http.MethodPut, "/api/settings", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ctrl.saves != 0 {
				t.Error("rejected settings should not be saved")
			}
		})
	}
}

func TestSettingsHandler_SaveFailure(t *testing.T) {
	ctrl := &fakeController{settings: store.DefaultSettings(), saveErr: errors.New("disk full")}
	rec := doRequest(NewSettingsHandler(ctrl), http.MethodPut, "/api/settings", `{"sensitivity":10}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestSettingsHandler_MethodNotAllowed(t *testing.T) {
	ctrl := &fakeController{settings: store.DefaultSettings()}
	rec := doRequest(NewSettingsHandler(ctrl), http.MethodDelete, "/api/settings", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestPluginHandler_List(t *testing.T) {
	rec := doRequest(NewPluginHandler(newTestPlugins()), http.MethodGet, "/api/plugins", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp listPluginsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(resp.Plugins))
	}
	if resp.Plugins[0].Name != "keyboard" || resp.Plugins[1].Name != "scroll" {
		t.Errorf("plugins = %+v", resp.Plugins)
	}
	if len(resp.Plugins[1].Actions) != 2 {
		t.Errorf("scroll actions = %v", resp.Plugins[1].Actions)
	}
}

func TestPluginHandler_Rescan(t *testing.T) {
	dir := t.TempDir()
	mgr := plugin.NewManager(dir)
	handler := NewPluginHandler(mgr)

	os.MkdirAll(filepath.Join(dir, "keyboard"), 0755)
	os.WriteFile(filepath.Join(dir, "keyboard", plugin.ManifestFile),
		[]byte(`{"name":"keyboard","executable":"keyboard","actions":["press"]}`), 0644)

	var resp listPluginsResponse
	rec := doRequest(handler, http.MethodGet, "/api/plugins", "")
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Plugins) != 0 {
		t.Fatalf("GET before rescan listed %d plugins, want 0", len(resp.Plugins))
	}

	rec = doRequest(handler, http.MethodPost, "/api/plugins", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("rescan status = %d", rec.Code)
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Plugins) != 1 || resp.Plugins[0].Name != "keyboard" {
		t.Errorf("plugins after rescan = %+v", resp.Plugins)
	}

	if rec := doRequest(handler, http.MethodDelete, "/api/plugins", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d", rec.Code)
	}
}
