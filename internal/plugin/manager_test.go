package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, root, dir, manifest string) {
	t.Helper()
	pluginDir := filepath.Join(root, dir)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	if manifest == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFile), []byte(manifest), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()

	writeManifest(t, root, "keyboard", `{
		"name": "keyboard",
		"version": "1.0.0",
		"description": "Arrow key presses",
		"executable": "keyboard",
		"actions": ["press"]
	}`)
	writeManifest(t, root, "scroll", `{
		"name": "scroll",
		"version": "1.0.0",
		"executable": "scroll",
		"actions": ["scroll", "page"]
	}`)

	mgr := NewManager(root)
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	list := mgr.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d plugins, want 2", len(list))
	}
	if list[0].Manifest.Name != "keyboard" || list[1].Manifest.Name != "scroll" {
		t.Errorf("List() order = %s, %s; want keyboard, scroll", list[0].Manifest.Name, list[1].Manifest.Name)
	}

	kb, err := mgr.Get("keyboard")
	if err != nil {
		t.Fatalf("Get(keyboard) error = %v", err)
	}
	if kb.Path != filepath.Join(root, "keyboard") {
		t.Errorf("Path = %s, want %s", kb.Path, filepath.Join(root, "keyboard"))
	}
	if kb.Executable != filepath.Join(root, "keyboard", "keyboard") {
		t.Errorf("Executable = %s", kb.Executable)
	}
	if !kb.Manifest.HasAction("press") || kb.Manifest.HasAction("scroll") {
		t.Errorf("HasAction mismatch for %+v", kb.Manifest.Actions)
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	root := t.TempDir()

	writeManifest(t, root, "good", `{"name":"good","executable":"run","actions":["a"]}`)
	writeManifest(t, root, "no-manifest", "")
	writeManifest(t, root, "broken", `{not json`)
	writeManifest(t, root, "no-name", `{"executable":"run","actions":["a"]}`)
	writeManifest(t, root, "no-exec", `{"name":"x","actions":["a"]}`)
	writeManifest(t, root, "no-actions", `{"name":"y","executable":"run"}`)
	writeManifest(t, root, "dupe", `{"name":"good","executable":"run","actions":["a"]}`)
	os.WriteFile(filepath.Join(root, "stray.txt"), []byte("ignored"), 0644)

	mgr := NewManager(root)
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	list := mgr.List()
	if len(list) != 1 || list[0].Manifest.Name != "good" {
		t.Errorf("List() = %d plugins, want only 'good'", len(list))
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v, want nil for missing dir", err)
	}
	if len(mgr.List()) != 0 {
		t.Error("List() should be empty")
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "a", `{"name":"a","executable":"run","actions":["x"]}`)

	mgr := NewManager(root)
	mgr.Discover()

	os.RemoveAll(filepath.Join(root, "a"))
	writeManifest(t, root, "b", `{"name":"b","executable":"run","actions":["x"]}`)
	mgr.Discover()

	if _, err := mgr.Get("a"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get(a) after rescan error = %v, want ErrPluginNotFound", err)
	}
	if _, err := mgr.Get("b"); err != nil {
		t.Errorf("Get(b) after rescan error = %v", err)
	}
}

func TestManager_Register(t *testing.T) {
	mgr := NewManager(t.TempDir())
	mgr.Register(&Plugin{Manifest: Manifest{Name: "inline", Actions: []string{"x"}}})

	p, err := mgr.Get("inline")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Manifest.Name != "inline" {
		t.Errorf("Name = %s, want inline", p.Manifest.Name)
	}
}

func TestManager_Get_NotFound(t *testing.T) {
	mgr := NewManager(t.TempDir())
	if _, err := mgr.Get("nope"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get() error = %v, want ErrPluginNotFound", err)
	}
}

func TestManager_PluginDir(t *testing.T) {
	mgr := NewManager("/opt/wavecam/plugins")
	if mgr.PluginDir() != "/opt/wavecam/plugins" {
		t.Errorf("PluginDir() = %s", mgr.PluginDir())
	}
}
