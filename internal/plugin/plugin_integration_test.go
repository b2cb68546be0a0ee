package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// builtPlugin returns the named plugin from the repository's plugins
// directory, skipping the test unless it runs on macOS with the plugin built.
func builtPlugin(t *testing.T, name string) *Plugin {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if runtime.GOOS != "darwin" {
		t.Skipf("%s plugin only works on macOS", name)
	}

	pluginDir := findPluginDir(name)
	if pluginDir == "" {
		t.Skipf("%s plugin manifest not found", name)
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.Get(name)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := os.Stat(plug.Executable); err != nil {
		t.Skipf("%s plugin not built", name)
	}
	return plug
}

func TestPlugin_Keyboard_Integration(t *testing.T) {
	plug := builtPlugin(t, "keyboard")
	executor := NewExecutor(DefaultTimeout)

	// An empty key fails inside the plugin without touching the keyboard.
	resp, err := executor.Execute(context.Background(), plug, &Request{
		Action: "keystroke",
		Params: json.RawMessage(`{"key": ""}`),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for empty key")
	}
	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestPlugin_Scroll_Integration(t *testing.T) {
	plug := builtPlugin(t, "scroll")
	executor := NewExecutor(DefaultTimeout)

	resp, err := executor.Execute(context.Background(), plug, &Request{
		Action:    "scroll",
		Direction: "sideways",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for an unsupported direction")
	}
}

func TestPlugin_Manifests(t *testing.T) {
	for _, name := range []string{"keyboard", "scroll"} {
		t.Run(name, func(t *testing.T) {
			dir := findPluginDir(name)
			if dir == "" {
				t.Skipf("%s plugin manifest not found", name)
			}

			p, err := loadPlugin(dir)
			if err != nil {
				t.Fatalf("loadPlugin() error = %v", err)
			}
			if p.Manifest.Name != name {
				t.Errorf("manifest name = %q, want %q", p.Manifest.Name, name)
			}
		})
	}

	dir := findPluginDir("keyboard")
	if dir == "" {
		return
	}
	p, _ := loadPlugin(dir)
	if p != nil && !p.Manifest.HasAction("press") {
		t.Error("keyboard plugin should declare the press action")
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		manifest := filepath.Join(dir, ManifestFile)
		if _, err := os.Stat(manifest); err == nil {
			return dir
		}
	}
	return ""
}
