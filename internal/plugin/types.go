// Package plugin discovers and runs external action plugins that react to
// recognized gestures.
package plugin

import "encoding/json"

// ManifestFile is the name of the manifest each plugin directory must contain.
const ManifestFile = "plugin.json"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// HasAction reports whether the manifest declares the named action.
func (m Manifest) HasAction(name string) bool {
	for _, a := range m.Actions {
		if a == name {
			return true
		}
	}
	return false
}

// Request is written as JSON to the plugin's stdin.
// Params carries the binding's configuration for the action.
type Request struct {
	Action    string          `json:"action"`
	Direction string          `json:"direction"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// Response is read as JSON from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
