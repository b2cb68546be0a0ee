// Package main provides a keyboard plugin for macOS.
// It maps gesture directions to key presses and sends keystrokes via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ayusman/wavecam/internal/plugin"
)

// KeystrokeParams defines parameters for keystroke and shortcut actions.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// PressParams overrides the key code sent for each direction.
type PressParams struct {
	KeyCodes  map[string]int `json:"key_codes"`
	Modifiers []string       `json:"modifiers"`
}

// defaultKeyCodes are macOS virtual key codes: the arrow keys for short
// moves and page up/down for long vertical moves.
var defaultKeyCodes = map[string]int{
	"left":     123,
	"right":    124,
	"down":     125,
	"up":       126,
	"uplong":   116,
	"downlong": 121,
}

// modifierMap maps user-friendly modifier names to AppleScript equivalents.
var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var script string
	var err error
	switch req.Action {
	case "press":
		script, err = pressScript(req.Direction, req.Params)
	case "keystroke", "shortcut":
		script, err = keystrokeScript(req.Params)
	default:
		err = fmt.Errorf("unknown action: %s", req.Action)
	}
	if err == nil {
		err = runAppleScript(script)
	}
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

// pressScript builds the script that presses the key bound to direction.
func pressScript(direction string, params json.RawMessage) (string, error) {
	var p PressParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return "", fmt.Errorf("failed to parse params: %w", err)
		}
	}

	code, ok := p.KeyCodes[direction]
	if !ok {
		code, ok = defaultKeyCodes[direction]
	}
	if !ok {
		return "", fmt.Errorf("no key for direction %q", direction)
	}

	return withModifiers(fmt.Sprintf(`tell application "System Events" to key code %d`, code), p.Modifiers), nil
}

// keystrokeScript builds the script for keystroke and shortcut actions.
func keystrokeScript(params json.RawMessage) (string, error) {
	var p KeystrokeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return "", fmt.Errorf("failed to parse params: %w", err)
	}

	if p.Key == "" {
		return "", fmt.Errorf("key is required")
	}

	key := strings.ReplaceAll(p.Key, `"`, `\"`)
	return withModifiers(fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key), p.Modifiers), nil
}

// withModifiers appends a "using {...}" clause for the known modifiers.
func withModifiers(script string, modifiers []string) string {
	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return script
	}
	return fmt.Sprintf("%s using {%s}", script, strings.Join(appleModifiers, ", "))
}

func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(plugin.Response{Success: false, Error: errMsg})
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(plugin.Response{Success: true})
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
