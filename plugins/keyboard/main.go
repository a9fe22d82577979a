// Package main provides a keyboard plugin for macOS.
// It forwards air-typed text and shortcuts to the focused application via
// AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Command string          `json:"command"`
	Text    string          `json:"text"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ShortcutParams defines parameters for the shortcut action.
type ShortcutParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
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
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var err error
	switch req.Action {
	case "type":
		err = typeText(req.Text)
	case "shortcut":
		err = handleShortcut(req.Params)
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

// typeText types text into the focused application, one line at a time
// with a Return keystroke between lines.
func typeText(text string) error {
	if text == "" {
		return fmt.Errorf("text is required")
	}
	return runAppleScript(buildTypeScript(text))
}

// buildTypeScript generates an AppleScript that types text.
func buildTypeScript(text string) string {
	var b strings.Builder
	b.WriteString(`tell application "System Events"` + "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("\tkeystroke return\n")
		}
		if line != "" {
			fmt.Fprintf(&b, "\tkeystroke \"%s\"\n", escapeAppleScript(line))
		}
	}
	b.WriteString("end tell")
	return b.String()
}

// handleShortcut sends a single key with modifiers.
func handleShortcut(params json.RawMessage) error {
	var p ShortcutParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}

	if p.Key == "" {
		return fmt.Errorf("key is required")
	}

	return runAppleScript(buildShortcutScript(p.Key, p.Modifiers))
}

// buildShortcutScript generates an AppleScript for the given key and modifiers.
func buildShortcutScript(key string, modifiers []string) string {
	key = escapeAppleScript(key)

	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}

	modifierList := strings.Join(appleModifiers, ", ")
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, modifierList)
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
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
