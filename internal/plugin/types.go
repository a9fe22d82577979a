// Package plugin runs command hooks: external executables that receive the
// fired command and the typed text as JSON on stdin and reply on stdout.
package plugin

import "encoding/json"

// Manifest describes a plugin's metadata and capabilities. It is read from
// plugin.json in the plugin's directory.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is sent to a plugin for execution.
type Request struct {
	Action  string          `json:"action"`
	Command string          `json:"command"`
	Text    string          `json:"text"`
	Config  json.RawMessage `json:"config,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is what a plugin writes back.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the manifest lists action. A manifest without
// an action list accepts any action.
func (p *Plugin) Supports(action string) bool {
	if len(p.Manifest.Actions) == 0 {
		return true
	}
	for _, a := range p.Manifest.Actions {
		if a == action {
			return true
		}
	}
	return false
}
