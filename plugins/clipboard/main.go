// Package main provides a clipboard plugin.
// It copies the typed text to the system clipboard, or empties it, using the
// platform's clipboard tool.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
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

// Config selects the clipboard tool. Tool overrides autodetection, e.g.
// "xclip -selection clipboard".
type Config struct {
	Tool string `json:"tool"`
}

// actionHandler writes text to the clipboard using tool.
type actionHandler func(tool []string, text string) error

// actionHandlers maps action names to their handler functions.
var actionHandlers = map[string]actionHandler{
	"copy":  copyText,
	"clear": clearClipboard,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid config: %v", err))
			return
		}
	}

	tool, err := clipboardTool(cfg.Tool)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	if err := handler(tool, req.Text); err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	data, _ := json.Marshal(map[string]int{"chars": len([]rune(req.Text))})
	writeSuccessResponse(data)
}

// clipboardTool returns the command line that reads stdin into the clipboard.
func clipboardTool(override string) ([]string, error) {
	if override != "" {
		return strings.Fields(override), nil
	}

	switch runtime.GOOS {
	case "darwin":
		return []string{"pbcopy"}, nil
	case "windows":
		return []string{"clip"}, nil
	}

	candidates := [][]string{
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no clipboard tool found (tried wl-copy, xclip, xsel)")
}

// copyText replaces the clipboard contents with text.
func copyText(tool []string, text string) error {
	if text == "" {
		return fmt.Errorf("nothing to copy")
	}
	return pipeTo(tool, text)
}

// clearClipboard empties the clipboard.
func clearClipboard(tool []string, _ string) error {
	return pipeTo(tool, "")
}

func pipeTo(tool []string, text string) error {
	cmd := exec.Command(tool[0], tool[1:]...)
	cmd.Stdin = strings.NewReader(text)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
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
func writeSuccessResponse(data json.RawMessage) {
	resp := Response{
		Success: true,
		Data:    data,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
