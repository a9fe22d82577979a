package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/airtype/internal/plugin"
	"github.com/ayusman/airtype/internal/store"
)

func createHook(t *testing.T, s *store.Store, command string) *store.Hook {
	t.Helper()

	hk := &store.Hook{
		Command:    command,
		PluginName: "clipboard",
		ActionName: "copy",
		Enabled:    true,
	}
	if err := s.Hooks().Create(hk); err != nil {
		t.Fatalf("failed to create hook: %v", err)
	}
	return hk
}

func TestHookHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewHookHandler(s, nil)
	hk := createHook(t, s, "save")

	req := httptest.NewRequest(http.MethodGet, "/api/hooks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listHooksResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(response.Hooks))
	}
	if response.Hooks[0].ID != hk.ID {
		t.Errorf("expected hook ID %s, got %s", hk.ID, response.Hooks[0].ID)
	}
	if string(response.Hooks[0].Config) != "{}" {
		t.Errorf("expected empty config object, got %s", response.Hooks[0].Config)
	}
}

func TestHookHandler_List_Empty(t *testing.T) {
	handler := NewHookHandler(newTestStore(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/hooks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var response listHooksResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Hooks == nil || len(response.Hooks) != 0 {
		t.Errorf("expected empty non-nil hook list, got %v", response.Hooks)
	}
}

func TestHookHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewHookHandler(s, nil)

	body, _ := json.Marshal(createHookRequest{
		Command:    "save",
		PluginName: "clipboard",
		ActionName: "copy",
		Config:     json.RawMessage(`{"tool":"xclip"}`),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/hooks", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var response hookResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID == "" {
		t.Error("expected generated ID")
	}
	if !response.Enabled {
		t.Error("new hooks should be enabled")
	}

	stored, err := s.Hooks().GetByID(response.ID)
	if err != nil {
		t.Fatalf("failed to get hook: %v", err)
	}
	if stored.Command != "save" {
		t.Errorf("expected command save, got %s", stored.Command)
	}
}

func TestHookHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing command", `{"plugin_name":"clipboard","action_name":"copy"}`},
		{"missing plugin", `{"command":"save","action_name":"copy"}`},
		{"missing action", `{"command":"save","plugin_name":"clipboard"}`},
		{"unknown command", `{"command":"explode","plugin_name":"clipboard","action_name":"copy"}`},
	}

	handler := NewHookHandler(newTestStore(t), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/hooks", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestHookHandler_Create_ChecksPlugins(t *testing.T) {
	dir, err := os.MkdirTemp("", "airtype-plugins-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	manager := plugin.NewManager(dir)
	manager.Register(&plugin.Plugin{
		Manifest:   plugin.Manifest{Name: "clipboard", Actions: []string{"copy"}},
		Path:       filepath.Join(dir, "clipboard"),
		Executable: filepath.Join(dir, "clipboard", "clipboard"),
	})
	handler := NewHookHandler(newTestStore(t), manager)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"known", `{"command":"save","plugin_name":"clipboard","action_name":"copy"}`, http.StatusCreated},
		{"unknown plugin", `{"command":"save","plugin_name":"nope","action_name":"copy"}`, http.StatusBadRequest},
		{"unsupported action", `{"command":"save","plugin_name":"clipboard","action_name":"paste"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/hooks", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHookHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewHookHandler(s, nil)
	hk := createHook(t, s, "clear")

	req := httptest.NewRequest(http.MethodGet, "/api/hooks/"+hk.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response hookResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Command != "clear" {
		t.Errorf("expected command clear, got %s", response.Command)
	}
}

func TestHookHandler_Get_NotFound(t *testing.T) {
	handler := NewHookHandler(newTestStore(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/hooks/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHookHandler_Update(t *testing.T) {
	s := newTestStore(t)
	handler := NewHookHandler(s, nil)
	hk := createHook(t, s, "save")

	req := httptest.NewRequest(http.MethodPut, "/api/hooks/"+hk.ID,
		bytes.NewBufferString(`{"command":"pause","enabled":false}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored, err := s.Hooks().GetByID(hk.ID)
	if err != nil {
		t.Fatalf("failed to get hook: %v", err)
	}
	if stored.Command != "pause" {
		t.Errorf("expected command pause, got %s", stored.Command)
	}
	if stored.Enabled {
		t.Error("expected hook to be disabled")
	}
	if stored.PluginName != "clipboard" {
		t.Errorf("plugin name should be unchanged, got %s", stored.PluginName)
	}
}

func TestHookHandler_Update_UnknownCommand(t *testing.T) {
	s := newTestStore(t)
	handler := NewHookHandler(s, nil)
	hk := createHook(t, s, "save")

	req := httptest.NewRequest(http.MethodPut, "/api/hooks/"+hk.ID,
		bytes.NewBufferString(`{"command":"explode"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHookHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewHookHandler(s, nil)
	hk := createHook(t, s, "save")

	req := httptest.NewRequest(http.MethodDelete, "/api/hooks/"+hk.ID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/hooks/"+hk.ID, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d on second delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHookHandler_MethodNotAllowed(t *testing.T) {
	handler := NewHookHandler(newTestStore(t), nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodDelete, "/api/hooks"},
		{http.MethodPost, "/api/hooks/abc"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tc.method, tc.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
