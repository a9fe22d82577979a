package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/ayusman/airtype/internal/gesture"
	"github.com/ayusman/airtype/internal/plugin"
	"github.com/ayusman/airtype/internal/store"
)

// HookHandler handles HTTP requests for hook resources.
type HookHandler struct {
	store   *store.Store
	plugins *plugin.Manager
}

// NewHookHandler creates a new HookHandler. When plugins is non-nil, new
// and updated hooks must name a discovered plugin supporting the action.
func NewHookHandler(s *store.Store, plugins *plugin.Manager) *HookHandler {
	return &HookHandler{store: s, plugins: plugins}
}

// ServeHTTP routes /api/hooks and /api/hooks/{id}.
func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := itemID(r.URL.Path, "/api/hooks")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createHookRequest struct {
	Command    string          `json:"command"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
}

type updateHookRequest struct {
	Command    string          `json:"command"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type hookResponse struct {
	ID         string          `json:"id"`
	Command    string          `json:"command"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listHooksResponse struct {
	Hooks []hookResponse `json:"hooks"`
}

func toHookResponse(hk *store.Hook) hookResponse {
	config := hk.Config
	if config == nil {
		config = json.RawMessage("{}")
	}
	return hookResponse{
		ID:         hk.ID,
		Command:    hk.Command,
		PluginName: hk.PluginName,
		ActionName: hk.ActionName,
		Config:     config,
		Enabled:    hk.Enabled,
		CreatedAt:  formatTime(hk.CreatedAt),
	}
}

// validate checks the command name and, when plugins are known, the
// plugin and action. It returns a client-facing message or "".
func (h *HookHandler) validate(hk *store.Hook) string {
	if !slices.Contains(gesture.Commands, gesture.Command(hk.Command)) {
		return "Unknown command: " + hk.Command
	}
	if h.plugins == nil {
		return ""
	}
	if _, err := h.plugins.Resolve(hk.PluginName, hk.ActionName); err != nil {
		switch {
		case errors.Is(err, plugin.ErrPluginNotFound):
			return "Plugin not found"
		case errors.Is(err, plugin.ErrActionNotSupported):
			return "Action not supported by plugin"
		}
		return "Invalid plugin"
	}
	return ""
}

// list handles GET /api/hooks and returns all hooks.
func (h *HookHandler) list(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.store.Hooks().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hooks")
		return
	}

	response := listHooksResponse{
		Hooks: make([]hookResponse, 0, len(hooks)),
	}
	for _, hk := range hooks {
		response.Hooks = append(response.Hooks, toHookResponse(hk))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/hooks/{id} and returns a single hook.
func (h *HookHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	hk, err := h.store.Hooks().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get hook")
		return
	}

	writeJSON(w, http.StatusOK, toHookResponse(hk))
}

// create handles POST /api/hooks and creates a new hook.
func (h *HookHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "command is required")
		return
	}
	if req.PluginName == "" {
		writeError(w, http.StatusBadRequest, "plugin_name is required")
		return
	}
	if req.ActionName == "" {
		writeError(w, http.StatusBadRequest, "action_name is required")
		return
	}

	hk := &store.Hook{
		Command:    req.Command,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    true,
	}
	if msg := h.validate(hk); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Hooks().Create(hk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create hook")
		return
	}

	writeJSON(w, http.StatusCreated, toHookResponse(hk))
}

// update handles PUT /api/hooks/{id} and updates an existing hook.
func (h *HookHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	hk, err := h.store.Hooks().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get hook")
		return
	}

	var req updateHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Command != "" {
		hk.Command = req.Command
	}
	if req.PluginName != "" {
		hk.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		hk.ActionName = req.ActionName
	}
	if req.Config != nil {
		hk.Config = req.Config
	}
	if req.Enabled != nil {
		hk.Enabled = *req.Enabled
	}

	if msg := h.validate(hk); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Hooks().Update(hk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update hook")
		return
	}

	writeJSON(w, http.StatusOK, toHookResponse(hk))
}

// delete handles DELETE /api/hooks/{id} and removes a hook.
func (h *HookHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Hooks().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete hook")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
