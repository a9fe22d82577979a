package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ayusman/airtype/internal/stats"
)

// ErrInvalidSetting is returned by a Controller for values it rejects,
// such as an unknown layout or theme.
var ErrInvalidSetting = errors.New("invalid setting")

// RuntimeSettings are the values a user can change while airtype runs.
type RuntimeSettings struct {
	Layout           string   `json:"layout"`
	Layouts          []string `json:"layouts"`
	Theme            string   `json:"theme"`
	Themes           []string `json:"themes"`
	Paused           bool     `json:"paused"`
	AdvancedGestures bool     `json:"advanced_gestures"`
	SmartZones       bool     `json:"smart_zones"`
}

// SettingsUpdate changes the non-nil fields.
type SettingsUpdate struct {
	Layout           *string `json:"layout"`
	Theme            *string `json:"theme"`
	Paused           *bool   `json:"paused"`
	AdvancedGestures *bool   `json:"advanced_gestures"`
	SmartZones       *bool   `json:"smart_zones"`
}

// Controller is the running typing session as seen by the API.
type Controller interface {
	RuntimeSettings() RuntimeSettings
	UpdateSettings(SettingsUpdate) (RuntimeSettings, error)
	Text() string
	ClearText()
	Stats() stats.Snapshot
	Save() error
}

// SettingsHandler serves GET and PUT on /api/settings.
type SettingsHandler struct {
	controller Controller
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(c Controller) *SettingsHandler {
	return &SettingsHandler{controller: c}
}

// ServeHTTP handles /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.controller.RuntimeSettings())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	settings, err := h.controller.UpdateSettings(req)
	if err != nil {
		if errors.Is(err, ErrInvalidSetting) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("update settings: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// TextHandler serves the typed text.
//
//	GET    /api/text  text and statistics
//	POST   /api/text  save the current session
//	DELETE /api/text  clear the text
type TextHandler struct {
	controller Controller
}

// NewTextHandler creates a new TextHandler.
func NewTextHandler(c Controller) *TextHandler {
	return &TextHandler{controller: c}
}

type textResponse struct {
	Text  string         `json:"text"`
	Stats stats.Snapshot `json:"stats"`
}

// ServeHTTP handles /api/text.
func (h *TextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.respond(w)
	case http.MethodPost:
		if err := h.controller.Save(); err != nil {
			log.Printf("save session: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to save session")
			return
		}
		h.respond(w)
	case http.MethodDelete:
		h.controller.ClearText()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TextHandler) respond(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, textResponse{
		Text:  h.controller.Text(),
		Stats: h.controller.Stats(),
	})
}
