package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/airtype/internal/store"
)

// SessionHandler serves saved typing sessions.
//
//	GET    /api/sessions[?limit=n]
//	GET    /api/sessions/{id}
//	GET    /api/sessions/{id}/keystrokes
//	DELETE /api/sessions/{id}
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

type sessionResponse struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Layout     string  `json:"layout"`
	Theme      string  `json:"theme"`
	Chars      int     `json:"chars"`
	Words      int     `json:"words"`
	Backspaces int     `json:"backspaces"`
	Keystrokes int     `json:"keystrokes"`
	WPM        float64 `json:"wpm"`
	Accuracy   float64 `json:"accuracy"`
	StartedAt  string  `json:"started_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type keystrokeResponse struct {
	Token   string `json:"token"`
	TypedAt string `json:"typed_at"`
}

type listKeystrokesResponse struct {
	SessionID  string              `json:"session_id"`
	Keystrokes []keystrokeResponse `json:"keystrokes"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	return sessionResponse{
		ID:         s.ID,
		Text:       s.Text,
		Layout:     s.Layout,
		Theme:      s.Theme,
		Chars:      s.Chars,
		Words:      s.Words,
		Backspaces: s.Backspaces,
		Keystrokes: s.Keystrokes,
		WPM:        s.WPM,
		Accuracy:   s.Accuracy,
		StartedAt:  formatTime(s.StartedAt),
		UpdatedAt:  formatTime(s.UpdatedAt),
	}
}

// ServeHTTP routes session requests.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := itemID(r.URL.Path, "/api/sessions")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	if id, ok := strings.CutSuffix(path, "/keystrokes"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.keystrokes(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, path)
	case http.MethodDelete:
		h.delete(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// keystrokes handles GET /api/sessions/{id}/keystrokes.
func (h *SessionHandler) keystrokes(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	keystrokes, err := h.store.Keystrokes().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list keystrokes")
		return
	}

	response := listKeystrokesResponse{
		SessionID:  id,
		Keystrokes: make([]keystrokeResponse, 0, len(keystrokes)),
	}
	for _, k := range keystrokes {
		response.Keystrokes = append(response.Keystrokes, keystrokeResponse{
			Token:   k.Token,
			TypedAt: formatTime(k.TypedAt),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
