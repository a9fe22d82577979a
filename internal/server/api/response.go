// Package api provides HTTP API handlers for airtype: saved sessions,
// command hooks, runtime settings and the typed text.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// timeFormat is used for every timestamp in responses.
const timeFormat = "2006-01-02T15:04:05Z07:00"

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// itemID returns the path segment after prefix, or "" for the collection.
func itemID(path, prefix string) string {
	return strings.Trim(strings.TrimPrefix(path, prefix), "/")
}

func formatTime(t time.Time) string {
	return t.Format(timeFormat)
}
