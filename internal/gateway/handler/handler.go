// Package handler exposes the gateway's HTTP surface: project and ticket
// CRUD, the message transcript, board snapshots, and the chat websocket.
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// anonymousUser scopes requests that carry no identity. Single-user local
// deployments never set the header and share one namespace.
const anonymousUser = "local-user"

func userID(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-User-ID")); v != "" {
		return v
	}
	return anonymousUser
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handler: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
