package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ticketflow/internal/gateway/repository/snapshot"
	"ticketflow/internal/gateway/service/project"
	"ticketflow/internal/gateway/service/ticket"
)

// SnapshotHandler exports the board as write-once JSON snapshots and serves
// them back, through the gateway or via a presigned URL when the backend has
// one.
type SnapshotHandler struct {
	projects  *project.Service
	tickets   *ticket.Service
	snapshots snapshot.Store
}

func NewSnapshotHandler(projects *project.Service, tickets *ticket.Service, snapshots snapshot.Store) *SnapshotHandler {
	return &SnapshotHandler{projects: projects, tickets: tickets, snapshots: snapshots}
}

func (h *SnapshotHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetOwned(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeProjectError(w, err)
		return
	}
	tickets, err := h.tickets.ListByProject(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read board")
		return
	}
	taken := time.Now().UTC()
	content, err := json.Marshal(map[string]any{
		"projectId": p.ID,
		"project":   p.Name,
		"takenAt":   taken.Format(time.RFC3339),
		"tickets":   tickets,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not encode board")
		return
	}
	name := fmt.Sprintf("board-%s.json", taken.Format("20060102-150405"))
	if err := h.snapshots.Put(r.Context(), p.ID, name, content); err != nil {
		writeError(w, http.StatusInternalServerError, "could not store snapshot")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"name": name, "tickets": len(tickets)})
}

func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetOwned(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeProjectError(w, err)
		return
	}
	names, err := h.snapshots.List(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list snapshots")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": names})
}

func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetOwned(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeProjectError(w, err)
		return
	}
	name := r.PathValue("name")

	if url, err := h.snapshots.GetURL(r.Context(), p.ID, name); err == nil && url != "" {
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
		return
	}

	content, err := h.snapshots.Get(r.Context(), p.ID, name)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not read snapshot")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(content)
}
