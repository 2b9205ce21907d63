package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ticketflow/internal/gateway/repository/ticketstore"
	"ticketflow/internal/gateway/service/project"
	"ticketflow/internal/gateway/service/ticket"
)

// TicketHandler serves the board's direct endpoints. Unlike the model tools,
// these are strict: operating on an unknown ticket is a 404, not a no-op.
type TicketHandler struct {
	projects *project.Service
	tickets  *ticket.Service
}

func NewTicketHandler(projects *project.Service, tickets *ticket.Service) *TicketHandler {
	return &TicketHandler{projects: projects, tickets: tickets}
}

// resolveProject checks ownership before any board access.
func (h *TicketHandler) resolveProject(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, err := h.projects.GetOwned(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeProjectError(w, err)
		return "", false
	}
	return p.ID, true
}

func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.resolveProject(w, r)
	if !ok {
		return
	}
	tickets, err := h.tickets.ListByProject(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list tickets")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tickets": tickets})
}

func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.resolveProject(w, r)
	if !ok {
		return
	}
	t, err := h.tickets.Get(r.Context(), projectID, r.PathValue("ticketId"))
	if err != nil {
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TicketHandler) Patch(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.resolveProject(w, r)
	if !ok {
		return
	}
	var patch ticketstore.FieldPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if patch.IsZero() {
		writeError(w, http.StatusBadRequest, "patch changes nothing")
		return
	}
	t, err := h.tickets.Update(r.Context(), projectID, r.PathValue("ticketId"), patch)
	if err != nil {
		if strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "empty") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.resolveProject(w, r)
	if !ok {
		return
	}
	if err := h.tickets.Delete(r.Context(), projectID, r.PathValue("ticketId")); err != nil {
		writeTicketError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeTicketError(w http.ResponseWriter, err error) {
	if errors.Is(err, ticket.ErrNotFound) {
		writeError(w, http.StatusNotFound, "ticket not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "ticket operation failed")
}
