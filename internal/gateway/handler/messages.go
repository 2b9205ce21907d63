package handler

import (
	"net/http"

	"ticketflow/internal/gateway/repository/messagestore"
	"ticketflow/internal/gateway/service/project"
)

// MessageHandler serves the persisted conversation transcript.
type MessageHandler struct {
	projects *project.Service
	messages messagestore.Store
}

func NewMessageHandler(projects *project.Service, messages messagestore.Store) *MessageHandler {
	return &MessageHandler{projects: projects, messages: messages}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetOwned(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeProjectError(w, err)
		return
	}
	msgs, err := h.messages.ListByProject(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list messages")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
