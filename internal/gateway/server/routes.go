package server

import (
	"net/http"

	"ticketflow/internal/gateway/handler"
	"ticketflow/internal/gateway/middleware"
)

func NewMux(
	projectHandler *handler.ProjectHandler,
	ticketHandler *handler.TicketHandler,
	messageHandler *handler.MessageHandler,
	snapshotHandler *handler.SnapshotHandler,
	chatHandler *handler.ChatHandler,
) http.Handler {
	mux := http.NewServeMux()

	// Projects
	mux.HandleFunc("POST /api/projects", projectHandler.Create)
	mux.HandleFunc("GET /api/projects", projectHandler.List)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.Get)
	mux.HandleFunc("GET /api/projects/slug/{slug}", projectHandler.GetBySlug)
	mux.HandleFunc("PUT /api/projects/{id}", projectHandler.Update)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.Delete)

	// Board
	mux.HandleFunc("GET /api/projects/{id}/tickets", ticketHandler.List)
	mux.HandleFunc("GET /api/projects/{id}/tickets/{ticketId}", ticketHandler.Get)
	mux.HandleFunc("PATCH /api/projects/{id}/tickets/{ticketId}", ticketHandler.Patch)
	mux.HandleFunc("DELETE /api/projects/{id}/tickets/{ticketId}", ticketHandler.Delete)

	// Transcript
	mux.HandleFunc("GET /api/projects/{id}/messages", messageHandler.List)

	// Snapshots
	mux.HandleFunc("POST /api/projects/{id}/snapshots", snapshotHandler.Create)
	mux.HandleFunc("GET /api/projects/{id}/snapshots", snapshotHandler.List)
	mux.HandleFunc("GET /api/projects/{id}/snapshots/{name}", snapshotHandler.Get)

	// Chat websocket
	mux.HandleFunc("GET /api/projects/{id}/chat", chatHandler.HandleChatWS)

	return middleware.CORS(mux)
}
