package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ticketflow/internal/chat"
	"ticketflow/internal/gateway/service/project"
)

// TurnRunner runs one conversational turn, streaming events to emit.
type TurnRunner interface {
	RunTurn(ctx context.Context, req chat.TurnRequest, emit func(chat.Event)) error
}

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type chatWSInbound struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId,omitempty"`
	Content   string `json:"content,omitempty"`
}

// ChatHandler upgrades one connection per conversation and relays turn events
// as JSON frames.
type ChatHandler struct {
	projects *project.Service
	runner   TurnRunner
}

func NewChatHandler(projects *project.Service, runner TurnRunner) *ChatHandler {
	return &ChatHandler{projects: projects, runner: runner}
}

func (h *ChatHandler) HandleChatWS(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetOwned(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeProjectError(w, err)
		return
	}

	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		log.Printf("chat ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	writeCh := make(chan chat.Event, 64)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	push := func(ev chat.Event) {
		select {
		case <-ctx.Done():
		case writeCh <- ev:
		}
	}
	push(chat.Event{Type: chat.EventReady})

	var turnMu sync.Mutex
	var turnCancel context.CancelFunc

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			turnMu.Lock()
			if turnCancel != nil {
				turnCancel()
			}
			turnMu.Unlock()
			cancel()
			<-writerDone
			return
		}

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			push(chat.Event{Type: "pong"})

		case "cancel":
			turnMu.Lock()
			if turnCancel != nil {
				turnCancel()
			}
			turnMu.Unlock()

		case "send":
			content := strings.TrimSpace(in.Content)
			if content == "" {
				push(chat.Event{Type: chat.EventError, Error: &chat.ErrorInfo{
					Code:    "invalid_argument",
					Message: "content is required",
				}})
				continue
			}

			turnMu.Lock()
			if turnCancel != nil {
				push(chat.Event{Type: chat.EventError, Error: &chat.ErrorInfo{
					Code:    chat.CodeBusy,
					Message: "A turn is already running on this connection.",
				}})
				turnMu.Unlock()
				continue
			}
			turnCtx, tcancel := context.WithCancel(ctx)
			turnCancel = tcancel
			turnMu.Unlock()

			go func(msgID, content string) {
				defer func() {
					tcancel()
					turnMu.Lock()
					turnCancel = nil
					turnMu.Unlock()
				}()
				err := h.runner.RunTurn(turnCtx, chat.TurnRequest{
					ProjectID:          p.ID,
					ProjectName:        p.Name,
					ProjectDescription: p.Description,
					MessageID:          msgID,
					Content:            content,
				}, push)
				if err != nil {
					log.Printf("chat ws: turn failed project=%s: %v", p.ID, err)
				}
			}(strings.TrimSpace(in.MessageID), content)

		default:
			push(chat.Event{Type: chat.EventError, Error: &chat.ErrorInfo{
				Code:    "invalid_argument",
				Message: "unsupported type: " + in.Type,
			}})
		}
	}
}
