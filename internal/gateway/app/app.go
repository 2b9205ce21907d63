package app

import (
	"context"
	"fmt"
	"log"

	"ticketflow/internal/cache/board"
	"ticketflow/internal/chat"
	"ticketflow/internal/gateway/config"
	"ticketflow/internal/gateway/handler"
	"ticketflow/internal/gateway/server"
	gatewayproject "ticketflow/internal/gateway/service/project"
	gatewayticket "ticketflow/internal/gateway/service/ticket"
	"ticketflow/internal/llmclient"
	"ticketflow/internal/ticketgen"
	"ticketflow/internal/tickettool"
)

// boardCacheSize caps how many projects' boards stay cached at once.
const boardCacheSize = 256

type App struct {
	server *server.Server
	stores *Stores
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	stores, err := newStores(cfg)
	if err != nil {
		return nil, err
	}

	cachedTickets, err := board.NewCachedStore(stores.Tickets, boardCacheSize)
	if err != nil {
		return nil, fmt.Errorf("board cache: %w", err)
	}

	vocab := ticketgen.ParseVocabulary(cfg.Model.Vocabulary)
	projectSvc := gatewayproject.NewService(stores.Projects, cachedTickets, stores.Messages)
	ticketSvc := gatewayticket.NewService(cachedTickets, vocab)

	// Without credentials the gateway still serves the board; chat turns fail
	// with a configuration error instead.
	var llm llmclient.Client
	if cfg.Model.APIKey != "" {
		llm, err = llmclient.NewGeminiClient(ctx, cfg.Model.APIKey, cfg.Model.Name)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
	} else {
		log.Printf("app: no GEMINI_API_KEY set, chat is disabled")
	}

	orchestrator := &chat.Orchestrator{
		LLM:      llm,
		Messages: stores.Messages,
		Exec: &tickettool.Executor{
			Tickets: ticketSvc,
			Gen:     ticketgen.New(llm, cachedTickets, vocab),
		},
		Locks:         chat.NewTurnLocks(),
		Vocab:         vocab,
		MaxToolRounds: cfg.Model.MaxToolRounds,
	}

	mux := server.NewMux(
		handler.NewProjectHandler(projectSvc),
		handler.NewTicketHandler(projectSvc, ticketSvc),
		handler.NewMessageHandler(projectSvc, stores.Messages),
		handler.NewSnapshotHandler(projectSvc, ticketSvc, stores.Snapshots),
		handler.NewChatHandler(projectSvc, orchestrator),
	)

	return &App{
		server: server.New(cfg.Port, mux),
		stores: stores,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.stores.Close(); err == nil {
		err = cerr
	}
	return err
}
