package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	genai "google.golang.org/genai"

	"ticketflow/internal/gateway/repository/messagestore"
	"ticketflow/internal/gateway/repository/ticketstore"
	gatewayticket "ticketflow/internal/gateway/service/ticket"
	"ticketflow/internal/llmclient"
	"ticketflow/internal/ticketgen"
	"ticketflow/internal/tickettool"
)

type fakeLLM struct {
	responses []llmclient.Response
	calls     int
}

func (f *fakeLLM) Name() string { return "fake" }
func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) Generate(_ context.Context, _ llmclient.Request, onText func(string)) (*llmclient.Response, error) {
	f.calls++
	if len(f.responses) == 0 {
		return &llmclient.Response{}, nil
	}
	out := f.responses[0]
	f.responses = f.responses[1:]
	if onText != nil && out.Text != "" {
		onText(out.Text)
	}
	return &out, nil
}

func (f *fakeLLM) GenerateObject(context.Context, string, any, *genai.Schema) (json.RawMessage, error) {
	return nil, fmt.Errorf("not used")
}

type fakeGen struct {
	store ticketstore.Store
	count int
}

func (f *fakeGen) GenerateAndAppend(ctx context.Context, projectID, _ string) ([]ticketstore.Ticket, error) {
	now := time.Now().UTC()
	tickets := make([]ticketstore.Ticket, 0, f.count)
	for i := 0; i < f.count; i++ {
		tickets = append(tickets, ticketstore.Ticket{
			ID:        fmt.Sprintf("gen-%d", i),
			ProjectID: projectID,
			Title:     fmt.Sprintf("ticket %d", i),
			Type:      "Task",
			Priority:  "P1",
			Status:    ticketstore.StatusTodo,
			SortOrder: i,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err := f.store.AppendBatch(ctx, projectID, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

type fixture struct {
	orch     *Orchestrator
	llm      *fakeLLM
	tickets  ticketstore.Store
	messages messagestore.Store
}

func newFixture(llm *fakeLLM, genCount int) *fixture {
	tickets := ticketstore.NewMemoryStore()
	messages := messagestore.NewMemoryStore()
	svc := gatewayticket.NewService(tickets, ticketgen.VocabularyGeneric)
	orch := &Orchestrator{
		Messages: messages,
		Exec: &tickettool.Executor{
			Tickets: svc,
			Gen:     &fakeGen{store: tickets, count: genCount},
		},
		Locks:         NewTurnLocks(),
		Vocab:         ticketgen.VocabularyGeneric,
		MaxToolRounds: 2,
	}
	if llm != nil {
		orch.LLM = llm
	}
	return &fixture{orch: orch, llm: llm, tickets: tickets, messages: messages}
}

func collect(events *[]Event) func(Event) {
	return func(ev Event) { *events = append(*events, ev) }
}

func callJSON(name string, args string) llmclient.ToolCall {
	return llmclient.ToolCall{Name: name, Args: json.RawMessage(args)}
}

func TestRunTurn_PlainTextTurn(t *testing.T) {
	f := newFixture(&fakeLLM{responses: []llmclient.Response{
		{Text: "Tell me more about your project."},
	}}, 0)

	var events []Event
	err := f.orch.RunTurn(context.Background(), TurnRequest{
		ProjectID: "p1", ProjectName: "Demo", MessageID: "m1", Content: "hi",
	}, collect(&events))
	if err != nil {
		t.Fatalf("RunTurn error: %v", err)
	}

	msgs, _ := f.messages.ListByProject(context.Background(), "p1")
	if len(msgs) != 2 {
		t.Fatalf("expected user+assistant persisted, got %d", len(msgs))
	}
	if msgs[0].Role != messagestore.RoleUser || msgs[1].Role != messagestore.RoleAssistant {
		t.Fatalf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[1].ID == "" || msgs[1].ID == "m1" {
		t.Fatalf("assistant message needs a fresh id, got %q", msgs[1].ID)
	}
	last := events[len(events)-1]
	if last.Type != EventComplete {
		t.Fatalf("expected complete, got %s", last.Type)
	}
}

func TestRunTurn_UserMessageIdempotent(t *testing.T) {
	f := newFixture(&fakeLLM{}, 0)

	req := TurnRequest{ProjectID: "p1", ProjectName: "Demo", MessageID: "m1", Content: "hi"}
	for i := 0; i < 2; i++ {
		if err := f.orch.RunTurn(context.Background(), req, nil); err != nil {
			t.Fatalf("RunTurn %d: %v", i, err)
		}
	}

	msgs, _ := f.messages.ListByProject(context.Background(), "p1")
	users := 0
	for _, m := range msgs {
		if m.Role == messagestore.RoleUser {
			users++
		}
	}
	if users != 1 {
		t.Fatalf("expected 1 user message after redelivery, got %d", users)
	}
}

func TestRunTurn_ModelInvocationBound(t *testing.T) {
	// The model keeps asking for tools; the loop must stop after MaxToolRounds
	// invocations regardless.
	responses := make([]llmclient.Response, 5)
	for i := range responses {
		responses[i] = llmclient.Response{Calls: []llmclient.ToolCall{
			callJSON(tickettool.NameListTickets, `{}`),
		}}
	}
	f := newFixture(&fakeLLM{responses: responses}, 0)

	err := f.orch.RunTurn(context.Background(), TurnRequest{
		ProjectID: "p1", MessageID: "m1", Content: "hi",
	}, nil)
	if err != nil {
		t.Fatalf("RunTurn error: %v", err)
	}
	if f.llm.calls != 2 {
		t.Fatalf("expected 2 model invocations, got %d", f.llm.calls)
	}
}

func TestRunTurn_SilentGenerationEmitsConfirmation(t *testing.T) {
	f := newFixture(&fakeLLM{responses: []llmclient.Response{
		{Calls: []llmclient.ToolCall{
			callJSON(tickettool.NameGenerateTickets, `{"projectDescription":"a blog"}`),
		}},
		{}, // model says nothing after the tool result
	}}, 3)

	var events []Event
	err := f.orch.RunTurn(context.Background(), TurnRequest{
		ProjectID: "p1", MessageID: "m1", Content: SkipSentinel,
	}, collect(&events))
	if err != nil {
		t.Fatalf("RunTurn error: %v", err)
	}

	var confirmed *Event
	for i := range events {
		if events[i].Type == EventTicketsGenerated {
			confirmed = &events[i]
		}
	}
	if confirmed == nil {
		t.Fatalf("expected tickets-generated event, got %+v", events)
	}
	if confirmed.Generated != 3 {
		t.Fatalf("expected 3 generated, got %d", confirmed.Generated)
	}

	msgs, _ := f.messages.ListByProject(context.Background(), "p1")
	for _, m := range msgs {
		if m.Role == messagestore.RoleAssistant {
			t.Fatalf("no assistant message should persist on a silent turn, got %q", m.Content)
		}
	}
}

func TestRunTurn_FailedToolKeepsEarlierMutations(t *testing.T) {
	// First call generates tickets, second call is malformed. The generated
	// tickets must survive.
	f := newFixture(&fakeLLM{responses: []llmclient.Response{
		{Calls: []llmclient.ToolCall{
			callJSON(tickettool.NameGenerateTickets, `{"projectDescription":"a blog"}`),
			callJSON(tickettool.NameUpdateTickets, `{"updates":[]}`),
		}},
		{Text: "done"},
	}}, 2)

	if err := f.orch.RunTurn(context.Background(), TurnRequest{
		ProjectID: "p1", MessageID: "m1", Content: "go",
	}, nil); err != nil {
		t.Fatalf("RunTurn error: %v", err)
	}

	tickets, _ := f.tickets.ListByProject(context.Background(), "p1")
	if len(tickets) != 2 {
		t.Fatalf("expected generated tickets retained, got %d", len(tickets))
	}
}

func TestRunTurn_NoClientFailsFast(t *testing.T) {
	f := newFixture(nil, 0)

	var events []Event
	if err := f.orch.RunTurn(context.Background(), TurnRequest{
		ProjectID: "p1", MessageID: "m1", Content: "hi",
	}, collect(&events)); err != nil {
		t.Fatalf("RunTurn error: %v", err)
	}

	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected a single error event, got %+v", events)
	}
	if events[0].Error.Code != CodeConfig {
		t.Fatalf("expected %s, got %s", CodeConfig, events[0].Error.Code)
	}
	msgs, _ := f.messages.ListByProject(context.Background(), "p1")
	if len(msgs) != 0 {
		t.Fatalf("nothing should persist without a client, got %d messages", len(msgs))
	}
}

func TestRunTurn_RejectsConcurrentTurn(t *testing.T) {
	f := newFixture(&fakeLLM{}, 0)
	if !f.orch.Locks.Acquire("p1") {
		t.Fatal("setup: could not take lock")
	}
	defer f.orch.Locks.Release("p1")

	var events []Event
	if err := f.orch.RunTurn(context.Background(), TurnRequest{
		ProjectID: "p1", MessageID: "m1", Content: "hi",
	}, collect(&events)); err != nil {
		t.Fatalf("RunTurn error: %v", err)
	}
	if len(events) != 1 || events[0].Error == nil || events[0].Error.Code != CodeBusy {
		t.Fatalf("expected busy rejection, got %+v", events)
	}
}

func TestRunTurn_QuestionsSurfaceOnToolCallEvent(t *testing.T) {
	f := newFixture(&fakeLLM{responses: []llmclient.Response{
		{Calls: []llmclient.ToolCall{callJSON(tickettool.NameSetClarifyingQuestions,
			`{"questions":[{"id":"q1","question":"Who is this for?","options":["Just me","A team"]}]}`)}},
		{Text: "Answer when ready."},
	}}, 0)

	var events []Event
	if err := f.orch.RunTurn(context.Background(), TurnRequest{
		ProjectID: "p1", MessageID: "m1", Content: "I want to plan a blog",
	}, collect(&events)); err != nil {
		t.Fatalf("RunTurn error: %v", err)
	}

	found := false
	for _, ev := range events {
		if ev.Type == EventToolCall && len(ev.Questions) == 1 {
			if ev.Questions[0].ID != "q1" || len(ev.Questions[0].Options) != 2 {
				t.Fatalf("question not carried through: %+v", ev.Questions)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("no tool-call event carried questions: %+v", events)
	}
}
