package ticketgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	genai "google.golang.org/genai"

	"ticketflow/internal/gateway/repository/ticketstore"
	"ticketflow/internal/llmclient"
)

type fakeObjectLLM struct {
	response json.RawMessage
	err      error
	prompt   string
}

func (f *fakeObjectLLM) Name() string { return "fake" }
func (f *fakeObjectLLM) Close() error { return nil }

func (f *fakeObjectLLM) Generate(context.Context, llmclient.Request, func(string)) (*llmclient.Response, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeObjectLLM) GenerateObject(_ context.Context, prompt string, _ any, _ *genai.Schema) (json.RawMessage, error) {
	f.prompt = prompt
	return f.response, f.err
}

func TestGenerateAndAppend_RemapsIDsAndDependencies(t *testing.T) {
	llm := &fakeObjectLLM{response: json.RawMessage(`{"tickets":[
		{"id":"t1","title":"Set up repo","type":"Task","priority":"P0","description":"init","estimatedEffort":"S"},
		{"id":"t2","title":"Build core","type":"Story","priority":"P1","description":"core","estimatedEffort":"L","dependencies":["t1","ghost"]},
		{"id":"t3","title":"Launch","type":"Milestone","priority":"P1","description":"ship","estimatedEffort":"M","dependencies":["t2"]}
	]}`)}
	store := ticketstore.NewMemoryStore()
	engine := New(llm, store, VocabularyGeneric)

	out, err := engine.GenerateAndAppend(context.Background(), "p1", "a blog")
	if err != nil {
		t.Fatalf("GenerateAndAppend error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(out))
	}

	byOrder := map[int]ticketstore.Ticket{}
	ids := map[string]bool{}
	for _, tk := range out {
		if tk.ID == "t1" || tk.ID == "t2" || tk.ID == "t3" {
			t.Fatalf("model-local id leaked into durable id: %s", tk.ID)
		}
		if ids[tk.ID] {
			t.Fatalf("duplicate id %s", tk.ID)
		}
		ids[tk.ID] = true
		if tk.Status != ticketstore.StatusTodo {
			t.Fatalf("new tickets start in todo, got %s", tk.Status)
		}
		if tk.ProjectID != "p1" {
			t.Fatalf("wrong project: %s", tk.ProjectID)
		}
		byOrder[tk.SortOrder] = tk
	}
	for i := 0; i < 3; i++ {
		if _, ok := byOrder[i]; !ok {
			t.Fatalf("sort order not contiguous: %v", byOrder)
		}
	}

	// t2 depended on t1 and on an id not in the batch; only the real
	// reference survives, remapped to the durable id.
	core := byOrder[1]
	if len(core.Dependencies) != 1 || core.Dependencies[0] != byOrder[0].ID {
		t.Fatalf("dependency not remapped: %v", core.Dependencies)
	}

	persisted, _ := store.ListByProject(context.Background(), "p1")
	if len(persisted) != 3 {
		t.Fatalf("batch not persisted, got %d", len(persisted))
	}
}

func TestGenerateAndAppend_AppendsAfterExistingBoard(t *testing.T) {
	store := ticketstore.NewMemoryStore()
	now := time.Now().UTC()
	seed := []ticketstore.Ticket{
		{ID: "old-1", ProjectID: "p1", Title: "existing", Type: "Task", Priority: "P2",
			Status: ticketstore.StatusDone, SortOrder: 0, CreatedAt: now, UpdatedAt: now},
		{ID: "old-2", ProjectID: "p1", Title: "existing", Type: "Task", Priority: "P2",
			Status: ticketstore.StatusTodo, SortOrder: 1, CreatedAt: now, UpdatedAt: now},
	}
	if err := store.AppendBatch(context.Background(), "p1", seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	llm := &fakeObjectLLM{response: json.RawMessage(`{"tickets":[
		{"id":"t1","title":"New work","type":"Task","priority":"P1","description":"x","estimatedEffort":"S"}
	]}`)}
	out, err := New(llm, store, VocabularyGeneric).GenerateAndAppend(context.Background(), "p1", "more")
	if err != nil {
		t.Fatalf("GenerateAndAppend error: %v", err)
	}
	if out[0].SortOrder != 2 {
		t.Fatalf("generation must append after the existing board, got order %d", out[0].SortOrder)
	}
}

func TestGenerateAndAppend_EmptyPlanWritesNothing(t *testing.T) {
	store := ticketstore.NewMemoryStore()
	llm := &fakeObjectLLM{response: json.RawMessage(`{"tickets":[]}`)}

	if _, err := New(llm, store, VocabularyGeneric).GenerateAndAppend(context.Background(), "p1", "x"); err == nil {
		t.Fatal("empty plan must be an error")
	}
	if tickets, _ := store.ListByProject(context.Background(), "p1"); len(tickets) != 0 {
		t.Fatalf("board must stay empty, got %d", len(tickets))
	}
}

func TestGenerateAndAppend_NormalizesUnknownEnums(t *testing.T) {
	llm := &fakeObjectLLM{response: json.RawMessage(`{"tickets":[
		{"id":"t1","title":"x","type":"Saga","priority":"urgent","description":"x","estimatedEffort":"enormous"}
	]}`)}
	store := ticketstore.NewMemoryStore()
	out, err := New(llm, store, VocabularySoftware).GenerateAndAppend(context.Background(), "p1", "x")
	if err != nil {
		t.Fatalf("GenerateAndAppend error: %v", err)
	}
	tk := out[0]
	if tk.Type != "Task" || tk.Priority != "P2" || tk.EstimatedEffort != "M" {
		t.Fatalf("enums not normalized: type=%s priority=%s effort=%s", tk.Type, tk.Priority, tk.EstimatedEffort)
	}
}

func TestVocabularyShapesPromptAndTypes(t *testing.T) {
	soft := VocabularySoftware.TicketTypes()
	gen := VocabularyGeneric.TicketTypes()
	for _, v := range soft {
		if v == "Milestone" || v == "Deliverable" {
			t.Fatalf("software vocabulary leaked generic terms: %v", soft)
		}
	}
	joined := strings.Join(gen, ",")
	if !strings.Contains(joined, "Milestone") || !strings.Contains(joined, "Deliverable") {
		t.Fatalf("generic vocabulary missing delivery terms: %v", gen)
	}

	if p := generationPrompt(VocabularySoftware); !strings.Contains(p, "Bug") {
		t.Fatal("software prompt should offer Bug")
	}
	if p := generationPrompt(VocabularyGeneric); strings.Contains(p, "Bug") {
		t.Fatal("generic prompt should not offer Bug")
	}
}
