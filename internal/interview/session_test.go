package interview

import (
	"testing"

	"ticketflow/internal/tickettool"
)

func sampleQuestions() []tickettool.ClarifyingQuestion {
	return []tickettool.ClarifyingQuestion{
		{ID: "q1", Question: "Who is the audience?", Options: []string{"Just me", "A team"}},
		{ID: "q2", Question: "When does it launch?"},
		{ID: "q3", Question: "Any hard constraints?"},
	}
}

func TestComposeMessage_ExactFormat(t *testing.T) {
	s := NewSession(sampleQuestions())
	s.Answer("A team")
	s.Skip()
	s.Answer("No budget for hosting")
	s.SetDetails("We already have a logo.")

	want := "1. Who is the audience?\nAnswer: A team\n\n" +
		"2. When does it launch?\nAnswer: (skipped)\n\n" +
		"3. Any hard constraints?\nAnswer: No budget for hosting\n\n" +
		"Additional details: We already have a logo."
	if got := s.ComposeMessage(); got != want {
		t.Fatalf("composed message mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestComposeMessage_NoDetailsOmitsTrailer(t *testing.T) {
	s := NewSession(sampleQuestions()[:1])
	s.Answer("Just me")
	want := "1. Who is the audience?\nAnswer: Just me"
	if got := s.ComposeMessage(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSession_Walkthrough(t *testing.T) {
	s := NewSession(sampleQuestions())
	if s.Done() || s.Remaining() != 3 {
		t.Fatalf("fresh session state wrong: done=%v remaining=%d", s.Done(), s.Remaining())
	}
	q, ok := s.Current()
	if !ok || q.ID != "q1" {
		t.Fatalf("expected q1 first, got %+v", q)
	}
	s.Answer("A team")
	if q, _ := s.Current(); q.ID != "q2" {
		t.Fatalf("expected q2 after answering, got %s", q.ID)
	}
	s.SkipRest()
	if !s.Done() {
		t.Fatal("SkipRest must finish the session")
	}
	// Answering past the end is a no-op.
	s.Answer("late")
	if got := s.ComposeMessage(); got == "" {
		t.Fatal("compose after done should still render")
	}
}

func TestConversation_AutoSendOncePerBatch(t *testing.T) {
	var c Conversation
	c.PresentQuestions(sampleQuestions()[:1])
	if c.ShouldAutoSend() {
		t.Fatal("unanswered batch must not auto-send")
	}
	c.Session.Answer("Just me")

	c.TurnInFlight = true
	if c.ShouldAutoSend() {
		t.Fatal("must not auto-send while a turn streams")
	}
	c.TurnInFlight = false
	if !c.ShouldAutoSend() {
		t.Fatal("finished batch should auto-send")
	}
	c.MarkAutoSent()
	if c.ShouldAutoSend() {
		t.Fatal("batch must auto-send at most once")
	}
}

func TestConversation_SendsIdeaOnce(t *testing.T) {
	var c Conversation
	if !c.ShouldSendIdea() {
		t.Fatal("fresh conversation should open with the idea")
	}
	c.MarkIdeaSent()
	if c.ShouldSendIdea() {
		t.Fatal("redelivered ready frame must not resend the idea")
	}

	// The idea does not count against the interview auto-send.
	c.PresentQuestions(sampleQuestions()[:1])
	c.Session.Answer("Just me")
	if !c.ShouldAutoSend() {
		t.Fatal("finished batch should still auto-send after the idea went out")
	}
}

func TestConversation_IdeaHeldBackWhenNotFresh(t *testing.T) {
	c := Conversation{TurnInFlight: true}
	if c.ShouldSendIdea() {
		t.Fatal("must not send the idea while a turn streams")
	}
	c.TurnInFlight = false
	c.PresentQuestions(sampleQuestions())
	if c.ShouldSendIdea() {
		t.Fatal("a presented batch means the conversation already started")
	}
}

func TestProjectIdeaMessage(t *testing.T) {
	if got := ProjectIdeaMessage("Podcast", "  Launch a podcast about urban gardening.  "); got != "Launch a podcast about urban gardening." {
		t.Fatalf("description should win, got %q", got)
	}
	if got := ProjectIdeaMessage("Podcast", "   "); got != "Podcast" {
		t.Fatalf("blank description should fall back to the name, got %q", got)
	}
}

func TestConversation_RedeliveredBatchKeepsAnswers(t *testing.T) {
	var c Conversation
	c.PresentQuestions(sampleQuestions())
	c.Session.Answer("A team")

	// Same batch again: answers survive.
	c.PresentQuestions(sampleQuestions())
	if c.Session.Remaining() != 2 {
		t.Fatalf("redelivery reset the session, remaining=%d", c.Session.Remaining())
	}

	// A genuinely new batch replaces the session.
	c.PresentQuestions([]tickettool.ClarifyingQuestion{{ID: "x1", Question: "New?"}})
	if c.Session.Remaining() != 1 || c.Session.Total() != 1 {
		t.Fatalf("new batch not installed: remaining=%d", c.Session.Remaining())
	}
}
