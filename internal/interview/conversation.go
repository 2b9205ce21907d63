package interview

import (
	"strings"

	"ticketflow/internal/tickettool"
)

// ideaKey is the lastAutoSentKey value recorded for the opening project idea.
// Batch keys always contain a '|' separator, so it cannot collide with one.
const ideaKey = "initial-idea"

// Conversation layers turn bookkeeping over the active question session: it
// opens a fresh conversation with the project idea exactly once, prevents
// answering while a turn is streaming, and makes sure a completed interview
// is auto-sent exactly once per batch.
type Conversation struct {
	Session         *Session
	TurnInFlight    bool
	lastAutoSentKey string
	batchKey        string
}

// ProjectIdeaMessage is the opening message for a project with no transcript:
// the description when present, the name otherwise.
func ProjectIdeaMessage(name, description string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	return name
}

// ShouldSendIdea reports whether the opening idea should go out now: nothing
// auto-sent on this conversation yet, no questions presented, no turn
// streaming. The caller decides whether the transcript is actually empty.
func (c *Conversation) ShouldSendIdea() bool {
	return !c.TurnInFlight && c.Session == nil && c.lastAutoSentKey == ""
}

// MarkIdeaSent records that the opening idea went out, so a redelivered ready
// frame cannot send it twice.
func (c *Conversation) MarkIdeaSent() {
	c.lastAutoSentKey = ideaKey
}

// PresentQuestions installs a new batch. An identical batch (same key) is
// ignored so redelivery does not wipe answers already collected.
func (c *Conversation) PresentQuestions(questions []tickettool.ClarifyingQuestion) {
	key := BatchKey(questions)
	if c.Session != nil && key == c.batchKey {
		return
	}
	c.Session = NewSession(questions)
	c.batchKey = key
}

// ShouldAutoSend reports whether the finished interview is ready to go out:
// every question resolved, no turn streaming, and this batch not sent yet.
func (c *Conversation) ShouldAutoSend() bool {
	return c.Session != nil &&
		c.Session.Done() &&
		!c.TurnInFlight &&
		c.batchKey != c.lastAutoSentKey
}

// MarkAutoSent records that the current batch's answers went out.
func (c *Conversation) MarkAutoSent() {
	c.lastAutoSentKey = c.batchKey
}
