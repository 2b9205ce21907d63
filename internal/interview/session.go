// Package interview tracks a clarifying-question batch on the client side:
// which question is up, what was answered or skipped, and how the collected
// answers are folded into a single follow-up chat message.
package interview

import (
	"fmt"
	"strings"

	"ticketflow/internal/tickettool"
)

// Answer is one recorded response.
type Answer struct {
	Text    string
	Skipped bool
}

// Session walks one batch of questions in order.
type Session struct {
	questions []tickettool.ClarifyingQuestion
	answers   []Answer
	index     int
	details   string
}

func NewSession(questions []tickettool.ClarifyingQuestion) *Session {
	return &Session{
		questions: questions,
		answers:   make([]Answer, len(questions)),
	}
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (tickettool.ClarifyingQuestion, bool) {
	if s.index >= len(s.questions) {
		return tickettool.ClarifyingQuestion{}, false
	}
	return s.questions[s.index], true
}

// Answer records text for the current question and advances.
func (s *Session) Answer(text string) {
	if s.index >= len(s.questions) {
		return
	}
	s.answers[s.index] = Answer{Text: text}
	s.index++
}

// Skip marks the current question skipped and advances.
func (s *Session) Skip() {
	if s.index >= len(s.questions) {
		return
	}
	s.answers[s.index] = Answer{Skipped: true}
	s.index++
}

// SkipRest marks every remaining question skipped.
func (s *Session) SkipRest() {
	for s.index < len(s.questions) {
		s.Skip()
	}
}

// SetDetails attaches free-form context beyond the question list.
func (s *Session) SetDetails(text string) { s.details = text }

func (s *Session) Done() bool     { return s.index >= len(s.questions) }
func (s *Session) Remaining() int { return len(s.questions) - s.index }
func (s *Session) Total() int     { return len(s.questions) }

// ComposeMessage renders the finished interview as the single chat message
// sent back to the assistant. Format per question:
//
//	1. <question>
//	Answer: <text or (skipped)>
//
// with blank lines between questions and an optional trailing details line.
func (s *Session) ComposeMessage() string {
	blocks := make([]string, 0, len(s.questions)+1)
	for i, q := range s.questions {
		ans := "(skipped)"
		if i < s.index && !s.answers[i].Skipped {
			ans = s.answers[i].Text
		}
		blocks = append(blocks, fmt.Sprintf("%d. %s\nAnswer: %s", i+1, q.Question, ans))
	}
	if s.details != "" {
		blocks = append(blocks, "Additional details: "+s.details)
	}
	return strings.Join(blocks, "\n\n")
}

// BatchKey fingerprints a question batch so a re-presented identical batch is
// not mistaken for a new interview.
func BatchKey(questions []tickettool.ClarifyingQuestion) string {
	var b strings.Builder
	for _, q := range questions {
		b.WriteString(q.ID)
		b.WriteByte('|')
		b.WriteString(q.Question)
		b.WriteByte('\n')
	}
	return b.String()
}
