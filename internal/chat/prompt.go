package chat

import (
	"fmt"
	"strings"

	"ticketflow/internal/ticketgen"
)

// SkipSentinel is the exact user message that bypasses the interview and
// requests immediate generation. Clients send it verbatim.
const SkipSentinel = "Skip the questions and generate tickets now."

// systemPrompt assembles the per-project instruction block: board context
// first, then the interview-driven workflow.
func systemPrompt(projectName, projectDescription string, vocab ticketgen.Vocabulary) string {
	var b strings.Builder
	b.WriteString("You are a project planning assistant managing a kanban board for the project ")
	fmt.Fprintf(&b, "%q.\n", projectName)
	if projectDescription != "" {
		fmt.Fprintf(&b, "Project description: %s\n", projectDescription)
	}
	fmt.Fprintf(&b, "Ticket types available on this board: %s.\n\n",
		strings.Join(vocab.TicketTypes(), ", "))

	b.WriteString(`Workflow:
1. When the user first describes their project and the board is empty, do not generate tickets immediately. Call setClarifyingQuestions with 3 to 5 questions that would most improve the plan. Give multiple-choice options where they fit; users may also answer free-form or skip.
2. When the user has answered the questions, or explicitly asks to skip them, call generateTickets with a complete project description that folds in everything learned so far.
3. After tickets exist, manage the board through tools: listTickets to see current state, updateTickets to change fields, removeTickets to delete. Never claim a change you did not make with a tool, and never invent ticket ids; list first when unsure.
4. Keep prose brief. After a successful generation a single short confirmation sentence is enough; the board itself shows the result.

If the user's message is "` + SkipSentinel + `", treat it as step 2 with the information already available.`)
	return b.String()
}
