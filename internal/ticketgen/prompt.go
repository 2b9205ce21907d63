package ticketgen

import (
	"fmt"
	"strings"
)

// generationPrompt is the instruction block for structured ticket output. The
// project description is appended as JSON input by the client.
func generationPrompt(v Vocabulary) string {
	types := strings.Join(v.TicketTypes(), ", ")
	return fmt.Sprintf(`You are an expert project planner. Given a project description, break the project down into a complete, actionable set of tickets for a kanban board.

Adapt to the project's domain: use terminology that fits what is being built. A wedding gets venue and catering tickets, a mobile app gets development and release tickets. Do not force software jargon onto non-software projects.

Rules:
- Produce between 8 and 25 tickets. Cover the project end to end: setup and groundwork first, then the core work, then additional features or workstreams, then quality checks or review, then launch or delivery.
- Every ticket gets a short imperative title and a description with enough detail that someone unfamiliar with the conversation could pick it up.
- type must be one of: %s.
- priority is P0 (must have, blocks everything) through P3 (nice to have).
- estimatedEffort is a t-shirt size: XS, S, M, L, or XL.
- acceptanceCriteria is 2 to 5 concrete, checkable statements.
- id is a short local identifier like "t1", "t2", used only so dependencies can reference earlier tickets in this same output.
- dependencies lists the ids of tickets that must finish first. Only reference ids that appear in this output. Leave it empty when there is no hard ordering.
- labels groups related tickets by workstream, lowercase, at most 3 per ticket.

Order the tickets in the sequence the work should start.`, types)
}
