package tickettool

// ClarifyingQuestion is one question the assistant wants answered before
// generating tickets. Options are suggested answers; free-form replies are
// always allowed.
type ClarifyingQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}
