package ticketgen

// Vocabulary selects the ticket-type taxonomy offered to the model and
// enforced on its output. Software projects get an engineering-flavored set;
// everything else gets delivery-neutral terms.
type Vocabulary string

const (
	VocabularyGeneric  Vocabulary = "generic"
	VocabularySoftware Vocabulary = "software"
)

func ParseVocabulary(s string) Vocabulary {
	if s == string(VocabularySoftware) {
		return VocabularySoftware
	}
	return VocabularyGeneric
}

// TicketTypes returns the allowed values of the ticket "type" field under
// this vocabulary.
func (v Vocabulary) TicketTypes() []string {
	if v == VocabularySoftware {
		return []string{"Story", "Task", "Bug", "Epic", "Feature"}
	}
	return []string{"Story", "Task", "Epic", "Milestone", "Deliverable"}
}

// DefaultType is the fallback when the model emits an unknown type.
func (v Vocabulary) DefaultType() string { return "Task" }
