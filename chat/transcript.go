package chat

// Speaker is the author of a transcript entry
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// EntryState tracks the two-phase append of a user message
type EntryState string

const (
	EntryPending   EntryState = "pending"
	EntryConfirmed EntryState = "confirmed"
	EntryFailed    EntryState = "failed"
)

// Entry is one turn in the transcript
type Entry struct {
	Role    Speaker
	Content string
	State   EntryState
}

// Turn is the wire form of an entry sent as history
type Turn struct {
	Role    Speaker `json:"role"`
	Content string  `json:"content"`
}

// Transcript is append-only. Entries change state in place but are never
// removed or reordered.
type Transcript struct {
	entries []Entry
}

// Append adds e and returns its index
func (t *Transcript) Append(e Entry) int {
	t.entries = append(t.entries, e)
	return len(t.entries) - 1
}

// SetState updates the state of the entry at i
func (t *Transcript) SetState(i int, state EntryState) {
	if i >= 0 && i < len(t.entries) {
		t.entries[i].State = state
	}
}

// Len returns the number of entries
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Entries returns a copy of every entry
func (t *Transcript) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// History returns the last n entries as wire turns
func (t *Transcript) History(n int) []Turn {
	if n <= 0 {
		return []Turn{}
	}
	start := len(t.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, 0, len(t.entries)-start)
	for _, e := range t.entries[start:] {
		out = append(out, Turn{Role: e.Role, Content: e.Content})
	}
	return out
}
