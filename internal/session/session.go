package session

// State is the dialogue position of a single user. Exactly one value is
// active at any time; handlers must leave the session in a non-processing
// state before returning.
type State string

const (
	StateIdle                 State = "IDLE"
	StateAwaitingName         State = "AWAITING_NAME"
	StateProcessingQuery      State = "PROCESSING_QUERY"
	StateProcessingOffer      State = "PROCESSING_OFFER"
	StateProcessingPrice      State = "PROCESSING_PRICE"
	StateAwaitingConfirmation State = "AWAITING_HUMAN_CONFIRMATION"
	StateHumanRequested       State = "HUMAN_REQUESTED"
)

// MaxHistory bounds the per-user message history; the oldest entries are
// evicted first.
const MaxHistory = 15

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is the persistent conversational record for one user id.
type Session struct {
	Name         string    `json:"name,omitempty"`
	State        State     `json:"state"`
	History      []Message `json:"history,omitempty"`
	Flags        []string  `json:"flags,omitempty"`
	LastActivity int64     `json:"lastActivity"` // unix milliseconds
}

func newSession() *Session {
	return &Session{State: StateIdle}
}

// AppendHistory adds one entry, evicting the oldest beyond MaxHistory.
func (s *Session) AppendHistory(role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content})
	if len(s.History) > MaxHistory {
		s.History = s.History[len(s.History)-MaxHistory:]
	}
}

// AddFlag records a one-time event tag. Adding an existing tag is a no-op.
func (s *Session) AddFlag(tag string) {
	if s.HasFlag(tag) {
		return
	}
	s.Flags = append(s.Flags, tag)
}

func (s *Session) HasFlag(tag string) bool {
	for _, f := range s.Flags {
		if f == tag {
			return true
		}
	}
	return false
}

// LastAssistantReply returns the content of the most recent assistant turn,
// or "" if there is none.
func (s *Session) LastAssistantReply() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleAssistant {
			return s.History[i].Content
		}
	}
	return ""
}

func (s *Session) clone() *Session {
	cp := *s
	cp.History = append([]Message(nil), s.History...)
	cp.Flags = append([]string(nil), s.Flags...)
	return &cp
}
