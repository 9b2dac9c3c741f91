package history

import "sync"

// MaxEntries bounds per-session conversation history; oldest entries are
// evicted first once the window is full.
const MaxEntries = 20

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversational turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store keeps bounded conversation history per session id. Within a session
// only one reply run mutates it at a time; the lock protects cross-session
// access from the REST handlers.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]Message
}

func NewStore() *Store {
	return &Store{sessions: make(map[string][]Message)}
}

// Append records a turn and trims the window to MaxEntries, oldest first.
func (s *Store) Append(sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := append(s.sessions[sessionID], Message{Role: role, Content: content})
	if len(msgs) > MaxEntries {
		msgs = msgs[len(msgs)-MaxEntries:]
	}
	s.sessions[sessionID] = msgs
}

// Messages returns a copy of the session's history in insertion order.
func (s *Store) Messages(sessionID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.sessions[sessionID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Clear drops one session's history.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// ClearAll drops every session's history.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string][]Message)
}
