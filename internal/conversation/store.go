package conversation

import (
	"context"
	"regexp"
	"strings"
	"sync"
)

// MaxHistory bounds how many turns are retained per conversation;
// older turns are dropped first.
const MaxHistory = 20

// Store is the conversation memory. Implementations must return
// history oldest-first and trim retained turns to MaxHistory.
type Store interface {
	Append(ctx context.Context, conversationID string, msg StoredMessage) error
	History(ctx context.Context, conversationID string) ([]StoredMessage, error)
}

var dollarAmountRE = regexp.MustCompile(`\$\d+`)

// WasQuoteSent reports whether any outgoing message in the history
// contains a dollar amount or a booking link. This is a text
// heuristic: an outgoing message quoting an unrelated dollar figure
// counts as a sent quote. It is the sole guard against re-sending the
// booking link, so its semantics stay as-is.
func WasQuoteSent(history []StoredMessage) bool {
	for _, m := range history {
		if m.Direction != DirectionOutgoing {
			continue
		}
		if dollarAmountRE.MatchString(m.Body) || strings.Contains(m.Body, "/booking") {
			return true
		}
	}
	return false
}

// MemoryStore keeps conversation history in process memory. Nothing
// survives a restart.
type MemoryStore struct {
	mu       sync.Mutex
	messages map[string][]StoredMessage
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]StoredMessage)}
}

// Append adds a message to a conversation, dropping the oldest turn
// once the retained length exceeds MaxHistory.
func (s *MemoryStore) Append(_ context.Context, conversationID string, msg StoredMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.messages[conversationID], msg)
	if len(msgs) > MaxHistory {
		msgs = msgs[len(msgs)-MaxHistory:]
	}
	s.messages[conversationID] = msgs
	return nil
}

// History returns the retained turns oldest-first. The slice is a
// copy; callers may mutate it freely.
func (s *MemoryStore) History(_ context.Context, conversationID string) ([]StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[conversationID]
	out := make([]StoredMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
