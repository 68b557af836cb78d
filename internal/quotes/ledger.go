// Package quotes records priced proposals per conversation and pushes
// them into the cleaning company's booking system.
package quotes

import (
	"sync"
	"time"

	"github.com/brooklynmaids/sms-concierge/internal/intent"
)

// Quote is one priced proposal tied to a conversation. Quotes are
// never edited: a changed request produces a new entry.
type Quote struct {
	ConversationID string             `json:"conversation_id"`
	PhoneNumber    string             `json:"phone_number"`
	Bedrooms       string             `json:"bedrooms"`
	Bathrooms      string             `json:"bathrooms"`
	Service        intent.ServiceType `json:"service_type"`
	Addons         []intent.Addon     `json:"addons,omitempty"`
	TotalPrice     int                `json:"total_price"`
	QuoteCode      string             `json:"quote_code,omitempty"`
	BookingURL     string             `json:"booking_url,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Ledger holds quotes per conversation, most recent first. Entries are
// only ever prepended, never deleted or edited.
type Ledger struct {
	mu     sync.Mutex
	byConv map[string][]Quote
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byConv: make(map[string][]Quote)}
}

// Record prepends a quote to the conversation's list.
func (l *Ledger) Record(q Quote) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byConv[q.ConversationID] = append([]Quote{q}, l.byConv[q.ConversationID]...)
}

// Latest returns the most recent quote for a conversation, if any.
func (l *Ledger) Latest(conversationID string) (Quote, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	qs := l.byConv[conversationID]
	if len(qs) == 0 {
		return Quote{}, false
	}
	return qs[0], true
}

// Count reports how many quotes a conversation has accumulated.
func (l *Ledger) Count(conversationID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byConv[conversationID])
}
