package conversation

import "time"

// Direction distinguishes customer messages from our own.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// StoredMessage is one retained turn of a conversation.
type StoredMessage struct {
	Direction Direction `json:"direction"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// InboundMessage is a customer message resolved from a webhook
// envelope, ready for the pipeline.
type InboundMessage struct {
	ConversationID string
	From           string
	To             string
	Body           string
	CreatedAt      time.Time
}

// Stored converts an inbound message to its retained form.
func (m InboundMessage) Stored() StoredMessage {
	return StoredMessage{
		Direction: DirectionIncoming,
		From:      m.From,
		To:        m.To,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
