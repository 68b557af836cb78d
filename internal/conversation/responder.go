package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brooklynmaids/sms-concierge/internal/intent"
	"github.com/brooklynmaids/sms-concierge/internal/knowledge"
)

// Validation bounds for generated replies. Anything outside them, or
// containing a placeholder marker, goes to a human instead.
const (
	minReplyLen = 10
	maxReplyLen = 800
)

var placeholderMarkers = []string{"[INSERT", "[FILL IN", "XXX", "TODO", "PLACEHOLDER"}

// sentenceBreakRE finds sentence boundaries followed by a capital, the
// points where single-block replies get split into texting bubbles.
var sentenceBreakRE = regexp.MustCompile(`([.!?]) +([A-Z])`)

// Generated is a model reply plus its token accounting.
type Generated struct {
	Text  string
	Usage TokenUsage
}

// Responder builds the per-turn prompt and runs it through the model.
// It never retries: any model failure surfaces as an error and the
// caller leaves the message for a human.
type Responder struct {
	llm     LLMClient
	prompts *knowledge.PromptBuilder
	tracer  trace.Tracer
}

// NewResponder wires a responder over a model client and prompt
// builder.
func NewResponder(llm LLMClient, prompts *knowledge.PromptBuilder) *Responder {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if prompts == nil {
		panic("conversation: prompt builder cannot be nil")
	}
	return &Responder{
		llm:     llm,
		prompts: prompts,
		tracer:  otel.Tracer("concierge.internal.conversation.responder"),
	}
}

// Generate produces a reply to msg given prior turns, the extracted
// intent, and whether a quote already went out. The returned text has
// paragraph breaks inserted when the model answered in one block.
func (r *Responder) Generate(ctx context.Context, msg InboundMessage, history []StoredMessage, in intent.Intent, quoteSent bool) (Generated, error) {
	ctx, span := r.tracer.Start(ctx, "conversation.generate",
		trace.WithAttributes(attribute.String("conversation.id", msg.ConversationID)))
	defer span.End()

	text, usage, err := r.llm.Complete(ctx, r.prompts.System(), buildTurnPrompt(msg.Body, history, in, quoteSent))
	if err != nil {
		span.RecordError(err)
		return Generated{}, err
	}

	span.SetAttributes(attribute.Int("concierge.llm.total_tokens", usage.TotalTokens))
	return Generated{Text: formatBubbles(text), Usage: usage}, nil
}

// buildTurnPrompt assembles the user-role prompt: speaker-labeled
// prior turns, a remembered property summary, a no-relink instruction
// when a quote already went out, then the literal new message.
func buildTurnPrompt(body string, history []StoredMessage, in intent.Intent, quoteSent bool) string {
	var b strings.Builder

	if len(history) > 0 {
		b.WriteString("\n\nPREVIOUS CONVERSATION:\n")
		for i, m := range history {
			if i > 0 {
				b.WriteByte('\n')
			}
			if m.Direction == DirectionIncoming {
				b.WriteString("Customer: ")
			} else {
				b.WriteString("You: ")
			}
			b.WriteString(m.Body)
		}
		b.WriteString("\n\nCURRENT MESSAGE:")
	}

	if in.HasPropertyDetails {
		fmt.Fprintf(&b, "\n(Remembered: the customer has a %s, %s service", propertySummary(in), in.Service)
		if len(in.Addons) > 0 {
			b.WriteString(", add-ons: ")
			for i, a := range in.Addons {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(string(a))
			}
		}
		b.WriteString(")")
	}
	if quoteSent {
		b.WriteString("\n(You already sent pricing or the booking link in this conversation. Do NOT send the booking link again.)")
	}

	fmt.Fprintf(&b, "\nCustomer: %s\n\nProvide a helpful, concise response (1-3 sentences preferred).", body)
	return b.String()
}

func propertySummary(in intent.Intent) string {
	if in.Bedrooms == intent.BedroomsStudio {
		return fmt.Sprintf("studio with %s bath", in.Bathrooms)
	}
	return fmt.Sprintf("%s bed %s bath home", in.Bedrooms, in.Bathrooms)
}

// formatBubbles inserts paragraph breaks after sentence-ending
// punctuation when the model returned one unbroken block, emulating
// multi-bubble texting style.
func formatBubbles(text string) string {
	if strings.Contains(text, "\n") {
		return text
	}
	return sentenceBreakRE.ReplaceAllString(text, "$1\n\n$2")
}

// Validate rejects replies too terse to be meaningful, too long for
// SMS, or containing placeholder text. The reply is never repaired;
// a failing reason routes the conversation to a human.
func Validate(text string) (bool, string) {
	if len(text) < minReplyLen {
		return false, "response too short"
	}
	if len(text) > maxReplyLen {
		return false, "response too long for SMS"
	}
	for _, p := range placeholderMarkers {
		if strings.Contains(text, p) {
			return false, "contains placeholder text"
		}
	}
	return true, ""
}
