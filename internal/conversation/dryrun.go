package conversation

import (
	"context"

	"github.com/brooklynmaids/sms-concierge/internal/intent"
)

// DryRunResult is the outcome of a pipeline run that sends nothing and
// records nothing, used to exercise prompts against real history.
type DryRunResult struct {
	Decision         Decision      `json:"decision"`
	Intent           intent.Intent `json:"intent"`
	QuoteSent        bool          `json:"quote_sent"`
	Reply            string        `json:"reply,omitempty"`
	Valid            bool          `json:"valid"`
	ValidationReason string        `json:"validation_reason,omitempty"`
	Usage            TokenUsage    `json:"usage"`
}

// DryRun evaluates the gate and, when allowed, generates and validates
// a reply for msg without sending, appending, or touching the ledger.
func (s *Service) DryRun(ctx context.Context, msg InboundMessage) (DryRunResult, error) {
	prior := s.loadHistory(ctx, msg.ConversationID)

	res := DryRunResult{
		Decision:  s.gate.Decide(ctx, msg, append(prior, msg.Stored())),
		Intent:    intent.Extract(msg.Body, turnsFrom(prior)),
		QuoteSent: WasQuoteSent(prior),
	}
	if !res.Decision.Allow {
		return res, nil
	}

	gen, err := s.responder.Generate(ctx, msg, prior, res.Intent, res.QuoteSent)
	if err != nil {
		return res, err
	}
	res.Reply = gen.Text
	res.Usage = gen.Usage
	res.Valid, res.ValidationReason = Validate(gen.Text)
	return res, nil
}
