package engine

import (
	"context"
	"fmt"
	"log"

	"popbot-backend/internal/ai"
	"popbot-backend/internal/classify"
	"popbot-backend/internal/session"
)

// dispatchQuery runs the completion sub-protocol: build the system
// instruction, call the provider with the bounded history, then route the
// reply (directive sub-flows, anti-repetition, verbatim send).
func (e *Engine) dispatchQuery(ctx context.Context, userID string, sess *session.Session, text string) error {
	e.store.Update(userID, func(s *session.Session) {
		s.AppendHistory(session.RoleUser, text)
		s.State = session.StateProcessingQuery
	})
	if err := e.transport.StartTyping(ctx, userID); err != nil {
		log.Printf("[engine] startTyping failed for %s: %v", userID, err)
	}
	defer func() {
		if err := e.transport.StopTyping(ctx, userID); err != nil {
			log.Printf("[engine] stopTyping failed for %s: %v", userID, err)
		}
		// Whatever branch ran, the turn must not end in a processing state.
		e.store.Update(userID, func(s *session.Session) { s.State = session.StateIdle })
	}()

	name := displayName(sess)
	region := classify.IdentifyRegion(text)
	system := e.persona.SystemPrompt(name, region)

	fresh := e.store.Get(userID)
	lastReply := fresh.LastAssistantReply()
	history := append([]session.Message(nil), fresh.History...)
	// Feed the provider a slang-neutralized form of the current message;
	// the stored history keeps the user's original words.
	if n := len(history); n > 0 && history[n-1].Role == session.RoleUser {
		history[n-1].Content = e.classifier.NormalizeRegional(history[n-1].Content)
	}

	reply, err := e.completer.Complete(ctx, system, history)
	if err != nil {
		log.Printf("[engine] completion failed for %s: %v", userID, err)
		fallback := fmt.Sprintf(replyCompletionFailed, name)
		e.store.Update(userID, func(s *session.Session) {
			s.AppendHistory(session.RoleAssistant, fallback)
		})
		return e.transport.SendText(ctx, userID, fallback)
	}

	// The model repeating itself verbatim reads badly on WhatsApp; wrap
	// the repeat in an "as I said" template instead.
	if lastReply != "" && reply == lastReply {
		reply = fmt.Sprintf(e.pick(repeatWrappers), name, reply)
	}

	if d, ok := ai.ParseDirective(reply); ok {
		switch d.Kind {
		case ai.DirectiveOfferDay:
			return e.dispatchOffers(ctx, userID, name, d.Payload)
		case ai.DirectivePriceQuery:
			return e.dispatchPrice(ctx, userID, name, d.Payload)
		}
	}

	e.store.Update(userID, func(s *session.Session) {
		s.AppendHistory(session.RoleAssistant, reply)
	})
	return e.transport.SendText(ctx, userID, reply)
}
