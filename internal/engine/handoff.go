package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"popbot-backend/internal/classify"
	"popbot-backend/internal/session"
)

func (e *Engine) askHandoffConfirmation(ctx context.Context, userID string, sess *session.Session) error {
	e.store.Update(userID, func(s *session.Session) { s.State = session.StateAwaitingConfirmation })
	msg := fmt.Sprintf("Percebi que você talvez queira falar com um de nossos atendentes humanos, %s. É isso mesmo? 😊 Responda \"Sim\" para confirmar ou \"Não\" para continuar comigo.", displayName(sess))
	return e.transport.SendText(ctx, userID, msg)
}

func (e *Engine) handleConfirmationReply(ctx context.Context, userID string, sess *session.Session, intent classify.Intent) error {
	name := displayName(sess)
	switch intent {
	case classify.IntentConfirmHandoff:
		e.store.Update(userID, func(s *session.Session) { s.State = session.StateHumanRequested })
		msg := fmt.Sprintf("Ok, %s! 👍 Já solicitei um atendente humano para você. Por favor, aguarde um momento que logo alguém entrará em contato. Enquanto isso, não consigo processar outras solicitações.", name)
		if err := e.transport.SendText(ctx, userID, msg); err != nil {
			return err
		}
		e.notifyAttendant(ctx, userID, sess.Name)
		return nil
	case classify.IntentDeclineHandoff:
		e.store.Update(userID, func(s *session.Session) { s.State = session.StateIdle })
		msg := fmt.Sprintf("Entendido, %s! 😊 Cancelamos a solicitação. Se precisar de algo mais, é só chamar!", name)
		return e.transport.SendText(ctx, userID, msg)
	default:
		msg := fmt.Sprintf("Desculpe, %s, não entendi. Você quer que eu chame um atendente humano? Por favor, responda com \"Sim\" ou \"Não\".", name)
		return e.transport.SendText(ctx, userID, msg)
	}
}

// notifyAttendant forwards the handoff to the operator channel. Best
// effort: failures are logged, never surfaced to the user.
func (e *Engine) notifyAttendant(ctx context.Context, userID, name string) {
	if e.attendantID == "" {
		log.Printf("[engine] %s requested a human but no attendant is configured", userID)
		return
	}
	if name == "" {
		name = "Não informado"
	}
	phone := strings.SplitN(userID, "@", 2)[0]
	msg := fmt.Sprintf("🔔 *Solicitação de Atendimento Humano* 🔔\n\nCliente: %s (%s)\nSolicitou atendimento humano agora.\n\nLink direto: wa.me/%s", name, userID, phone)
	if err := e.transport.SendText(ctx, e.attendantID, msg); err != nil {
		log.Printf("[engine] failed to notify attendant %s about %s: %v", e.attendantID, userID, err)
	}
}
