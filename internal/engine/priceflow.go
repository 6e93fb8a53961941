package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"popbot-backend/internal/price"
	"popbot-backend/internal/session"
)

// dispatchPrice runs the price lookup sub-flow. Every provider failure
// category gets its own user-facing message; none of them surface a raw
// error.
func (e *Engine) dispatchPrice(ctx context.Context, userID, name, product string) error {
	e.store.Update(userID, func(s *session.Session) { s.State = session.StateProcessingPrice })
	log.Printf("[engine] price query from %s for %q", userID, product)

	intro := fmt.Sprintf("Perfeito, %s! Vou consultar os preços de \"%s\" em Arapiraca pra você! 💰 Só um minutinho...", name, product)
	if err := e.transport.SendText(ctx, userID, intro); err != nil {
		return err
	}

	res, err := e.catalog.Search(ctx, product)
	if err != nil {
		log.Printf("[engine] price lookup failed for %s: %v", userID, err)
		msg := priceFailureMessage(err, name, product)
		e.store.Update(userID, func(s *session.Session) {
			s.AppendHistory(session.RoleAssistant, msg)
		})
		return e.transport.SendText(ctx, userID, msg)
	}

	reply := price.FormatReply(res, product, name)
	e.store.Update(userID, func(s *session.Session) {
		s.AppendHistory(session.RoleAssistant, reply)
	})
	return e.transport.SendText(ctx, userID, reply)
}

func priceFailureMessage(err error, name, product string) string {
	switch {
	case errors.Is(err, price.ErrTimeout):
		return fmt.Sprintf("Ops! A consulta de preços está demorando mais que o esperado, %s. 😔 O sistema pode estar sobrecarregado. Tente novamente em alguns minutos.", name)
	case errors.Is(err, price.ErrUnavailable):
		return fmt.Sprintf("Desculpe, %s! O sistema de consulta de preços está temporariamente indisponível. 😔 Tente novamente mais tarde ou fale com um atendente.", name)
	case errors.Is(err, price.ErrRejected):
		return fmt.Sprintf("Hmm, %s! Não consegui processar a consulta para \"%s\". 🤔 Tente ser mais específico na descrição (ex: \"arroz pilão 1kg\") ou fale com um atendente.", name, product)
	default:
		return fmt.Sprintf("Ops! Houve um problema ao consultar os preços de \"%s\" no Popular Supermercado, %s. 😔 Tente novamente mais tarde ou fale com um atendente.", product, name)
	}
}
