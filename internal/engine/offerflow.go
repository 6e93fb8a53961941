package engine

import (
	"context"
	"fmt"
	"log"

	"popbot-backend/internal/offers"
	"popbot-backend/internal/session"
)

// dispatchOffers sends the promotional images for the requested day. The
// idempotency flag is day- and date-scoped: the same day's images go out
// at most once per calendar date.
func (e *Engine) dispatchOffers(ctx context.Context, userID, name, dayToken string) error {
	day, ok := offers.NormalizeDay(dayToken)
	if !ok {
		msg := fmt.Sprintf("Desculpe, %s, não consegui identificar um dia válido para as ofertas. Poderia especificar melhor?", name)
		return e.transport.SendText(ctx, userID, msg)
	}

	e.store.Update(userID, func(s *session.Session) { s.State = session.StateProcessingOffer })
	log.Printf("[engine] offer request from %s for %s", userID, day)

	tag := fmt.Sprintf("oferta-%s-%s", day, e.now().Format("02/01/2006"))
	if e.store.Get(userID).HasFlag(tag) {
		msg := fmt.Sprintf("😉 %s, já te mandei as ofertas de %s mais cedo! Se precisar ver de novo, é só pedir de outra forma ou falar com um atendente.", name, day)
		return e.transport.SendText(ctx, userID, msg)
	}

	intro := fmt.Sprintf("Entendido, %s! Vou buscar as ofertas para %s pra você! 🛍️", name, day)
	if err := e.transport.SendText(ctx, userID, intro); err != nil {
		return err
	}

	images, err := e.archive.List(day)
	if err != nil {
		log.Printf("[engine] failed to list offers for %s: %v", day, err)
		msg := fmt.Sprintf("Ops! Houve um problema ao buscar as ofertas, %s. 😔 Tente novamente mais tarde ou fale com um atendente.", name)
		return e.transport.SendText(ctx, userID, msg)
	}
	if len(images) == 0 {
		msg := fmt.Sprintf("Opa, %s! Não temos ofertas especiais para %s no momento. 😔 Mas fique de olho que sempre temos novidades! Posso te ajudar com algo mais?", name, day)
		return e.transport.SendText(ctx, userID, msg)
	}

	header := fmt.Sprintf("Aqui estão as ofertas especiais de %s! 🎉 Dá uma olhada:", day)
	if err := e.transport.SendText(ctx, userID, header); err != nil {
		return err
	}

	// Partial failures per image do not abort the batch.
	sent := 0
	for _, img := range images {
		if err := e.transport.SendFile(ctx, userID, img.Path, img.Filename, img.Caption); err != nil {
			log.Printf("[engine] failed to send %s to %s: %v", img.Filename, userID, err)
			notice := fmt.Sprintf("😥 Ops! Não consegui enviar a imagem \"%s\". Vou tentar as próximas.", img.Filename)
			if err := e.transport.SendText(ctx, userID, notice); err != nil {
				log.Printf("[engine] failed to send image notice to %s: %v", userID, err)
			}
			continue
		}
		sent++
		e.pause(pauseBetweenImages)
	}

	if sent == 0 {
		msg := fmt.Sprintf("😔 Desculpe, %s, não consegui enviar as ofertas agora. Tente novamente mais tarde ou fale com um atendente.", name)
		return e.transport.SendText(ctx, userID, msg)
	}

	// Only a batch with at least one delivered image counts as sent.
	e.store.Update(userID, func(s *session.Session) { s.AddFlag(tag) })
	summary := fmt.Sprintf("Pronto! 🎉 Enviei %d ofertas especiais para você. Se tiver alguma dúvida ou quiser mais informações sobre algum produto, é só perguntar!", sent)
	return e.transport.SendText(ctx, userID, summary)
}
