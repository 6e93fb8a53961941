package engine

import (
	"context"
	"fmt"
	"strings"

	"popbot-backend/internal/classify"
	"popbot-backend/internal/session"
)

// Accepted display names are a single token of 3 to 19 runes.
const (
	minNameLen = 3
	maxNameLen = 19
)

const nameGreeting = "Olá! 👋 Sou o Atendente POP, seu assistente virtual. Para começar, pode me dizer seu nome, por favor?"

// captureName handles an explicit "meu nome é X" while idle.
func (e *Engine) captureName(ctx context.Context, userID, text, name string) error {
	e.store.Update(userID, func(s *session.Session) {
		s.Name = name
		s.State = session.StateIdle
	})
	reply := fmt.Sprintf("Prazer em conhecer, %s! 😊 Como posso te ajudar hoje?", name)
	e.recordExchange(userID, text, reply)
	return e.transport.SendText(ctx, userID, reply)
}

// askForName greets a brand-new user and asks for their name.
func (e *Engine) askForName(ctx context.Context, userID, text string) error {
	e.store.Update(userID, func(s *session.Session) { s.State = session.StateAwaitingName })
	e.recordExchange(userID, text, nameGreeting)
	return e.transport.SendText(ctx, userID, nameGreeting)
}

// acceptName takes the first token of the reply as the name, reprompting
// when it is too short or too long.
func (e *Engine) acceptName(ctx context.Context, userID, text string) error {
	token := strings.Fields(strings.TrimSpace(text))
	var reply string
	if len(token) > 0 && len([]rune(token[0])) >= minNameLen && len([]rune(token[0])) <= maxNameLen {
		name := classify.Capitalize(token[0])
		e.store.Update(userID, func(s *session.Session) {
			s.Name = name
			s.State = session.StateIdle
		})
		reply = fmt.Sprintf("Legal, %s! 😊 Agora sim. Em que posso te ajudar?", name)
	} else {
		reply = "Hum... não entendi muito bem. 🤔 Poderia repetir seu nome, por favor?"
	}
	e.recordExchange(userID, text, reply)
	return e.transport.SendText(ctx, userID, reply)
}

// recordExchange appends one user/assistant pair to the bounded history.
func (e *Engine) recordExchange(userID, userText, assistantText string) {
	e.store.Update(userID, func(s *session.Session) {
		s.AppendHistory(session.RoleUser, userText)
		s.AppendHistory(session.RoleAssistant, assistantText)
	})
}
