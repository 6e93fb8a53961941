// Package classify maps a normalized inbound message plus the current
// dialogue state to an intent. Classification is an ordered list of
// matchers evaluated in a fixed sequence; the first match wins.
package classify

import (
	"regexp"
	"strings"

	"popbot-backend/internal/session"
)

type Intent string

const (
	IntentGeneralQuery   Intent = "general_query"
	IntentConfirmHandoff Intent = "confirm_handoff"
	IntentDeclineHandoff Intent = "decline_handoff"
	IntentRequestHandoff Intent = "request_handoff"
	IntentProvideName    Intent = "provide_name"
	IntentProfanity      Intent = "profanity"
)

// Input is everything a matcher may look at. Matchers are pure: no session
// access, no side effects.
type Input struct {
	Text    string
	State   session.State
	HasName bool
}

type Result struct {
	Intent Intent
	// Name is the captured display name for IntentProvideName.
	Name string
	// Term is the denylist entry that matched for IntentProfanity.
	Term string
}

var (
	confirmRe = regexp.MustCompile(`(?i)\bsim\b|\bquero\b|\bconfirm(o|ar)\b|\bpode\b`)
	declineRe = regexp.MustCompile(`(?i)\bn(ã|a)o\b|\bcancelar\b|\bdeixa\b`)
	handoffRe = regexp.MustCompile(`(?i)\b(atendente|humano|pessoa|falar com alguem|algu(e|é)m|suporte|ajuda real)\b`)
	nameRe    = regexp.MustCompile(`(?i)(?:meu\s+)?nome\s+(?:é|eh|seja)\s+(\pL[\pL']*)`)
)

const handoffNegation = "não quero falar com atendente"

type rule struct {
	name  string
	match func(c *Classifier, in Input) (Result, bool)
}

// Ordered by priority; the ordering is deliberate, not incidental.
// Decline outranks confirm so "não quero" reads as a refusal even though
// it contains a confirm keyword.
var rules = []rule{
	{"decline-handoff", matchDeclineHandoff},
	{"confirm-handoff", matchConfirmHandoff},
	{"request-handoff", matchRequestHandoff},
	{"provide-name", matchProvideName},
	{"profanity", matchProfanity},
}

type Classifier struct {
	tables      Tables
	profanityRe *regexp.Regexp
}

func New(t Tables) *Classifier {
	stripped := make([]string, 0, len(t.Profanity))
	for _, p := range t.Profanity {
		stripped = append(stripped, StripAccentsAndPunct(p))
	}
	return &Classifier{
		tables:      t,
		profanityRe: wordPattern(stripped),
	}
}

func (c *Classifier) Classify(in Input) Result {
	for _, r := range rules {
		if res, ok := r.match(c, in); ok {
			return res
		}
	}
	return Result{Intent: IntentGeneralQuery}
}

// FindProfanity reports the first denylist entry found in the accent- and
// punctuation-stripped form of text.
func (c *Classifier) FindProfanity(text string) (string, bool) {
	m := c.profanityRe.FindStringSubmatch(StripAccentsAndPunct(text))
	if m == nil {
		return "", false
	}
	return m[1], true
}

func matchConfirmHandoff(c *Classifier, in Input) (Result, bool) {
	if in.State != session.StateAwaitingConfirmation || !confirmRe.MatchString(in.Text) {
		return Result{}, false
	}
	return Result{Intent: IntentConfirmHandoff}, true
}

func matchDeclineHandoff(c *Classifier, in Input) (Result, bool) {
	if in.State != session.StateAwaitingConfirmation || !declineRe.MatchString(in.Text) {
		return Result{}, false
	}
	return Result{Intent: IntentDeclineHandoff}, true
}

func matchRequestHandoff(c *Classifier, in Input) (Result, bool) {
	if !handoffRe.MatchString(in.Text) {
		return Result{}, false
	}
	if strings.Contains(strings.ToLower(in.Text), handoffNegation) {
		return Result{}, false
	}
	return Result{Intent: IntentRequestHandoff}, true
}

func matchProvideName(c *Classifier, in Input) (Result, bool) {
	if in.State != session.StateIdle || in.HasName {
		return Result{}, false
	}
	m := nameRe.FindStringSubmatch(in.Text)
	if m == nil {
		return Result{}, false
	}
	return Result{Intent: IntentProvideName, Name: Capitalize(m[1])}, true
}

func matchProfanity(c *Classifier, in Input) (Result, bool) {
	term, ok := c.FindProfanity(in.Text)
	if !ok {
		return Result{}, false
	}
	return Result{Intent: IntentProfanity, Term: term}, true
}
