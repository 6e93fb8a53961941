package ai

import (
	"regexp"
	"strings"
)

// The model signals sub-flows by embedding a tag of the form
// "[ACTION_TAG: payload]" in its reply. The parser is strict: only known
// tags with a non-empty payload count; anything else is plain text.

type DirectiveKind string

const (
	DirectiveOfferDay   DirectiveKind = "OFERTA_DIA"
	DirectivePriceQuery DirectiveKind = "CONSULTAR_PRECO"
)

type Directive struct {
	Kind    DirectiveKind
	Payload string
}

var directiveRe = regexp.MustCompile(`\[([A-Z_]+):\s*([^\[\]]*)\]`)

// ParseDirective extracts the first recognized directive from a reply.
// Unknown tags and empty payloads fail safe: the reply is treated as plain
// text.
func ParseDirective(text string) (Directive, bool) {
	for _, m := range directiveRe.FindAllStringSubmatch(text, -1) {
		kind := DirectiveKind(m[1])
		payload := strings.TrimSpace(m[2])
		if payload == "" {
			continue
		}
		switch kind {
		case DirectiveOfferDay, DirectivePriceQuery:
			return Directive{Kind: kind, Payload: payload}, true
		}
	}
	return Directive{}, false
}
