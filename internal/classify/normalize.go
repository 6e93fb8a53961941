package classify

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccentsAndPunct lowers the text, removes combining accents and drops
// sentence punctuation. Only the profanity matcher operates on this form;
// everything else sees the original text so names and regional expressions
// survive intact.
func StripAccentsAndPunct(s string) string {
	out, _, err := transform.String(stripper, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '!', '?', ';', ':', '(', ')':
			return -1
		}
		return r
	}, out)
}

// wordPattern builds a case-insensitive matcher for a word or phrase with
// letter boundaries on both sides. Go's \b is ASCII-only, which breaks on
// entries like "égua", hence the \P{L} boundaries.
func wordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}])(` + strings.Join(quoted, "|") + `)(?:[^\p{L}]|$)`)
}

var regionMarkers = []struct {
	region  string
	pattern *regexp.Regexp
}{
	{"Nordeste", wordPattern([]string{"oxente", "visse", "arretado", "mainha", "painho", "mungunzá", "macaxeira", "jerimum"})},
	{"Minas Gerais", wordPattern([]string{"uai", "sô", "trem", "pão de queijo", "quitanda"})},
	{"Sul", wordPattern([]string{"bah", "guria", "guri", "tri", "chimarrão", "bergamota", "capaz"})},
	{"Norte", wordPattern([]string{"égua", "maninho", "tacacá", "açaí", "pai d'égua"})},
}

// IdentifyRegion scans for regional lexical markers and returns a region
// tag used only to bias the completion prompt's tone, never routing.
func IdentifyRegion(text string) string {
	lower := strings.ToLower(text)
	for _, m := range regionMarkers {
		if m.pattern.MatchString(lower) {
			return m.region
		}
	}
	return "Brasil"
}

// NormalizeRegional replaces slang tokens with their neutral form. The
// regionalism table only holds single tokens, so a letter-run scan is
// enough; anything between letter runs passes through untouched.
func (c *Classifier) NormalizeRegional(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if !unicode.IsLetter(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && unicode.IsLetter(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		if neutral, ok := c.tables.Regionalisms[strings.ToLower(word)]; ok {
			b.WriteString(neutral)
		} else {
			b.WriteString(word)
		}
		i = j
	}
	return b.String()
}

// Capitalize upper-cases the first rune, matching how captured names are
// stored.
func Capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
